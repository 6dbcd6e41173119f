package expr

import (
	"strconv"
	"strings"
)

// Format renders n as fully parenthesised source. Parsing the result yields a
// tree of the same shape.
func Format(n Node) string {
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *NumberLit:
		if n.Value < 0 {
			// Negative literals only come from hex input; keep them in hex.
			sb.WriteString("0x")
			sb.WriteString(strconv.FormatUint(uint64(n.Value), 16))
			return
		}
		sb.WriteString(strconv.FormatInt(n.Value, 10))
	case *Ref:
		sb.WriteString(n.Name)
	case *Unary:
		sb.WriteString("(")
		sb.WriteString(n.Op.String())
		format(sb, n.X)
		sb.WriteString(")")
	case *Binary:
		sb.WriteString("(")
		format(sb, n.X)
		sb.WriteString(" ")
		sb.WriteString(n.Op.String())
		sb.WriteString(" ")
		format(sb, n.Y)
		sb.WriteString(")")
	case *Cond:
		sb.WriteString("(")
		format(sb, n.Cond)
		sb.WriteString(" ? ")
		format(sb, n.Then)
		sb.WriteString(" : ")
		format(sb, n.Else)
		sb.WriteString(")")
	}
}
