package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Token.
type Kind int

const (
	End Kind = iota
	Number
	Ident

	LParen
	RParen

	// Unary operators.
	Log2
	BNot
	LNot
	UMinus

	// Binary operators.
	Mul
	Div
	Mod
	Add
	Sub
	Shl
	Shr
	Lt
	Le
	Gt
	Ge
	Eq
	Neq
	BAnd
	BXor
	BOr
	LAnd
	LOr

	Question
	Colon
)

var kindNames = [...]string{
	End:      "end of expression",
	Number:   "number",
	Ident:    "identifier",
	LParen:   "(",
	RParen:   ")",
	Log2:     "@",
	BNot:     "~",
	LNot:     "!",
	UMinus:   "-",
	Mul:      "*",
	Div:      "/",
	Mod:      "%",
	Add:      "+",
	Sub:      "-",
	Shl:      "<<",
	Shr:      ">>",
	Lt:       "<",
	Le:       "<=",
	Gt:       ">",
	Ge:       ">=",
	Eq:       "==",
	Neq:      "!=",
	BAnd:     "&",
	BXor:     "^",
	BOr:      "|",
	LAnd:     "&&",
	LOr:      "||",
	Question: "?",
	Colon:    ":",
}

// String returns the operator symbol, or a descriptive name for End, Number
// and Ident.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsUnary reports whether k is a prefix operator.
func (k Kind) IsUnary() bool {
	return k >= Log2 && k <= UMinus
}

// IsBinary reports whether k is an infix operator (the conditional excluded).
func (k Kind) IsBinary() bool {
	return k >= Mul && k <= LOr
}

// Token is a single lexical unit. Text is the exact source text of the token
// (empty for End) and Pos its byte offset in the source.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

// Int returns the value of a Number token. Hex literals are read as 64-bit
// two's complement.
func (t Token) Int() (int64, error) {
	if t.Kind != Number {
		return 0, fmt.Errorf("token %q is not a number", t.Text)
	}
	if strings.HasPrefix(t.Text, "0x") || strings.HasPrefix(t.Text, "0X") {
		u, err := strconv.ParseUint(t.Text[2:], 16, 64)
		if err != nil {
			return 0, err
		}
		return int64(u), nil
	}
	return strconv.ParseInt(t.Text, 10, 64)
}

func (t Token) String() string {
	switch t.Kind {
	case End:
		return "end of expression"
	case Number, Ident:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return fmt.Sprintf("%q", t.Text)
	}
}
