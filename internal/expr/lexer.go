package expr

import "strconv"

var twoCharOps = map[string]Kind{
	"<<": Shl,
	">>": Shr,
	"<=": Le,
	">=": Ge,
	"==": Eq,
	"!=": Neq,
	"&&": LAnd,
	"||": LOr,
}

var oneCharOps = map[byte]Kind{
	'(': LParen,
	')': RParen,
	'@': Log2,
	'~': BNot,
	'!': LNot,
	'*': Mul,
	'/': Div,
	'%': Mod,
	'+': Add,
	'-': Sub,
	'<': Lt,
	'>': Gt,
	'&': BAnd,
	'^': BXor,
	'|': BOr,
	'?': Question,
	':': Colon,
}

// Tokenize splits src into tokens. The returned slice always ends with an End
// token positioned at len(src).
func Tokenize(src string) ([]Token, error) {
	var toks []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case isSpace(c):
			i++
		case isDigit(c):
			j, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: Number, Text: src[i:j], Pos: i})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			toks = append(toks, Token{Kind: Ident, Text: src[i:j], Pos: i})
			i = j
		default:
			if i+1 < len(src) {
				if k, ok := twoCharOps[src[i:i+2]]; ok {
					toks = append(toks, Token{Kind: k, Text: src[i : i+2], Pos: i})
					i += 2
					continue
				}
			}
			k, ok := oneCharOps[c]
			if !ok {
				return nil, lexErr(i, "unexpected character %q", c)
			}
			if k == Sub && unaryContext(toks) {
				k = UMinus
			}
			toks = append(toks, Token{Kind: k, Text: src[i : i+1], Pos: i})
			i++
		}
	}
	return append(toks, Token{Kind: End, Pos: len(src)}), nil
}

// unaryContext reports whether a '-' following toks is a negation.
func unaryContext(toks []Token) bool {
	if len(toks) == 0 {
		return true
	}
	prev := toks[len(toks)-1].Kind
	return prev == LParen || prev == Question || prev == Colon || prev.IsUnary() || prev.IsBinary()
}

func scanNumber(src string, start int) (int, error) {
	j := start
	if src[j] == '0' && j+1 < len(src) && (src[j+1] == 'x' || src[j+1] == 'X') {
		j += 2
		digits := j
		for j < len(src) && isHexDigit(src[j]) {
			j++
		}
		if j == digits {
			return 0, lexErr(start, "invalid hex literal %q", src[start:j])
		}
		if j-digits > 16 {
			return 0, lexErr(start, "hex literal %q does not fit in 64 bits", src[start:j])
		}
		if j < len(src) && isIdentChar(src[j]) {
			return 0, lexErr(start, "invalid hex literal %q", src[start:j+1])
		}
		return j, nil
	}

	for j < len(src) && isDigit(src[j]) {
		j++
	}
	if j < len(src) && isIdentChar(src[j]) {
		return 0, lexErr(start, "invalid number literal %q", src[start:j+1])
	}
	if _, err := strconv.ParseInt(src[start:j], 10, 64); err != nil {
		return 0, lexErr(start, "number literal %q does not fit in 64 bits", src[start:j])
	}
	return j, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

// IsIdentifier reports whether s is a valid identifier: [A-Za-z_][A-Za-z0-9_]*.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
