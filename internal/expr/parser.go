package expr

import (
	"fmt"
	"slices"
)

// binaryLevels lists the infix operators from lowest to highest precedence.
// All of them associate to the left.
var binaryLevels = [][]Kind{
	{LOr},
	{LAnd},
	{BOr},
	{BXor},
	{BAnd},
	{Eq, Neq},
	{Lt, Le, Gt, Ge},
	{Shl, Shr},
	{Add, Sub},
	{Mul, Div, Mod},
}

type parser struct {
	toks []Token
	idx  int
}

// Parse builds an expression tree from a token sequence produced by
// Tokenize. The whole sequence must form exactly one expression.
func Parse(toks []Token) (Node, error) {
	if len(toks) == 0 || toks[len(toks)-1].Kind != End {
		return nil, &Error{Kind: SyntaxError, Index: len(toks), Msg: "token sequence is not terminated"}
	}
	p := &parser{toks: toks}
	n, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != End {
		return nil, p.errorf("unexpected %s after end of expression", tok)
	}
	return n, nil
}

// ParseString tokenizes and parses src.
func ParseString(src string) (Node, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(toks)
}

func (p *parser) peek() Token {
	return p.toks[p.idx]
}

func (p *parser) next() Token {
	tok := p.toks[p.idx]
	if tok.Kind != End {
		p.idx++
	}
	return tok
}

func (p *parser) errorf(format string, args ...any) *Error {
	return &Error{Kind: SyntaxError, Pos: p.peek().Pos, Index: p.idx, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseConditional() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != Question {
		return cond, nil
	}
	q := p.next()

	then, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if p.peek().Kind != Colon {
		return nil, p.errorf("expected ':' in conditional expression, found %s", p.peek())
	}
	p.next()

	els, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &Cond{Cond: cond, Then: then, Else: els, Offset: q.Pos}, nil
}

func (p *parser) parseBinary(level int) (Node, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for slices.Contains(binaryLevels[level], p.peek().Kind) {
		op := p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op.Kind, X: left, Y: right, Offset: op.Pos}
	}
	return left, nil
}

func (p *parser) parseUnary() (Node, error) {
	if !p.peek().Kind.IsUnary() {
		return p.parsePrimary()
	}
	op := p.next()
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op.Kind, X: x, Offset: op.Pos}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case Number:
		v, err := tok.Int()
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Text)
		}
		p.next()
		return &NumberLit{Value: v, Offset: tok.Pos}, nil
	case Ident:
		p.next()
		return &Ref{Name: tok.Text, Offset: tok.Pos}, nil
	case LParen:
		p.next()
		inner, err := p.parseConditional()
		if err != nil {
			return nil, err
		}
		if p.peek().Kind != RParen {
			return nil, p.errorf("missing ')' for '(' at offset %d, found %s", tok.Pos, p.peek())
		}
		p.next()
		return inner, nil
	case End:
		return nil, p.errorf("unexpected end of expression")
	}
	return nil, p.errorf("unexpected %s", tok)
}
