package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Shape(t *testing.T) {
	testCases := []struct {
		src      string
		expected string
	}{
		{src: "1 + 2 * 3", expected: "(1 + (2 * 3))"},
		{src: "(1 + 2) * 3", expected: "((1 + 2) * 3)"},
		{src: "10 - 3 - 2", expected: "((10 - 3) - 2)"},
		{src: "-a ? b : c", expected: "((-a) ? b : c)"},
		{src: "a ? b : c ? d : e", expected: "(a ? b : (c ? d : e))"},
		{src: "a ? b ? c : d : e", expected: "(a ? (b ? c : d) : e)"},
		{src: "1 + 2 << 1", expected: "((1 + 2) << 1)"},
		{src: "a < b == c", expected: "((a < b) == c)"},
		{src: "a | b ^ c & d", expected: "(a | (b ^ (c & d)))"},
		{src: "a || b && c", expected: "(a || (b && c))"},
		{src: "a && b | c", expected: "(a && (b | c))"},
		{src: "@~!-x", expected: "(@(~(!(-x))))"},
		{src: "-x * y", expected: "((-x) * y)"},
		{src: "0xFFFFFFFFFFFFFFFF", expected: "0xffffffffffffffff"},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			n, err := ParseString(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, Format(n))

			// The formatted form parses back to the same shape.
			again, err := ParseString(Format(n))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, Format(again))
		})
	}
}

func TestParse_NodeTypes(t *testing.T) {
	n, err := ParseString("@WIDTH + 1")
	require.NoError(t, err)

	sum, ok := n.(*Binary)
	require.True(t, ok, "%T", n)
	assert.Equal(t, Add, sum.Op)

	log, ok := sum.X.(*Unary)
	require.True(t, ok, "%T", sum.X)
	assert.Equal(t, Log2, log.Op)
	assert.Equal(t, &Ref{Name: "WIDTH", Offset: 1}, log.X)
	assert.Equal(t, &NumberLit{Value: 1, Offset: 9}, sum.Y)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		src   string
		index int
		msg   string
	}{
		{name: "missing rparen", src: "(1 + 2", index: 4, msg: "missing ')'"},
		{name: "dangling operator", src: "1 +", index: 2, msg: "unexpected end"},
		{name: "missing colon", src: "1 ? 2", index: 3, msg: "expected ':'"},
		{name: "trailing tokens", src: "1 2", index: 1, msg: "after end of expression"},
		{name: "stray rparen", src: ")", index: 0, msg: "unexpected"},
		{name: "empty expression", src: "", index: 0, msg: "unexpected end"},
		{name: "dangling lparen", src: "(", index: 1, msg: "unexpected end"},
		{name: "extra rparen", src: "(1))", index: 3, msg: "after end of expression"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.src)
			require.Error(t, err)

			var exprErr *Error
			require.ErrorAs(t, err, &exprErr)
			assert.Equal(t, SyntaxError, exprErr.Kind)
			assert.Equal(t, tc.index, exprErr.Index)
			assert.Contains(t, exprErr.Msg, tc.msg)
		})
	}
}

func TestParse_RequiresEndToken(t *testing.T) {
	_, err := Parse([]Token{{Kind: Number, Text: "1"}})
	require.Error(t, err)
	_, err = Parse(nil)
	require.Error(t, err)
}
