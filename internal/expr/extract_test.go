package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIdentifiers(t *testing.T) {
	ids, err := ExtractIdentifiers("WIDTH * 2 + DEPTH - WIDTH")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"WIDTH": {}, "DEPTH": {}}, ids)

	ids, err = ExtractIdentifiers("42")
	require.NoError(t, err)
	assert.Empty(t, ids)

	sorted, err := SortedIdentifiers("c ? b : a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, sorted)
}

func TestExtractIdentifiers_ValidatesGrammar(t *testing.T) {
	for _, src := range []string{"1 +", "a ? b", "a $ b", "(a"} {
		_, err := ExtractIdentifiers(src)
		assert.Error(t, err, src)
	}
}

func TestSubstitute(t *testing.T) {
	toks, err := Tokenize("A + B * A")
	require.NoError(t, err)

	var seen []string
	out, err := Substitute(toks, func(name string) (int64, error) {
		seen = append(seen, name)
		return map[string]int64{"A": -2, "B": 5}[name], nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, seen)
	assert.Equal(t, Number, out[0].Kind)
	assert.Equal(t, "-2", out[0].Text)

	n, err := Parse(out)
	require.NoError(t, err)
	v, err := Eval(n, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-12), v)

	_, err = Substitute(toks, nil)
	assert.Error(t, err)
}

func TestRenameIdentifier(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected string
		changed  bool
	}{
		{name: "whole word only", src: "ratio * ratio2 + ratio", expected: "scale * ratio2 + scale", changed: true},
		{name: "prefix untouched", src: "2*ratio2", expected: "2*ratio2", changed: false},
		{name: "absent", src: "WIDTH", expected: "WIDTH", changed: false},
		{name: "spacing preserved", src: "(ratio)<<  1", expected: "(scale)<<  1", changed: true},
		{name: "untokenizable falls back to word boundary", src: "ratio $ ratio2", expected: "scale $ ratio2", changed: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, changed := RenameIdentifier(tc.src, "ratio", "scale")
			assert.Equal(t, tc.expected, out)
			assert.Equal(t, tc.changed, changed)
		})
	}
}
