package expr

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_Values(t *testing.T) {
	testCases := []struct {
		src      string
		expected int64
	}{
		// Precedence.
		{src: "1 + 2 * 3", expected: 7},
		{src: "(1 + 2) * 3", expected: 9},
		{src: "2 < 3 ? 10 : 20", expected: 10},
		{src: "1 + 2 << 1", expected: 6},
		{src: "1 | 2 ^ 3 & 4", expected: 3},
		{src: "2 * 3 % 4", expected: 2},
		{src: "10 - 3 - 2", expected: 5},
		{src: "100 / 10 / 5", expected: 2},
		{src: "1 ? 2 : 0 ? 3 : 4", expected: 2},
		{src: "0 ? 2 : 0 ? 3 : 4", expected: 4},

		// Short circuit.
		{src: "1 || (1/0)", expected: 1},
		{src: "0 && (1/0)", expected: 0},
		{src: "0 ? 1/0 : 5", expected: 5},
		{src: "1 ? 5 : 1 % 0", expected: 5},
		{src: "2 && 3", expected: 1},
		{src: "0 || 0", expected: 0},

		// Log2.
		{src: "@8", expected: 3},
		{src: "@16", expected: 4},
		{src: "@9", expected: 4},
		{src: "@1", expected: 0},
		{src: "@2", expected: 1},
		{src: "@3", expected: 2},

		// Unary minus.
		{src: "-1", expected: -1},
		{src: "3 - 1", expected: 2},
		{src: "3 - -1", expected: 4},
		{src: "- - 2", expected: 2},

		// Integer semantics.
		{src: "-7 / 2", expected: -3},
		{src: "-7 % 3", expected: -1},
		{src: "1 << 4", expected: 16},
		{src: "-16 >> 2", expected: -4},
		{src: "~0", expected: -1},
		{src: "!0", expected: 1},
		{src: "!5", expected: 0},
		{src: "5 & 3", expected: 1},
		{src: "5 ^ 3", expected: 6},
		{src: "5 | 3", expected: 7},
		{src: "3 >= 3", expected: 1},
		{src: "3 != 3", expected: 0},
		{src: "0x10 + 0X0f", expected: 31},
		{src: "0x7FFFFFFFFFFFFFFF + 1", expected: math.MinInt64},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			v, err := EvalString(tc.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, v)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	testCases := []struct {
		src string
		pos int
		msg string
	}{
		{src: "@0", pos: 0, msg: "log2 of non-positive"},
		{src: "@(-1)", pos: 0, msg: "log2 of non-positive"},
		{src: "1 / 0", pos: 2, msg: "division by zero"},
		{src: "1 % (2 - 2)", pos: 2, msg: "modulo by zero"},
		{src: "1 << -1", pos: 2, msg: "negative shift"},
		{src: "2 + WIDTH", pos: 4, msg: "undefined identifier"},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			_, err := EvalString(tc.src, nil)
			require.Error(t, err)

			var exprErr *Error
			require.ErrorAs(t, err, &exprErr)
			assert.Equal(t, EvalError, exprErr.Kind)
			assert.Equal(t, tc.pos, exprErr.Pos)
			assert.Contains(t, exprErr.Msg, tc.msg)
		})
	}
}

func TestEval_Resolver(t *testing.T) {
	values := map[string]int64{"WIDTH": 32, "DEPTH": 4}
	errMissing := errors.New("no such config")
	resolve := func(name string) (int64, error) {
		if v, ok := values[name]; ok {
			return v, nil
		}
		return 0, errMissing
	}

	v, err := EvalString("WIDTH * DEPTH + @WIDTH", resolve)
	require.NoError(t, err)
	assert.Equal(t, int64(133), v)

	// The unselected branch never reaches the resolver.
	v, err = EvalString("DEPTH > 2 ? WIDTH : MISSING", resolve)
	require.NoError(t, err)
	assert.Equal(t, int64(32), v)

	_, err = EvalString("WIDTH + MISSING", resolve)
	require.Error(t, err)
	assert.ErrorIs(t, err, errMissing)
	var exprErr *Error
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, 8, exprErr.Pos)
}

func TestLog2Ceil(t *testing.T) {
	for x, expected := range map[int64]int64{1: 0, 2: 1, 5: 3, 1024: 10, 1025: 11, math.MaxInt64: 63} {
		v, ok := Log2Ceil(x)
		require.True(t, ok)
		assert.Equal(t, expected, v, "log2(%d)", x)
	}
	_, ok := Log2Ceil(0)
	assert.False(t, ok)
	_, ok = Log2Ceil(math.MinInt64)
	assert.False(t, ok)
}
