package vulerr

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := New(ConfigNotFound, "config item %q not found", "WIDTH")
	assert.Equal(t, `#30001: config item "WIDTH" not found`, err.Error())
}

func TestCodeOf_ThroughWrapping(t *testing.T) {
	base := New(BundleCircular, "loop")

	wrapped := fmt.Errorf("loading: %w", base)
	code, ok := CodeOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, BundleCircular, code)

	pkgWrapped := errors.Wrap(base, "file a.hcl")
	assert.True(t, Is(pkgWrapped, BundleCircular))
	assert.False(t, Is(pkgWrapped, ConfigCircular))
	assert.True(t, Is(errors.WithMessage(pkgWrapped, "project"), BundleCircular))

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("division by zero")
	err := Wrap(ConfigEvalFailed, cause, "evaluating %q", "A")
	assert.Equal(t, `#30006: evaluating "A": division by zero`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestSuggest(t *testing.T) {
	candidates := []string{"WIDTH", "DEPTH", "ratio"}

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single typo", input: "WIDHT", expected: "WIDTH"},
		{name: "missing letter", input: "rato", expected: "ratio"},
		{name: "too far", input: "something_else", expected: ""},
		{name: "empty", input: "", expected: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Suggest(tc.input, candidates))
		})
	}

	assert.Equal(t, ` (did you mean "DEPTH"?)`, DidYouMean("DEPT", candidates))
	assert.Empty(t, DidYouMean("zzz", nil))
}
