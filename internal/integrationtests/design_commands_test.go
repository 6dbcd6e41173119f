package integration_tests

import (
	"testing"

	"github.com/specialistvlad/vuldesign/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesignCommands_QueryValidProject(t *testing.T) {
	testCases := []struct {
		name    string
		command string
		args    []string
		want    string
	}{
		{name: "validate all", command: "validate", want: "design ok: 2 modules\n"},
		{name: "validate one", command: "validate", args: []string{"leaf"}, want: "module leaf: ok\n"},
		{name: "eval globals", command: "eval", args: []string{"DEPTH", "*", "2", "+", "SPARE"}, want: "15\n"},
		{name: "eval log2", command: "eval", args: []string{"@WIDTH"}, want: "5\n"},
		{name: "parse", command: "parse", args: []string{"WIDTH", "-", "1", "<<", "2"}, want: "((WIDTH - 1) << 2)\n"},
		{name: "configs by group", command: "configs", args: []string{"bus"}, want: "WIDTH\n"},
		{name: "bundle", command: "bundle", args: []string{"word"}, want: "struct word [bus]\n  data: uint(WIDTH)\n"},
		{name: "update order", command: "update-order", args: []string{"top"}, want: "__top__ -> u0\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			result := testutil.RunDesignTest(t, testutil.ValidProject, tc.command, tc.args...)

			// --- Assert ---
			require.NoError(t, result.Err)
			assert.Contains(t, result.Output, tc.want)
		})
	}
}

func TestDesignCommands_ValidateLogsEachModule(t *testing.T) {
	result := testutil.RunDesignTest(t, testutil.ValidProject, "validate")

	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "Validate: Module passed.")
	assert.Contains(t, result.Output, "module=leaf")
	assert.Contains(t, result.Output, "module=top")
}
