package integration_tests

import (
	"testing"

	"github.com/specialistvlad/vuldesign/internal/testutil"
	"github.com/specialistvlad/vuldesign/internal/vulerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const topWithoutOutput = `module "top" {
  pipe_input "src" { type = "word" }
  instance "u0" { module = "leaf" }
  pipe_connect {
    instance = "u0"
    port     = "in"
    pipe     = "src"
  }
}
`

func TestDesignErrors(t *testing.T) {
	testCases := []struct {
		name     string
		file     string
		content  string
		command  string
		wantCode vulerr.Code
		wantMsg  string
	}{
		{
			name:     "syntax error",
			file:     "broken.hcl",
			content:  `config "X" {`,
			command:  "order",
			wantCode: vulerr.ProjectParse,
			wantMsg:  "failed to load project",
		},
		{
			name:     "circular configs",
			file:     "cycle.hcl",
			content:  "config \"A\" { value = B }\nconfig \"B\" { value = A + 1 }\n",
			command:  "order",
			wantCode: vulerr.ConfigCircular,
			wantMsg:  "circular references",
		},
		{
			name:     "bundle named like a config",
			file:     "clash.hcl",
			content:  "bundle \"WIDTH\" {\n  member \"x\" { type = \"bool\" }\n}\n",
			command:  "order",
			wantCode: vulerr.GlobalNameConflict,
			wantMsg:  `"WIDTH"`,
		},
		{
			name:     "circular instantiation",
			file:     "modules/leaf.hcl",
			content:  "module \"leaf\" {\n  instance \"back\" { module = \"top\" }\n}\n",
			command:  "order",
			wantCode: vulerr.ModuleCircular,
			wantMsg:  "circular instantiations",
		},
		{
			name:     "unconnected child port",
			file:     "modules/top.hcl",
			content:  topWithoutOutput,
			command:  "validate",
			wantCode: vulerr.PipePortUnconnected,
			wantMsg:  "u0.out",
		},
		{
			name:     "unknown instance module",
			file:     "modules/top.hcl",
			content:  "module \"top\" {\n  instance \"u0\" { module = \"leef\" }\n}\n",
			command:  "validate",
			wantCode: vulerr.InstanceModuleMissing,
			wantMsg:  `"leef"`,
		},
		{
			name:     "unknown port type",
			file:     "modules/top.hcl",
			content:  "module \"top\" {\n  pipe_input \"src\" { type = \"wrod\" }\n}\n",
			command:  "validate",
			wantCode: vulerr.UnknownType,
			wantMsg:  `"wrod"`,
		},
		{
			name:     "unknown config",
			file:     "extra.hcl",
			content:  "",
			command:  "config",
			wantCode: vulerr.ConfigNotFound,
			wantMsg:  "WIDHT",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			files := testutil.WithFile(testutil.ValidProject, tc.file, tc.content)
			var args []string
			if tc.command == "config" {
				args = []string{"WIDHT"}
			}

			// --- Act ---
			result := testutil.RunDesignTest(t, files, tc.command, args...)

			// --- Assert ---
			require.Error(t, result.Err)
			assert.True(t, vulerr.Is(result.Err, tc.wantCode), "got %v", result.Err)
			assert.Contains(t, result.Err.Error(), tc.wantMsg)
		})
	}
}
