package cli

import (
	"bytes"
	"testing"

	"github.com/specialistvlad/vuldesign/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantCode int
		wantMsg  string
	}{
		{
			name: "defaults",
			args: []string{"validate"},
			want: &app.Config{ProjectPath: ".", Command: "validate", Args: []string{}},
		},
		{
			name: "all flags",
			args: []string{"-project", "hw", "-settings", "s.yaml", "-log-level", "DEBUG", "-log-format", "json", "eval", "WIDTH", "+", "1"},
			want: &app.Config{
				ProjectPath: "hw", SettingsPath: "s.yaml", LogLevel: "debug", LogFormat: "json",
				Command: "eval", Args: []string{"WIDTH", "+", "1"},
			},
		},
		{
			name: "shorthand wins",
			args: []string{"-project", "a", "-p", "b", "order"},
			want: &app.Config{ProjectPath: "b", Command: "order", Args: []string{}},
		},
		{
			name: "out with rename",
			args: []string{"-out", "new.hcl", "rename-config", "A", "B"},
			want: &app.Config{ProjectPath: ".", Command: "rename-config", Args: []string{"A", "B"}, OutPath: "new.hcl"},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no command", args: []string{"-p", "hw"}, wantExit: true},
		{name: "unknown flag", args: []string{"-bogus", "order"}, wantCode: 2, wantMsg: "bogus"},
		{name: "unknown command", args: []string{"frobnicate"}, wantCode: 2, wantMsg: `unknown command "frobnicate"`},
		{name: "bad log format", args: []string{"-log-format", "xml", "order"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud", "order"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "out misuse", args: []string{"-out", "x.hcl", "validate"}, wantCode: 2, wantMsg: "-out only applies"},
		{name: "empty project", args: []string{"-project", "", "order"}, wantCode: 2, wantMsg: "ProjectPath"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tc.args, &out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantMsg)
				assert.Nil(t, cfg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, exit)
			if tc.wantExit {
				assert.Nil(t, cfg)
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestParse_AcceptsEveryCommand(t *testing.T) {
	for _, name := range Commands {
		_, _, err := Parse([]string{name}, &bytes.Buffer{})
		assert.NoError(t, err, name)
	}
}
