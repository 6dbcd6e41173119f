package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/specialistvlad/vuldesign/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Commands lists every command accepted on the command line.
var Commands = []string{
	"bundle", "config", "configs", app.ConsoleCommand, "eval", "export", "order", "parse",
	"remove-config", "rename-bundle", "rename-config", "update-order", "validate",
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("vuldesign", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
vuldesign - Checks and edits hardware designs described in HCL.

Usage:
  vuldesign [options] COMMAND [ARGS...]

Commands:
  validate [MODULE]        validate one module or the whole design
  order                    print the dependency order of configs, bundles and modules
  eval EXPR                evaluate an expression against the global config items
  parse EXPR               print the fully parenthesized form of an expression
  config NAME              show a config item
  configs [GROUP]          list config items
  bundle NAME              show a bundle
  update-order MODULE      print the instance update order of a module
  rename-config OLD NEW    rename a config item (combine with -out to save)
  rename-bundle OLD NEW    rename a bundle (combine with -out to save)
  remove-config NAME       remove an unreferenced config item
  export FILE              write the design to one HCL file
  console                  start the interactive console

Options:
`)
		flagSet.PrintDefaults()
	}

	projectFlag := flagSet.String("project", ".", "Path to the project directory or .hcl file.")
	pFlag := flagSet.String("p", "", "Path to the project directory or .hcl file (shorthand).")
	settingsFlag := flagSet.String("settings", "", "Path to a YAML settings file. Defaults to vuldesign.yaml in the project directory.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	outFlag := flagSet.String("out", "", "After a rename or remove, write the edited design to this file.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *projectFlag
	if *pFlag != "" {
		path = *pFlag
	}

	if flagSet.NArg() == 0 {
		slog.Debug("No command provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	command := flagSet.Arg(0)
	if !slices.Contains(Commands, command) {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", command)}
	}
	cmdArgs := flagSet.Args()[1:]

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "" && logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *outFlag != "" {
		switch command {
		case "rename-config", "rename-bundle", "remove-config":
		default:
			return nil, false, &ExitError{Code: 2, Message: "-out only applies to rename-config, rename-bundle and remove-config"}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ProjectPath:  path,
		SettingsPath: *settingsFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		Command:      command,
		Args:         cmdArgs,
		OutPath:      *outFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
