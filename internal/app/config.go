package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectPath  string // directory or .hcl file
	SettingsPath string // optional; defaults to vuldesign.yaml beside the project

	LogFormat string
	LogLevel  string

	Command string
	Args    []string
	OutPath string // export target after an editing command
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectPath == "" {
		return nil, errors.New("ProjectPath is a required configuration field and cannot be empty")
	}
	if cfg.Command == "" {
		return nil, errors.New("Command is a required configuration field and cannot be empty")
	}
	if cfg.LogLevel != "" && !validLevel(cfg.LogLevel) {
		return nil, errors.New("invalid log level: must be 'debug', 'info', 'warn', or 'error'")
	}
	if cfg.LogFormat != "" && !validFormat(cfg.LogFormat) {
		return nil, errors.New("invalid log format: must be 'text' or 'json'")
	}
	return &cfg, nil
}

func validLevel(s string) bool {
	_, ok := levels[s]
	return ok
}

func validFormat(s string) bool {
	return s == "text" || s == "json"
}
