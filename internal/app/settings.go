package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SettingsFile is looked up in the project directory when no settings path
// is configured.
const SettingsFile = "vuldesign.yaml"

// Settings are project defaults read from YAML. Command-line flags win over
// settings.
type Settings struct {
	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
	// DefaultTag is given to bundles declared without tags.
	DefaultTag string `yaml:"default_tag,omitempty"`
	// SortedOrder makes export write libraries in name order rather than
	// dependency order.
	SortedOrder bool `yaml:"sorted_order,omitempty"`
}

// LoadSettings reads settings from path. A missing file is an error only
// when required is set; otherwise empty settings are returned.
func LoadSettings(path string, required bool) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return &Settings{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read settings %s", path)
	}

	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "failed to decode settings %s", path)
	}
	if s.LogLevel != "" && !validLevel(s.LogLevel) {
		return nil, errors.Errorf("%s: invalid log_level %q", path, s.LogLevel)
	}
	if s.LogFormat != "" && !validFormat(s.LogFormat) {
		return nil, errors.Errorf("%s: invalid log_format %q", path, s.LogFormat)
	}
	return &s, nil
}

// settingsFor resolves and loads the settings for cfg.
func settingsFor(cfg *Config) (*Settings, error) {
	if cfg.SettingsPath != "" {
		return LoadSettings(cfg.SettingsPath, true)
	}
	dir := cfg.ProjectPath
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	return LoadSettings(filepath.Join(dir, SettingsFile), false)
}

// merge fills the logging fields of cfg left empty by flags.
func (s *Settings) merge(cfg Config) Config {
	if cfg.LogLevel == "" {
		cfg.LogLevel = s.LogLevel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = s.LogFormat
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	return cfg
}
