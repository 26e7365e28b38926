package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ScriptDir      string `toml:"script_dir" yaml:"script_dir"`
	Interpreter    string `toml:"interpreter" yaml:"interpreter"`
	ExtractScript  string `toml:"extract_script" yaml:"extract_script"`
	TagScript      string `toml:"tag_script" yaml:"tag_script"`
	ExtractTimeout string `toml:"extract_timeout" yaml:"extract_timeout"`
	TagTimeout     string `toml:"tag_timeout" yaml:"tag_timeout"`
	KillGrace      string `toml:"kill_grace" yaml:"kill_grace"`
	StdinMode      *bool  `toml:"stdin_mode" yaml:"stdin_mode"`
	LogLevel       string `toml:"log_level" yaml:"log_level"`
	MetricsAddr    string `toml:"metrics_addr" yaml:"metrics_addr"`
	InboxDir       string `toml:"inbox_dir" yaml:"inbox_dir"`
	OutboxDir      string `toml:"outbox_dir" yaml:"outbox_dir"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.storytext/config.toml if the user home
// directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".storytext", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("script-dir", fc.ScriptDir, &cfg.ScriptDir)
	s.setString("interpreter", fc.Interpreter, &cfg.Interpreter)
	s.setString("extract-script", fc.ExtractScript, &cfg.ExtractScript)
	s.setString("tag-script", fc.TagScript, &cfg.TagScript)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("inbox", fc.InboxDir, &cfg.InboxDir)
	s.setString("outbox", fc.OutboxDir, &cfg.OutboxDir)

	if err := s.setDuration("extract-timeout", fc.ExtractTimeout, &cfg.ExtractTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tag-timeout", fc.TagTimeout, &cfg.TagTimeout); err != nil {
		return err
	}
	if err := s.setDuration("kill-grace", fc.KillGrace, &cfg.KillGrace); err != nil {
		return err
	}

	s.setBool("stdin-mode", fc.StdinMode, &cfg.StdinMode)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
