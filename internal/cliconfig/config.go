// Package cliconfig loads storytext command-line configuration from
// defaults, a config file, STORYTEXT_* environment variables and flags.
package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/storytext/internal/domain"
)

const (
	DefaultInterpreter    = "python3"
	DefaultExtractScript  = "pdf_ext/pdf_ext.py"
	DefaultTagScript      = "txt_tag/txt_tag.py"
	DefaultExtractTimeout = 10 * time.Second
	DefaultTagTimeout     = 5 * time.Second
	DefaultKillGrace      = 500 * time.Millisecond
	DefaultLogLevel       = "info"
)

// Config holds CLI configuration for storytext.
type Config struct {
	ScriptDir     string
	Interpreter   string
	ExtractScript string
	TagScript     string

	ExtractTimeout time.Duration
	TagTimeout     time.Duration
	KillGrace      time.Duration

	// StdinMode sends PDF bytes to the extraction script on stdin instead
	// of passing the file path.
	StdinMode bool

	LogLevel    string
	MetricsAddr string

	InboxDir  string
	OutboxDir string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Interpreter:    DefaultInterpreter,
		ExtractScript:  DefaultExtractScript,
		TagScript:      DefaultTagScript,
		ExtractTimeout: DefaultExtractTimeout,
		TagTimeout:     DefaultTagTimeout,
		KillGrace:      DefaultKillGrace,
		LogLevel:       DefaultLogLevel,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// Zero timeouts are allowed and mean no deadline.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ExtractScript) == "" {
		return fmt.Errorf("%w: extract-script is required", domain.ErrInvalidConfig)
	}
	if c.TagScript == "" {
		c.TagScript = DefaultTagScript
	}
	if c.ExtractTimeout < 0 {
		return fmt.Errorf("%w: extract-timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.TagTimeout < 0 {
		return fmt.Errorf("%w: tag-timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.KillGrace < 0 {
		return fmt.Errorf("%w: kill-grace must not be negative", domain.ErrInvalidConfig)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log-level: %v", domain.ErrInvalidConfig, err)
	}
	if c.OutboxDir == "" {
		c.OutboxDir = c.InboxDir
	}
	return nil
}

// ValidateSpool checks the settings the spool command needs on top of Validate.
func (c *Config) ValidateSpool() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.InboxDir == "" {
		return fmt.Errorf("%w: inbox is required", domain.ErrInvalidConfig)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Locator returns the script locator described by the configuration.
func (c *Config) Locator() domain.ScriptLocator {
	return domain.NewScriptLocator(c.ScriptDir, c.Interpreter)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
