package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (STORYTEXT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
//
// PY_SCRIPT_DIR is honoured as a fallback for STORYTEXT_SCRIPT_DIR.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("script-dir", os.Getenv("PY_SCRIPT_DIR"), &cfg.ScriptDir)
	s.setString("script-dir", os.Getenv("STORYTEXT_SCRIPT_DIR"), &cfg.ScriptDir)
	s.setString("interpreter", os.Getenv("STORYTEXT_INTERPRETER"), &cfg.Interpreter)
	s.setString("extract-script", os.Getenv("STORYTEXT_EXTRACT_SCRIPT"), &cfg.ExtractScript)
	s.setString("tag-script", os.Getenv("STORYTEXT_TAG_SCRIPT"), &cfg.TagScript)
	s.setString("log-level", os.Getenv("STORYTEXT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("STORYTEXT_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("inbox", os.Getenv("STORYTEXT_INBOX_DIR"), &cfg.InboxDir)
	s.setString("outbox", os.Getenv("STORYTEXT_OUTBOX_DIR"), &cfg.OutboxDir)

	if err := s.setDuration("extract-timeout", os.Getenv("STORYTEXT_EXTRACT_TIMEOUT"), &cfg.ExtractTimeout); err != nil {
		return err
	}
	if err := s.setDuration("tag-timeout", os.Getenv("STORYTEXT_TAG_TIMEOUT"), &cfg.TagTimeout); err != nil {
		return err
	}
	if err := s.setDuration("kill-grace", os.Getenv("STORYTEXT_KILL_GRACE"), &cfg.KillGrace); err != nil {
		return err
	}

	s.setBoolFromString("stdin-mode", os.Getenv("STORYTEXT_STDIN_MODE"), &cfg.StdinMode)

	return nil
}
