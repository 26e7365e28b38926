package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				ScriptDir:      "/srv/scripts",
				Interpreter:    "python3",
				ExtractScript:  "pdf_ext/pdf_ext.py",
				TagScript:      "txt_tag/txt_tag.py",
				ExtractTimeout: "15s",
				TagTimeout:     "3s",
				KillGrace:      "250ms",
				StdinMode:      &trueVal,
				LogLevel:       "warn",
				MetricsAddr:    "127.0.0.1:9100",
				InboxDir:       "/spool/in",
				OutboxDir:      "/spool/out",
			},
			changed: map[string]bool{},
			expected: Config{
				ScriptDir:      "/srv/scripts",
				Interpreter:    "python3",
				ExtractScript:  "pdf_ext/pdf_ext.py",
				TagScript:      "txt_tag/txt_tag.py",
				ExtractTimeout: 15 * time.Second,
				TagTimeout:     3 * time.Second,
				KillGrace:      250 * time.Millisecond,
				StdinMode:      true,
				LogLevel:       "warn",
				MetricsAddr:    "127.0.0.1:9100",
				InboxDir:       "/spool/in",
				OutboxDir:      "/spool/out",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				ScriptDir:      "/config/scripts",
				ExtractTimeout: "1m",
			},
			changed: map[string]bool{"script-dir": true},
			initial: Config{ScriptDir: "/flag/scripts"},
			expected: Config{
				ScriptDir:      "/flag/scripts", // unchanged because flag was set
				ExtractTimeout: time.Minute,
			},
		},
		{
			name:       "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{KillGrace: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
script_dir = "/srv/scripts"
extract_timeout = "20s"
stdin_mode = true
inbox_dir = "/spool/in"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.ScriptDir != "/srv/scripts" {
		t.Errorf("ScriptDir = %v, want /srv/scripts", fc.ScriptDir)
	}
	if fc.ExtractTimeout != "20s" {
		t.Errorf("ExtractTimeout = %v, want 20s", fc.ExtractTimeout)
	}
	if fc.StdinMode == nil || !*fc.StdinMode {
		t.Errorf("StdinMode = %v, want true", fc.StdinMode)
	}
	if fc.InboxDir != "/spool/in" {
		t.Errorf("InboxDir = %v, want /spool/in", fc.InboxDir)
	}
}

func TestLoadFileConfig_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "storytext.yaml")

	yamlContent := `
script_dir: /srv/scripts
interpreter: python3
tag_timeout: 7s
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.ScriptDir != "/srv/scripts" || fc.Interpreter != "python3" || fc.TagTimeout != "7s" {
		t.Errorf("LoadFileConfig() = %+v", fc)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
script_dir = "/test"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".storytext") {
		t.Errorf("DefaultConfigPath() = %v, should contain .storytext", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
