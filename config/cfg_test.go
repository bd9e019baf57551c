package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Content.TabWidth != DefaultTabWidth {
		t.Errorf("TabWidth = %d, want %d", cfg.Content.TabWidth, DefaultTabWidth)
	}
	if cfg.Reader.AutoplayDelay != 2*time.Second {
		t.Errorf("AutoplayDelay = %v, want 2s", cfg.Reader.AutoplayDelay)
	}
	if cfg.Reader.CharInterval != 0.05 {
		t.Errorf("CharInterval = %v, want 0.05", cfg.Reader.CharInterval)
	}
	if !cfg.Reader.Audio || cfg.Reader.Autoplay {
		t.Errorf("Audio/Autoplay = %v/%v, want true/false", cfg.Reader.Audio, cfg.Reader.Autoplay)
	}
	if cfg.Library.ShowTest {
		t.Error("test books must be hidden by default")
	}
	if len(cfg.Library.Extensions) == 0 {
		t.Error("Extensions should not be empty")
	}
	if cfg.Library.ResourceRoot() != cfg.Library.BooksDir {
		t.Errorf("ResourceRoot() = %q, want books dir %q", cfg.Library.ResourceRoot(), cfg.Library.BooksDir)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
library:
  books_dir: ` + filepath.Join(tmpDir, "books") + `
  resources_dir: ` + filepath.Join(tmpDir, "res") + `
  show_test: true
content:
  tab_width: 4
reader:
  autoplay: true
  autoplay_delay: 500ms
  char_interval: 0.1
render:
  width: 800
  height: 600
logging:
  console:
    level: normal
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "test.log") + `
    mode: append
reporting:
  destination: ` + filepath.Join(tmpDir, "test-report.zip") + `
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if !cfg.Library.ShowTest {
		t.Error("Expected ShowTest to be true")
	}
	if cfg.Library.ResourceRoot() != filepath.Join(tmpDir, "res") {
		t.Errorf("ResourceRoot() = %q", cfg.Library.ResourceRoot())
	}
	if cfg.Content.TabWidth != 4 {
		t.Errorf("TabWidth = %d, want 4", cfg.Content.TabWidth)
	}
	// untouched values come from template
	if !cfg.Content.Normalize {
		t.Error("Expected Normalize default to survive overlay")
	}
	if cfg.Reader.Delay() != 500*time.Millisecond {
		t.Errorf("Delay() = %v, want 500ms", cfg.Reader.Delay())
	}
	if cfg.Render.Width != 800 || cfg.Render.Height != 600 {
		t.Errorf("Render size = %dx%d", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("FileLogger.Mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "version: 1\nlibrary:\n  show_test: true\n  invalid indent\n"},
		{"unknown field", "version: 1\nunknown_field: value\n"},
		{"bad version", "version: 2\n"},
		{"bad interval", "version: 1\nreader:\n  char_interval: 0\n"},
		{"bad extension", "version: 1\nlibrary:\n  extensions: [\"json\"]\n"},
		{"bad log level", "version: 1\nlogging:\n  console:\n    level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !strings.Contains(string(data), "lectern.log") {
		t.Error("Prepare() did not expand log destination")
	}
	if strings.Contains(string(data), "{{") {
		t.Error("Prepare() left unexpanded template actions")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	cfg2, err := unmarshalConfig(data, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if cfg2.Reader.AutoplayDelay != cfg.Reader.AutoplayDelay {
		t.Errorf("AutoplayDelay after dump = %v, want %v", cfg2.Reader.AutoplayDelay, cfg.Reader.AutoplayDelay)
	}
}

func TestReaderDelayFallback(t *testing.T) {
	var rc ReaderConfig
	if rc.Delay() != DefaultAutoplayDelay {
		t.Errorf("Delay() = %v, want %v", rc.Delay(), DefaultAutoplayDelay)
	}
}
