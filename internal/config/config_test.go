package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.EdgeDebounce() != 150*time.Millisecond {
		t.Fatalf("expected 150ms debounce, got %v", cfg.EdgeDebounce())
	}
	if cfg.TargetClass != "firefox" {
		t.Fatalf("expected default target class firefox, got %q", cfg.TargetClass)
	}
	if !cfg.CenterOnExit {
		t.Fatalf("expected center_on_exit to default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Listen != DefaultListen {
		t.Fatalf("expected default listen, got %q", res.Config.Listen)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "# empty\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Path != DefaultPath {
		t.Fatalf("expected default path, got %q", res.Config.Path)
	}
}

func TestLoadFromPath_OverridesAndExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, strings.Join([]string{
		"listen: \"127.0.0.1:9999\"",
		"target_class: Chromium",
		"edge_debounce_ms: 300",
		"center_on_exit: false",
		"origin_patterns: [\"*.youtube.com\"]",
		"display: \":1\"",
		"xauthority: \"/tmp/test-xauth\"",
		"logging:",
		"  level: debug",
		"  format: json",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Listen != "127.0.0.1:9999" || cfg.TargetClass != "Chromium" {
		t.Fatalf("unexpected listen/class: %q %q", cfg.Listen, cfg.TargetClass)
	}
	if cfg.EdgeDebounce() != 300*time.Millisecond {
		t.Fatalf("expected 300ms, got %v", cfg.EdgeDebounce())
	}
	if cfg.CenterOnExit {
		t.Fatalf("expected center_on_exit false")
	}
	if len(cfg.OriginPatterns) != 1 || cfg.OriginPatterns[0] != "*.youtube.com" {
		t.Fatalf("unexpected origin patterns %v", cfg.OriginPatterns)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	// Untouched logging keys keep their defaults.
	if cfg.Logging.MaxSizeMB != 10 {
		t.Fatalf("expected default max_size_mb, got %d", cfg.Logging.MaxSizeMB)
	}

	val, src, err := Explain(res, "display")
	if err != nil {
		t.Fatalf("explain display: %v", err)
	}
	if val != ":1" {
		t.Fatalf("expected explain display :1, got %#v", val)
	}
	if src.Kind != SourceFile || src.Line != 6 {
		t.Fatalf("expected display source from file line 6, got %#v", src)
	}

	val, src, err = Explain(res, "logging.max_backups")
	if err != nil {
		t.Fatalf("explain logging.max_backups: %v", err)
	}
	if val != 3 || src.Kind != SourceDefault {
		t.Fatalf("expected default 3, got %#v from %#v", val, src)
	}

	if _, _, err := Explain(res, "layouts.grid"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), filepath.Base(path)) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "path: \"/ok\"\nedge_threshold: -4\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "edge_threshold" {
		t.Fatalf("expected edge_threshold path, got %q", verr.Path)
	}
	if verr.Source.Line != 2 {
		t.Fatalf("expected line 2, got %d", verr.Source.Line)
	}
	if !strings.Contains(err.Error(), ":2:") {
		t.Fatalf("expected position in error, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()
	configD := filepath.Join(dir, "config.d")
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), "frame_burst: 5\nedge_threshold: 2\n")
	writeConfig(t, filepath.Join(configD, "20-override.yaml"), "frame_burst: 6\n")
	writeConfig(t, filepath.Join(configD, "ignored.txt"), "frame_burst: 99\n")

	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "include: config.d\nedge_threshold: 7\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.FrameBurst != 6 {
		t.Fatalf("expected later include to win, got %d", res.Config.FrameBurst)
	}
	if res.Config.EdgeThreshold != 7 {
		t.Fatalf("expected main file to override includes, got %d", res.Config.EdgeThreshold)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "include: missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for missing include")
	}
	if !strings.Contains(err.Error(), "missing.yaml") || !strings.Contains(err.Error(), ":1:") {
		t.Fatalf("expected include context, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml\n")
	writeConfig(t, b, "include: a.yaml\n")

	_, err := LoadFromPath(a)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"listen empty", func(c *Config) { c.Listen = "" }, "listen"},
		{"listen no port", func(c *Config) { c.Listen = "localhost" }, "listen"},
		{"path relative", func(c *Config) { c.Path = "mover" }, "path"},
		{"class empty", func(c *Config) { c.TargetClass = " " }, "target_class"},
		{"negative debounce", func(c *Config) { c.EdgeDebounceMS = -1 }, "edge_debounce_ms"},
		{"zero rate", func(c *Config) { c.FrameRate = 0 }, "frame_rate"},
		{"zero burst", func(c *Config) { c.FrameBurst = 0 }, "frame_burst"},
		{"tiny read limit", func(c *Config) { c.ReadLimit = 8 }, "read_limit"},
		{"blank origin", func(c *Config) { c.OriginPatterns = []string{""} }, "origin_patterns[0]"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
		})
	}
}

func TestSaveTo_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.TargetClass = "Navigator"
	cfg.MoverBlocked = true
	cfg.BlockHotkey = "Mod4-Mod1-m"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.TargetClass != "Navigator" || !res.Config.MoverBlocked || res.Config.BlockHotkey != "Mod4-Mod1-m" {
		t.Fatalf("unexpected loaded config %+v", res.Config)
	}
}

func TestSaveTo_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = ""
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.SaveTo(path); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file written")
	}
}

func TestMovableDirPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	got, err := cfg.MovableDirPath()
	if err != nil {
		t.Fatalf("MovableDirPath: %v", err)
	}
	if want := filepath.Join(home, ".config", "zenmover", "movable"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	cfg.MovableDir = "~/sites"
	got, _ = cfg.MovableDirPath()
	if want := filepath.Join(home, "sites"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
