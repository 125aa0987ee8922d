package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListen         = "127.0.0.1:8080"
	DefaultPath           = "/mover"
	DefaultTargetClass    = "firefox"
	DefaultEdgeDebounceMS = 150
	DefaultFrameRate      = 240
	DefaultFrameBurst     = 32
	DefaultReadLimit      = 4096
)

// LoggingConfig configures the daemon log.
type LoggingConfig struct {
	// Level controls verbosity: debug, info, warn, error
	Level string `yaml:"level"`
	// Format is "text" or "json"
	Format string `yaml:"format"`
	// File is the log file path; empty logs to stderr
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size before rotation
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files to keep
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays removes rotated files older than this; 0 keeps them
	MaxAgeDays int  `yaml:"max_age_days"`
	Compress   bool `yaml:"compress"`
}

// Config is the effective daemon configuration.
type Config struct {
	Listen      string `yaml:"listen"`
	Path        string `yaml:"path"`
	TargetClass string `yaml:"target_class"`
	// MovableDir holds <domain>.txt class lists; empty uses the default
	// location next to the config file.
	MovableDir     string   `yaml:"movable_dir,omitempty"`
	EdgeDebounceMS int      `yaml:"edge_debounce_ms"`
	EdgeThreshold  int      `yaml:"edge_threshold"`
	FrameRate      float64  `yaml:"frame_rate"`  // frames per second per connection
	FrameBurst     int      `yaml:"frame_burst"` // frames allowed above the rate
	ReadLimit      int64    `yaml:"read_limit"`  // max frame size in bytes
	OriginPatterns []string `yaml:"origin_patterns"`
	CenterOnExit   bool     `yaml:"center_on_exit"`
	MoverBlocked   bool     `yaml:"mover_blocked"`
	// BlockHotkey toggles the kill-switch, e.g. "Mod4-Mod1-m". Empty disables.
	BlockHotkey string `yaml:"block_hotkey,omitempty"`

	// Display is the X11 display to connect to (e.g. ":0"). Empty uses $DISPLAY.
	Display string `yaml:"display,omitempty"`
	// XAuthority is the X11 authority file. Empty uses $XAUTHORITY.
	XAuthority string `yaml:"xauthority,omitempty"`

	Logging LoggingConfig `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:         DefaultListen,
		Path:           DefaultPath,
		TargetClass:    DefaultTargetClass,
		EdgeDebounceMS: DefaultEdgeDebounceMS,
		EdgeThreshold:  0,
		FrameRate:      DefaultFrameRate,
		FrameBurst:     DefaultFrameBurst,
		ReadLimit:      DefaultReadLimit,
		// Page agents connect from arbitrary site origins.
		OriginPatterns: []string{"*"},
		CenterOnExit:   true,
		MoverBlocked:   false,
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// EdgeDebounce returns the auto-maximize delay.
func (c *Config) EdgeDebounce() time.Duration {
	return time.Duration(c.EdgeDebounceMS) * time.Millisecond
}

// MovableDirPath returns the directory holding per-domain class lists.
func (c *Config) MovableDirPath() (string, error) {
	if c.MovableDir != "" {
		return expandHome(c.MovableDir)
	}
	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "movable"), nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return &ValidationError{Path: "listen", Err: fmt.Errorf("listen is required")}
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return &ValidationError{Path: "listen", Err: fmt.Errorf("listen must be host:port: %v", err)}
	}
	if !strings.HasPrefix(c.Path, "/") {
		return &ValidationError{Path: "path", Err: fmt.Errorf("path must start with /")}
	}
	if strings.TrimSpace(c.TargetClass) == "" {
		return &ValidationError{Path: "target_class", Err: fmt.Errorf("target_class is required")}
	}
	if c.EdgeDebounceMS < 0 {
		return &ValidationError{Path: "edge_debounce_ms", Err: fmt.Errorf("edge_debounce_ms must be >= 0")}
	}
	if c.EdgeThreshold < 0 {
		return &ValidationError{Path: "edge_threshold", Err: fmt.Errorf("edge_threshold must be >= 0")}
	}
	if c.FrameRate <= 0 {
		return &ValidationError{Path: "frame_rate", Err: fmt.Errorf("frame_rate must be > 0")}
	}
	if c.FrameBurst < 1 {
		return &ValidationError{Path: "frame_burst", Err: fmt.Errorf("frame_burst must be >= 1")}
	}
	if c.ReadLimit < 64 {
		return &ValidationError{Path: "read_limit", Err: fmt.Errorf("read_limit must be >= 64")}
	}
	for i, pattern := range c.OriginPatterns {
		if strings.TrimSpace(pattern) == "" {
			return &ValidationError{Path: fmt.Sprintf("origin_patterns[%d]", i), Err: fmt.Errorf("origin pattern must not be empty")}
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		return err
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		return &ValidationError{Path: "logging.format", Err: fmt.Errorf("format must be one of: text, json")}
	}
	if l.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if l.MaxBackups < 0 {
		return &ValidationError{Path: "logging.max_backups", Err: fmt.Errorf("max_backups must be >= 0")}
	}
	if l.MaxAgeDays < 0 {
		return &ValidationError{Path: "logging.max_age_days", Err: fmt.Errorf("max_age_days must be >= 0")}
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}
