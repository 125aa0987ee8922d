package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawLoggingConfig is the file form of LoggingConfig; nil means "not set".
type RawLoggingConfig struct {
	Level      *string `yaml:"level"`
	Format     *string `yaml:"format"`
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
	MaxAgeDays *int    `yaml:"max_age_days"`
	Compress   *bool   `yaml:"compress"`
}

// RawConfig is one config file as written. Later files override earlier ones
// key by key.
type RawConfig struct {
	Include        IncludeList       `yaml:"include"`
	Listen         *string           `yaml:"listen"`
	Path           *string           `yaml:"path"`
	TargetClass    *string           `yaml:"target_class"`
	MovableDir     *string           `yaml:"movable_dir"`
	EdgeDebounceMS *int              `yaml:"edge_debounce_ms"`
	EdgeThreshold  *int              `yaml:"edge_threshold"`
	FrameRate      *float64          `yaml:"frame_rate"`
	FrameBurst     *int              `yaml:"frame_burst"`
	ReadLimit      *int64            `yaml:"read_limit"`
	OriginPatterns []string          `yaml:"origin_patterns"`
	CenterOnExit   *bool             `yaml:"center_on_exit"`
	MoverBlocked   *bool             `yaml:"mover_blocked"`
	BlockHotkey    *string           `yaml:"block_hotkey"`
	Display        *string           `yaml:"display"`
	XAuthority     *string           `yaml:"xauthority"`
	Logging        *RawLoggingConfig `yaml:"logging"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Listen != nil {
		out.Listen = overlay.Listen
	}
	if overlay.Path != nil {
		out.Path = overlay.Path
	}
	if overlay.TargetClass != nil {
		out.TargetClass = overlay.TargetClass
	}
	if overlay.MovableDir != nil {
		out.MovableDir = overlay.MovableDir
	}
	if overlay.EdgeDebounceMS != nil {
		out.EdgeDebounceMS = overlay.EdgeDebounceMS
	}
	if overlay.EdgeThreshold != nil {
		out.EdgeThreshold = overlay.EdgeThreshold
	}
	if overlay.FrameRate != nil {
		out.FrameRate = overlay.FrameRate
	}
	if overlay.FrameBurst != nil {
		out.FrameBurst = overlay.FrameBurst
	}
	if overlay.ReadLimit != nil {
		out.ReadLimit = overlay.ReadLimit
	}
	if overlay.OriginPatterns != nil {
		out.OriginPatterns = append([]string(nil), overlay.OriginPatterns...)
	}
	if overlay.CenterOnExit != nil {
		out.CenterOnExit = overlay.CenterOnExit
	}
	if overlay.MoverBlocked != nil {
		out.MoverBlocked = overlay.MoverBlocked
	}
	if overlay.BlockHotkey != nil {
		out.BlockHotkey = overlay.BlockHotkey
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.Logging != nil {
		out.Logging = mergeRawLogging(out.Logging, overlay.Logging)
	}

	return out
}

func mergeRawLogging(base *RawLoggingConfig, overlay *RawLoggingConfig) *RawLoggingConfig {
	out := RawLoggingConfig{}
	if base != nil {
		out = *base
	}
	if overlay.Level != nil {
		out.Level = overlay.Level
	}
	if overlay.Format != nil {
		out.Format = overlay.Format
	}
	if overlay.File != nil {
		out.File = overlay.File
	}
	if overlay.MaxSizeMB != nil {
		out.MaxSizeMB = overlay.MaxSizeMB
	}
	if overlay.MaxBackups != nil {
		out.MaxBackups = overlay.MaxBackups
	}
	if overlay.MaxAgeDays != nil {
		out.MaxAgeDays = overlay.MaxAgeDays
	}
	if overlay.Compress != nil {
		out.Compress = overlay.Compress
	}
	return &out
}
