package config

import (
	"fmt"
)

// ValidationError points at the config key that failed validation and, when
// known, the file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Listen != nil {
		cfg.Listen = *raw.Listen
	}
	if raw.Path != nil {
		cfg.Path = *raw.Path
	}
	if raw.TargetClass != nil {
		cfg.TargetClass = *raw.TargetClass
	}
	if raw.MovableDir != nil {
		cfg.MovableDir = *raw.MovableDir
	}
	cfg.EdgeDebounceMS = derefInt(raw.EdgeDebounceMS, cfg.EdgeDebounceMS)
	cfg.EdgeThreshold = derefInt(raw.EdgeThreshold, cfg.EdgeThreshold)
	if raw.FrameRate != nil {
		cfg.FrameRate = *raw.FrameRate
	}
	cfg.FrameBurst = derefInt(raw.FrameBurst, cfg.FrameBurst)
	if raw.ReadLimit != nil {
		cfg.ReadLimit = *raw.ReadLimit
	}
	if raw.OriginPatterns != nil {
		cfg.OriginPatterns = append([]string(nil), raw.OriginPatterns...)
	}
	if raw.CenterOnExit != nil {
		cfg.CenterOnExit = *raw.CenterOnExit
	}
	if raw.MoverBlocked != nil {
		cfg.MoverBlocked = *raw.MoverBlocked
	}
	if raw.BlockHotkey != nil {
		cfg.BlockHotkey = *raw.BlockHotkey
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}

	if l := raw.Logging; l != nil {
		if l.Level != nil {
			cfg.Logging.Level = *l.Level
		}
		if l.Format != nil {
			cfg.Logging.Format = *l.Format
		}
		if l.File != nil {
			cfg.Logging.File = *l.File
		}
		cfg.Logging.MaxSizeMB = derefInt(l.MaxSizeMB, cfg.Logging.MaxSizeMB)
		cfg.Logging.MaxBackups = derefInt(l.MaxBackups, cfg.Logging.MaxBackups)
		cfg.Logging.MaxAgeDays = derefInt(l.MaxAgeDays, cfg.Logging.MaxAgeDays)
		if l.Compress != nil {
			cfg.Logging.Compress = *l.Compress
		}
	}

	return cfg, nil
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
