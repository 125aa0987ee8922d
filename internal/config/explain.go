package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths are the top-level keys plus logging.<key>, for example:
//
//	listen
//	target_class
//	edge_debounce_ms
//	origin_patterns
//	logging.level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "logging" {
		if len(parts) == 1 {
			return cfg.Logging, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return lookupLogging(cfg.Logging, parts[1], path)
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}

	switch path {
	case "listen":
		return cfg.Listen, nil
	case "path":
		return cfg.Path, nil
	case "target_class":
		return cfg.TargetClass, nil
	case "movable_dir":
		return cfg.MovableDirPath()
	case "edge_debounce_ms":
		return cfg.EdgeDebounceMS, nil
	case "edge_threshold":
		return cfg.EdgeThreshold, nil
	case "frame_rate":
		return cfg.FrameRate, nil
	case "frame_burst":
		return cfg.FrameBurst, nil
	case "read_limit":
		return cfg.ReadLimit, nil
	case "origin_patterns":
		return cfg.OriginPatterns, nil
	case "center_on_exit":
		return cfg.CenterOnExit, nil
	case "mover_blocked":
		return cfg.MoverBlocked, nil
	case "block_hotkey":
		return cfg.BlockHotkey, nil
	case "display":
		return cfg.Display, nil
	case "xauthority":
		return cfg.XAuthority, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}

func lookupLogging(l LoggingConfig, key string, path string) (any, error) {
	switch key {
	case "level":
		return l.Level, nil
	case "format":
		return l.Format, nil
	case "file":
		return l.File, nil
	case "max_size_mb":
		return l.MaxSizeMB, nil
	case "max_backups":
		return l.MaxBackups, nil
	case "max_age_days":
		return l.MaxAgeDays, nil
	case "compress":
		return l.Compress, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
