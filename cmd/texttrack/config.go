// Command texttrack replays a recorded sequence of tracker/text operations
// over a source video and exports the annotated result, standing in for
// a host application's insertion point: load config, build the pipeline,
// run it, report progress.
package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// QualityPreset names one of the built-in encoder presets.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// Bitrate and KeyframeInterval return the preset's informative encoder
// hints: low = 1 Mbps / keyframe every 60, medium = 3 Mbps / 30, high =
// 8 Mbps / 15. Unknown presets fall back to medium.
func (q QualityPreset) Bitrate() int {
	switch q {
	case QualityLow:
		return 1_000_000
	case QualityHigh:
		return 8_000_000
	default:
		return 3_000_000
	}
}

func (q QualityPreset) KeyframeInterval() int {
	switch q {
	case QualityLow:
		return 60
	case QualityHigh:
		return 15
	default:
		return 30
	}
}

// Config is the on-disk TOML project configuration: scalar export
// settings. The nested tracker/text/map-shaped state lives in the
// separate JSON project document (see project.Document) and the
// operations fixture (see ops.go); TOML doesn't comfortably express
// those.
type Config struct {
	Source          string  `toml:"source"`
	Output          string  `toml:"output"`
	OpsFile         string  `toml:"ops_file"`
	ProjectSavePath string  `toml:"project_save_path"`
	OutputWidth     int     `toml:"output_width"`
	OutputHeight    int     `toml:"output_height"`
	FPSOut          float64 `toml:"fps_out"`
	Quality         string  `toml:"quality"`
	Codec           string  `toml:"codec"`
	Smoothing       bool    `toml:"smoothing"`
}

// Preset returns the configured quality preset, defaulting to medium for
// an empty or unrecognized value.
func (c Config) Preset() QualityPreset {
	switch QualityPreset(c.Quality) {
	case QualityLow, QualityMedium, QualityHigh:
		return QualityPreset(c.Quality)
	default:
		return QualityMedium
	}
}

// LoadConfig parses a TOML project config from path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if cfg.FPSOut <= 0 {
		cfg.FPSOut = 30
	}
	if cfg.OutputWidth <= 0 || cfg.OutputHeight <= 0 {
		cfg.OutputWidth, cfg.OutputHeight = 1280, 720
	}
	return cfg, nil
}
