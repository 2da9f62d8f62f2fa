package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_DefaultsFillUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.toml")
	if err := os.WriteFile(path, []byte(`
source = "clip.mp4"
output = "out.mp4"
quality = "high"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.FPSOut != 30 {
		t.Errorf("expected default fps_out 30, got %v", cfg.FPSOut)
	}
	if cfg.OutputWidth != 1280 || cfg.OutputHeight != 720 {
		t.Errorf("expected default 1280x720, got %dx%d", cfg.OutputWidth, cfg.OutputHeight)
	}
	if cfg.Preset() != QualityHigh {
		t.Errorf("expected high preset, got %v", cfg.Preset())
	}
}

func TestQualityPreset_Defaults(t *testing.T) {
	tests := []struct {
		preset        QualityPreset
		bitrate       int
		keyframeEvery int
	}{
		{QualityLow, 1_000_000, 60},
		{QualityMedium, 3_000_000, 30},
		{QualityHigh, 8_000_000, 15},
		{QualityPreset("bogus"), 3_000_000, 30},
	}
	for _, tt := range tests {
		if got := tt.preset.Bitrate(); got != tt.bitrate {
			t.Errorf("%s.Bitrate() = %d, want %d", tt.preset, got, tt.bitrate)
		}
		if got := tt.preset.KeyframeInterval(); got != tt.keyframeEvery {
			t.Errorf("%s.KeyframeInterval() = %d, want %d", tt.preset, got, tt.keyframeEvery)
		}
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
