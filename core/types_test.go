package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestVideoParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  VideoParams
		wantErr bool
	}{
		{"valid", NewVideoParams(1920, 1080, PixFmtRGBA16F, 1), false},
		{"divided", NewVideoParams(1920, 1080, PixFmtRGBA8, 4), false},
		{"zero width", NewVideoParams(0, 1080, PixFmtRGBA8, 1), true},
		{"negative height", NewVideoParams(10, -1, PixFmtRGBA8, 1), true},
		{"zero divider", NewVideoParams(10, 10, PixFmtRGBA8, 0), true},
		{"divider collapses", NewVideoParams(3, 3, PixFmtRGBA8, 4), true},
		{"bad format", NewVideoParams(10, 10, PixFmtInvalid, 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveSize(t *testing.T) {
	p := NewVideoParams(1920, 1080, PixFmtRGBA8, 2)
	if p.EffectiveWidth() != 960 || p.EffectiveHeight() != 540 {
		t.Errorf("effective size: got %dx%d", p.EffectiveWidth(), p.EffectiveHeight())
	}
}

func TestPixelFormatText(t *testing.T) {
	var f PixelFormat
	if err := f.UnmarshalText([]byte("RGBA32F")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if f != PixFmtRGBA32F {
		t.Errorf("expected rgba32f, got %v", f)
	}
	if err := f.UnmarshalText([]byte("yuv420")); err == nil {
		t.Error("expected error for unknown format")
	}
	if f.BytesPerPixel() != 16 || PixFmtRGB16U.BytesPerPixel() != 6 {
		t.Errorf("BytesPerPixel mismatch")
	}
}

func TestRational(t *testing.T) {
	if !NewRational(0, 1).IsNull() || !NewRational(1, 0).IsNull() {
		t.Error("zero ratios should be null")
	}
	if NewRational(3, 2).Float64() != 1.5 {
		t.Error("Float64 mismatch")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	data := "upload_cache_size = 4\noutput_format = \"rgba8\"\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.UploadCacheSize != 4 {
		t.Errorf("UploadCacheSize: expected 4, got %d", cfg.UploadCacheSize)
	}
	if cfg.OutputFormat != PixFmtRGBA8 {
		t.Errorf("OutputFormat: expected rgba8, got %v", cfg.OutputFormat)
	}
	if cfg.MaxFreeTextures != DefaultConfig().MaxFreeTextures {
		t.Errorf("missing keys should keep defaults")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	if err := os.WriteFile(path, []byte("max_free_textures = -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected validation error")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	if Logger() == nil {
		t.Fatal("Logger() returned nil")
	}
	SetLogger(nil)
	if Logger().Enabled(context.Background(), 0) {
		t.Error("default logger should be disabled")
	}
}
