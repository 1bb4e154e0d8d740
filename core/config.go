package core

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/toml"
)

// Config tunes one render engine instance.
type Config struct {
	// UploadCacheSize is how many distinct CPU frames keep their uploaded
	// texture around for reuse. 0 disables the upload cache.
	UploadCacheSize int `toml:"upload_cache_size"`
	// MaxFreeTextures bounds the number of released textures kept per
	// descriptor for reuse; extra ones are deleted.
	MaxFreeTextures int `toml:"max_free_textures"`
	// ClearOnAttach clears render targets when attached to the frame buffer.
	ClearOnAttach bool `toml:"clear_on_attach"`
	// Mode is "online" (export, accurate color) or "offline" (preview).
	Mode string `toml:"mode"`
	// OutputFormat is the pixel format of rendered textures.
	OutputFormat PixelFormat `toml:"output_format"`
	LogLevel     string      `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		UploadCacheSize: 16,
		MaxFreeTextures: 8,
		ClearOnAttach:   true,
		Mode:            "offline",
		OutputFormat:    PixFmtRGBA16F,
		LogLevel:        "info",
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig, so keys missing from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.UploadCacheSize < 0 {
		return fmt.Errorf("upload_cache_size must be >= 0, got %d", c.UploadCacheSize)
	}
	if c.MaxFreeTextures < 0 {
		return fmt.Errorf("max_free_textures must be >= 0, got %d", c.MaxFreeTextures)
	}
	if !c.OutputFormat.Valid() {
		return fmt.Errorf("output_format: %v", c.OutputFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
