// Package config loads mathviz settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verleihernix/math-visualizer/internal/logging"
	"github.com/verleihernix/math-visualizer/pkg/sampler"
	"github.com/verleihernix/math-visualizer/pkg/view"
)

// DefaultPath is looked up when no --config flag is given.
const DefaultPath = "mathviz.yaml"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full application configuration.
type Config struct {
	Window   WindowConfig       `yaml:"window" json:"window"`
	View     ViewConfig         `yaml:"view" json:"view"`
	Sampling sampler.StepPolicy `yaml:"sampling" json:"sampling"`
	Server   ServerConfig       `yaml:"server" json:"server"`
	Log      LogConfig          `yaml:"log" json:"log"`
}

// WindowConfig sizes the interactive window.
type WindowConfig struct {
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Title  string `yaml:"title" json:"title"`
	TPS    int    `yaml:"tps" json:"tps"`
}

// ViewConfig is the startup view and the input zoom step.
type ViewConfig struct {
	Scale      float32 `yaml:"scale" json:"scale"`
	OffsetX    float32 `yaml:"offset_x" json:"offset_x"`
	OffsetY    float32 `yaml:"offset_y" json:"offset_y"`
	ZoomFactor float32 `yaml:"zoom_factor" json:"zoom_factor"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr  string      `yaml:"addr" json:"addr"`
	Cache CacheConfig `yaml:"cache" json:"cache"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend    string      `yaml:"backend" json:"backend"` // memory | redis | none
	MaxEntries int         `yaml:"max_entries" json:"max_entries"`
	TTL        string      `yaml:"ttl" json:"ttl"`
	Redis      RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  int(view.DefaultWidth),
			Height: int(view.DefaultHeight),
			Title:  "Math Visualizer",
			TPS:    60,
		},
		View: ViewConfig{
			Scale:      view.DefaultScale,
			ZoomFactor: 1.1,
		},
		Sampling: sampler.DefaultStepPolicy,
		Server: ServerConfig{
			Addr: ":8080",
			Cache: CacheConfig{
				Backend:    "memory",
				MaxEntries: 256,
				TTL:        "10m",
				Redis:      RedisConfig{Addr: "localhost:6379"},
			},
		},
		Log: LogConfig{Level: "info", Format: string(logging.FormatText)},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot produce a usable view or server.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS < 0 {
		return fmt.Errorf("%w: window.tps %d", ErrInvalidConfig, c.Window.TPS)
	}
	if err := c.Transform().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !(c.View.ZoomFactor > 1) {
		return fmt.Errorf("%w: view.zoom_factor must be > 1, got %v", ErrInvalidConfig, c.View.ZoomFactor)
	}
	if err := c.Sampling.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Server.Cache.Backend {
	case "memory", "redis", "none", "":
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Server.Cache.Backend)
	}
	if _, err := c.Server.Cache.Duration(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Transform returns the startup view described by the window and view sections.
func (c Config) Transform() view.Transform {
	return view.Transform{
		Width:   float32(c.Window.Width),
		Height:  float32(c.Window.Height),
		Scale:   c.View.Scale,
		OffsetX: c.View.OffsetX,
		OffsetY: c.View.OffsetY,
	}
}

// Duration parses TTL. Empty means no expiry.
func (c CacheConfig) Duration() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("cache ttl: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("cache ttl must not be negative: %s", c.TTL)
	}
	return d, nil
}
