// Package config loads the masonry configuration file.
//
// The file lives at ~/.config/masonry/config.toml (or under
// $XDG_CONFIG_HOME). A missing file yields [Default]; environment variables
// override file values, and command-line flags override both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/masonry/pkg/board"
	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/virtual"
)

const (
	appName  = "masonry"
	fileName = "config.toml"
)

// Environment variables that override the file.
const (
	EnvCacheBackend = "MASONRY_CACHE_BACKEND"
	EnvRedisURL     = "MASONRY_REDIS_URL"
	EnvMongoURI     = "MASONRY_MONGO_URI"
	EnvAddr         = "MASONRY_ADDR"
)

// Config is the whole configuration file.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Viewport ViewportConfig `toml:"viewport"`
	Render   RenderConfig   `toml:"render"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// LayoutConfig holds the default layout settings. Boards and flags override
// them field by field.
type LayoutConfig struct {
	DesiredColumnWidth float64 `toml:"desired_column_width"`
	FullWidth          bool    `toml:"full_width"`
	Stretch            string  `toml:"stretch"`
	ColumnSpacing      float64 `toml:"column_spacing"`
	RowSpacing         float64 `toml:"row_spacing"`
	Width              float64 `toml:"width"`
}

// ViewportConfig sizes the viewport of the interactive viewer and of new
// server sessions that don't send one.
type ViewportConfig struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	CacheLength float64 `toml:"cache_length"`
}

// RenderConfig holds default render options.
type RenderConfig struct {
	Theme  string  `toml:"theme"`
	Labels bool    `toml:"labels"`
	Guides bool    `toml:"guides"`
	Scale  float64 `toml:"scale"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file, redis, mongo or none
	Dir           string `toml:"dir"`
	RedisURL      string `toml:"redis_url"`
	RedisPrefix   string `toml:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	// TTL is how long layouts and renders stay cached. Zero keeps the
	// built-in lifetimes.
	TTL Duration `toml:"ttl"`
}

// ServerConfig configures `masonry serve`.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	SessionTTL      Duration `toml:"session_ttl"`
	CleanupInterval Duration `toml:"cleanup_interval"`
	RequestTimeout  Duration `toml:"request_timeout"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a Go duration string ("30m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			DesiredColumnWidth: 250,
			Stretch:            "none",
			ColumnSpacing:      8,
			RowSpacing:         8,
			Width:              1000,
		},
		Viewport: ViewportConfig{
			Width:       1000,
			Height:      800,
			CacheLength: virtual.DefaultCacheLength,
		},
		Render: RenderConfig{
			Theme:  "light",
			Labels: true,
			Scale:  2,
		},
		Cache: CacheConfig{
			Backend:       cache.BackendFile,
			RedisPrefix:   "masonry:",
			MongoDatabase: appName,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			SessionTTL:      Duration{30 * time.Minute},
			CleanupInterval: Duration{time.Minute},
			RequestTimeout:  Duration{30 * time.Second},
			MaxBodyBytes:    10 << 20,
		},
	}
}

// Path returns the configuration file path using the XDG convention
// (~/.config/masonry/config.toml).
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// CacheDir returns the default file cache directory (~/.cache/masonry).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over [Default] and applies environment
// overrides. An empty path uses [Path]. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			cfg.applyEnv(os.Getenv)
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := cfg.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Encode renders cfg as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvCacheBackend); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Cache.MongoURI = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks the layout settings and the cache backend.
func (c Config) Validate() error {
	if _, err := c.Layout.Settings().Options(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache backend redis needs redis_url or %s", EnvRedisURL)
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return fmt.Errorf("cache backend mongo needs mongo_uri or %s", EnvMongoURI)
		}
	default:
		return fmt.Errorf("%w: %q", cache.ErrUnknownBackend, c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Viewport.Width < 0 || c.Viewport.Height < 0 || c.Viewport.CacheLength < 0 {
		return fmt.Errorf("viewport sizes must not be negative")
	}
	return nil
}

// Settings converts the layout section into board settings.
func (l LayoutConfig) Settings() board.Settings {
	return board.Settings{
		DesiredColumnWidth: l.DesiredColumnWidth,
		FullWidth:          l.FullWidth,
		Stretch:            l.Stretch,
		ColumnSpacing:      l.ColumnSpacing,
		RowSpacing:         l.RowSpacing,
		Width:              l.Width,
	}
}

// Viewport converts the viewport section, scrolled to the top.
func (v ViewportConfig) Viewport() virtual.Viewport {
	return virtual.Viewport{Width: v.Width, Height: v.Height}
}

// CacheConfig returns the backend configuration for [cache.Open]. The file
// backend defaults to [CacheDir].
func (c CacheConfig) CacheConfig() (cache.Config, error) {
	dir := c.Dir
	if dir == "" && (c.Backend == "" || c.Backend == cache.BackendFile) {
		d, err := CacheDir()
		if err != nil {
			return cache.Config{}, err
		}
		dir = d
	}
	return cache.Config{
		Backend:       c.Backend,
		Dir:           dir,
		RedisURL:      c.RedisURL,
		Prefix:        c.RedisPrefix,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
	}, nil
}
