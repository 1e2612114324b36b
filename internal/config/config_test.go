package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.DesiredColumnWidth != 250 || cfg.Server.Addr != ":8080" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[layout]
desired_column_width = 180
stretch = "fill"

[viewport]
height = 600

[cache]
ttl = "48h"

[server]
addr = "127.0.0.1:9000"
session_ttl = "5m"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.DesiredColumnWidth != 180 || cfg.Layout.Stretch != "fill" {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.ColumnSpacing != 8 {
		t.Errorf("unset keys should keep defaults, ColumnSpacing = %v", cfg.Layout.ColumnSpacing)
	}
	if cfg.Viewport.Height != 600 || cfg.Viewport.Width != 1000 {
		t.Errorf("viewport = %+v", cfg.Viewport)
	}
	if cfg.Cache.TTL.Duration != 48*time.Hour {
		t.Errorf("cache ttl = %v, want 48h", cfg.Cache.TTL)
	}
	if cfg.Server.SessionTTL.Duration != 5*time.Minute || cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", "[layout\n", "parse"},
		{"bad stretch", "[layout]\nstretch = \"wide\"\n", "stretch"},
		{"bad duration", "[server]\nsession_ttl = \"soon\"\n", "parse"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "unknown cache backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", "redis_url"},
		{"negative ttl", "[cache]\nttl = \"-1h\"\n", "ttl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCacheBackend: "redis",
		EnvRedisURL:     "redis://localhost:6379/0",
		EnvAddr:         ":9999",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisURL != env[EnvRedisURL] || cfg.Server.Addr != ":9999" {
		t.Errorf("env not applied: %+v %+v", cfg.Cache, cfg.Server)
	}
	if cfg.Cache.MongoURI != "" {
		t.Error("unset variable should not override")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Render.Theme = "dark"
	cfg.Server.SessionTTL = Duration{2 * time.Hour}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `session_ttl = "2h0m0s"`) {
		t.Errorf("duration not written as string:\n%s", data)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back != cfg {
		t.Errorf("round trip:\n got %+v\nwant %+v", back, cfg)
	}
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	if p, _ := Path(); p != "/tmp/xdg-config/masonry/config.toml" {
		t.Errorf("Path = %s", p)
	}
	if d, _ := CacheDir(); d != "/tmp/xdg-cache/masonry" {
		t.Errorf("CacheDir = %s", d)
	}

	cc, err := Default().Cache.CacheConfig()
	if err != nil || cc.Dir != "/tmp/xdg-cache/masonry" || cc.Backend != "file" {
		t.Errorf("CacheConfig = %+v, %v", cc, err)
	}
}

func TestSettings(t *testing.T) {
	s := Default().Layout.Settings()
	o, err := s.Options()
	if err != nil {
		t.Fatal(err)
	}
	if o.DesiredColumnWidth != 250 || o.ColumnSpacing != 8 {
		t.Errorf("Options = %+v", o)
	}
}
