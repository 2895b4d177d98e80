package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/layout"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.BaseURL != mapdata.DefaultBaseURL {
		t.Errorf("provider url = %q, want default", cfg.Provider.BaseURL)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
denylist = ["mixer"]

[provider]
base_url = "https://maps.example.com"

[server]
addr = ":9999"

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[simulation]
ticks = 250

[encoding]
label_rank_limit = 10
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Provider.BaseURL != "https://maps.example.com" {
		t.Errorf("provider url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if len(cfg.Denylist) != 1 || cfg.Denylist[0] != "mixer" {
		t.Errorf("denylist = %v", cfg.Denylist)
	}

	sim := cfg.SimConfig()
	if sim.Ticks != 250 {
		t.Errorf("sim ticks = %d, want 250", sim.Ticks)
	}
	if sim.RepulsionStrength != layout.DefaultRepulsionStrength {
		t.Errorf("unset sim field should default, got %g", sim.RepulsionStrength)
	}
	if cfg.EncoderConfig().LabelRankLimit != 10 {
		t.Errorf("label rank limit = %d, want 10", cfg.EncoderConfig().LabelRankLimit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Load() error = %v, want INVALID_INPUT", err)
	}
}

func TestLoadBadProviderURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[provider]\nbase_url = \"not a url\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should reject an invalid provider URL")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BUBBLEGRAPH_ADDR", ":7070")
	t.Setenv("BUBBLEGRAPH_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("BUBBLEGRAPH_MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("server addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("cache = %+v, want redis from env", cfg.Cache)
	}
	if !cfg.Store.Enabled || cfg.Store.URI != "mongodb://localhost:27017" {
		t.Errorf("store = %+v, want enabled from env", cfg.Store)
	}
}
