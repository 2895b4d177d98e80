// Package config loads service configuration for the HTTP server and CLI
// from a TOML file, with environment overrides for deployment secrets.
package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/graph"
	"github.com/tokenviz/bubblegraph/pkg/layout"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
	"github.com/tokenviz/bubblegraph/pkg/render/bubble"
)

// Config is the full service configuration.
type Config struct {
	Provider ProviderConfig `toml:"provider"`
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Sim      SimConfig      `toml:"simulation"`
	Encoding EncodingConfig `toml:"encoding"`

	// Denylist extends the built-in exchange denylist with extra name
	// substrings.
	Denylist []string `toml:"denylist"`
}

// ProviderConfig points at the upstream map-data API.
type ProviderConfig struct {
	BaseURL string `toml:"base_url"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// StoreConfig configures the optional MongoDB map archive.
type StoreConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// SimConfig mirrors the force-simulation constants for TOML editing.
// Zero fields fall back to the built-in defaults.
type SimConfig struct {
	RepulsionStrength float64 `toml:"repulsion_strength"`
	CenterStrength    float64 `toml:"center_strength"`
	LinkDistance      float64 `toml:"link_distance"`
	CollisionPadding  float64 `toml:"collision_padding"`
	Ticks             int     `toml:"ticks"`
}

// EncodingConfig mirrors the visual-encoding thresholds for TOML editing.
type EncodingConfig struct {
	RadiusMin      float64 `toml:"radius_min"`
	RadiusMax      float64 `toml:"radius_max"`
	Exponent       float64 `toml:"exponent"`
	LabelRankLimit int     `toml:"label_rank_limit"`
	LabelMinRadius float64 `toml:"label_min_radius"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Provider: ProviderConfig{BaseURL: mapdata.DefaultBaseURL},
		Server:   ServerConfig{Addr: ":8080"},
		Cache:    CacheConfig{Backend: "file"},
		Store:    StoreConfig{Database: "bubblegraph"},
	}
}

// Load reads a TOML config file over the defaults. An empty path returns
// the defaults. Environment overrides apply last either way.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
		}
	}
	cfg.applyEnv()

	if cfg.Provider.BaseURL != "" {
		if err := errors.ValidateURL(cfg.Provider.BaseURL); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// applyEnv overlays deployment environment variables. Secrets stay out of
// the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("BUBBLEGRAPH_PROVIDER_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("BUBBLEGRAPH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BUBBLEGRAPH_REDIS_ADDR"); v != "" {
		c.Cache.Backend = "redis"
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("BUBBLEGRAPH_REDIS_PASSWORD"); v != "" {
		c.Cache.RedisPassword = v
	}
	if v := os.Getenv("BUBBLEGRAPH_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = db
		}
	}
	if v := os.Getenv("BUBBLEGRAPH_MONGO_URI"); v != "" {
		c.Store.Enabled = true
		c.Store.URI = v
	}
}

// EffectiveDenylist returns the built-in exchange denylist extended with the
// configured extra entries, or nil when nothing was configured (which lets
// the graph filter use its default).
func (c Config) EffectiveDenylist() []string {
	if len(c.Denylist) == 0 {
		return nil
	}
	combined := make([]string, 0, len(graph.DefaultDenylist)+len(c.Denylist))
	combined = append(combined, graph.DefaultDenylist...)
	combined = append(combined, c.Denylist...)
	return combined
}

// SimConfig converts the TOML section into layout constants.
func (c Config) SimConfig() layout.Config {
	return layout.Config{
		RepulsionStrength: c.Sim.RepulsionStrength,
		CenterStrength:    c.Sim.CenterStrength,
		LinkDistance:      c.Sim.LinkDistance,
		CollisionPadding:  c.Sim.CollisionPadding,
		Ticks:             c.Sim.Ticks,
	}.WithDefaults()
}

// EncoderConfig converts the TOML section into encoder thresholds.
func (c Config) EncoderConfig() bubble.Config {
	return bubble.Config{
		RadiusMin:      c.Encoding.RadiusMin,
		RadiusMax:      c.Encoding.RadiusMax,
		Exponent:       c.Encoding.Exponent,
		LabelRankLimit: c.Encoding.LabelRankLimit,
		LabelMinRadius: c.Encoding.LabelMinRadius,
	}
}
