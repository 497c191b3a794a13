// Package config loads server configuration from struct defaults overridden
// by MOVIEPICK_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// MOVIEPICK_PORT or MOVIEPICK_DATASET_PATH.
const EnvPrefix = "MOVIEPICK_"

// Config holds every tunable of the server.
type Config struct {
	Port         string `koanf:"port"`
	DatabasePath string `koanf:"database_path"`

	// DatasetPath points at the local movie dataset JSON file. DatasetSeed
	// seeds the synthetic catalog metrics; 0 means a fresh seed per start.
	DatasetPath string `koanf:"dataset_path"`
	DatasetSeed int64  `koanf:"dataset_seed"`

	SessionSecret string        `koanf:"session_secret"`
	SessionTTL    time.Duration `koanf:"session_ttl"`

	SendGridAPIKey string `koanf:"sendgrid_api_key"`
	SendGridFrom   string `koanf:"sendgrid_from"`
	BaseURL        string `koanf:"base_url"`

	CORSOrigin string `koanf:"cors_origin"`
	StaticDir  string `koanf:"static_dir"`
}

// defaultConfig returns a Config with development defaults. Everything can
// be overridden through the environment.
func defaultConfig() *Config {
	return &Config{
		Port:          "8080",
		DatabasePath:  "moviepick.db",
		DatasetPath:   "data/movies.json",
		DatasetSeed:   0,
		SessionSecret: "",
		SessionTTL:    7 * 24 * time.Hour,
		SendGridFrom:  "noreply@moviepick.app",
		BaseURL:       "http://localhost:8080",
		CORSOrigin:    "http://localhost:3001",
		StaticDir:     "dist/public",
	}
}

// Load builds the configuration from defaults and the environment.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("%sSESSION_SECRET must be set", EnvPrefix)
	}

	return &cfg, nil
}
