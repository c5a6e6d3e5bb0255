// Package config loads the storecached configuration from an optional YAML
// file, then lets STORECACHE_* environment variables override individual
// fields. Loading happens once, at the wiring point.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration lets YAML values use "30s"/"10m" syntax for time.Duration fields.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Server  Server  `yaml:"server"`
	Cache   Cache   `yaml:"cache"`
	Catalog Catalog `yaml:"catalog"`
	Admin   Admin   `yaml:"admin"`
}

type Server struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type Cache struct {
	// DefaultTTL is the absolute TTL the facade substitutes for writes that
	// carry no expiration.
	DefaultTTL Duration `yaml:"default_ttl"`
	// DefaultWindow is the store's sliding window for zero expirations.
	DefaultWindow Duration `yaml:"default_window"`
	// SweepInterval is how often the store reclaims expired entries.
	SweepInterval Duration `yaml:"sweep_interval"`
}

type Catalog struct {
	// PostgresDSN selects the database-backed product source when set;
	// empty falls back to the simulated catalog.
	PostgresDSN   string `yaml:"postgres_dsn"`
	SimulatedSize int    `yaml:"simulated_size"`
	SimulatedSeed int64  `yaml:"simulated_seed"`
}

type Admin struct {
	// TokenHash is the bcrypt hash of the admin bearer token. Empty disables
	// the admin endpoints.
	TokenHash string `yaml:"token_hash"`
}

// Load reads the file at path (skipped when path is empty), applies defaults,
// then environment overrides.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg = cfg.withDefaults()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = Duration(15 * time.Second)
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = Duration(15 * time.Second)
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = Duration(5 * time.Second)
	}
	if c.Cache.DefaultTTL <= 0 {
		c.Cache.DefaultTTL = Duration(30 * time.Minute)
	}
	if c.Cache.DefaultWindow <= 0 {
		c.Cache.DefaultWindow = Duration(20 * time.Minute)
	}
	if c.Cache.SweepInterval <= 0 {
		c.Cache.SweepInterval = Duration(time.Minute)
	}
	if c.Catalog.SimulatedSize <= 0 {
		c.Catalog.SimulatedSize = 32
	}
	if c.Catalog.SimulatedSeed == 0 {
		c.Catalog.SimulatedSeed = 1
	}
	return c
}

func applyEnv(c *Config) error {
	if v, ok := os.LookupEnv("STORECACHE_ADDRESS"); ok {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv("STORECACHE_POSTGRES_DSN"); ok {
		c.Catalog.PostgresDSN = v
	}
	if v, ok := os.LookupEnv("STORECACHE_ADMIN_TOKEN_HASH"); ok {
		c.Admin.TokenHash = v
	}
	for name, dest := range map[string]*Duration{
		"STORECACHE_DEFAULT_TTL":    &c.Cache.DefaultTTL,
		"STORECACHE_DEFAULT_WINDOW": &c.Cache.DefaultWindow,
		"STORECACHE_SWEEP_INTERVAL": &c.Cache.SweepInterval,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*dest = Duration(d)
	}
	if v, ok := os.LookupEnv("STORECACHE_SIMULATED_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: STORECACHE_SIMULATED_SIZE: %w", err)
		}
		c.Catalog.SimulatedSize = n
	}
	return nil
}
