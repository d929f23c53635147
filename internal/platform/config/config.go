package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the service configuration.
// Values come from an optional YAML file; environment variables always override it.
type Config struct {
	Port        string `yaml:"port" env:"PORT" env-default:"8080"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"local"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// AuthMode is "jwt" (verify bearer tokens against JWKS) or "dev" (trust X-Debug-Subject).
	AuthMode   string `yaml:"auth_mode" env:"AUTH_MODE" env-default:"jwt"`
	DevSubject string `yaml:"dev_subject" env:"DEV_SUBJECT" env-default:""`

	JWT JWTConfig `yaml:"jwt"`

	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	DefaultLanguage string `yaml:"default_language" env:"DEFAULT_LANGUAGE" env-default:"en"`
}

type StorageConfig struct {
	// Backend is one of memory, postgres or mongo.
	Backend       string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	DatabaseURL   string `yaml:"-" env:"DATABASE_URL"` // secret, env only
	MongoURI      string `yaml:"-" env:"MONGO_URI"`    // secret, env only
	MongoDatabase string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"planner"`
	// RunMigrations applies embedded SQL migrations at startup (postgres only).
	RunMigrations bool `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"true"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type CatalogConfig struct {
	SeedFile string        `yaml:"seed_file" env:"CATALOG_SEED_FILE" env-default:""`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CATALOG_CACHE_TTL" env-default:"5m"`
}

type RateLimitConfig struct {
	// RPS is the sustained per-subject request rate; 0 disables limiting.
	RPS   float64 `yaml:"rps" env:"RATE_LIMIT_RPS" env-default:"20"`
	Burst int     `yaml:"burst" env:"RATE_LIMIT_BURST" env-default:"40"`
}

// Load reads path (if it exists) and applies environment overrides.
// An empty path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		} else if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	switch c.AuthMode {
	case "jwt":
		if err := c.JWT.validate(); err != nil {
			return err
		}
	case "dev":
	default:
		return fmt.Errorf("AUTH_MODE must be jwt or dev, got %q", c.AuthMode)
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_BACKEND=postgres")
		}
	case "mongo":
		if c.Storage.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORAGE_BACKEND=mongo")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be memory, postgres or mongo, got %q", c.Storage.Backend)
	}

	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	return nil
}

// IsLocal reports whether the service runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
