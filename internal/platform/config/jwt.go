package config

import (
	"errors"
	"time"
)

// JWTConfig configures bearer token verification against a JWKS endpoint.
// It is part of Config and only validated when AUTH_MODE=jwt.
type JWTConfig struct {
	Issuer   string `yaml:"issuer" env:"JWT_ISSUER"`
	Audience string `yaml:"audience" env:"JWT_AUDIENCE" env-default:"pilgrimage-planner"`
	JWKSURL  string `yaml:"jwks_url" env:"JWT_JWKS_URL"`

	ClockSkew time.Duration `yaml:"clock_skew" env:"JWT_CLOCK_SKEW" env-default:"30s"`
	// JWKSRefreshInterval picks up rotated keys even while old ones are cached.
	JWKSRefreshInterval time.Duration `yaml:"jwks_refresh_interval" env:"JWT_JWKS_REFRESH_INTERVAL" env-default:"5m"`
	// JWKSMinRefreshInterval bounds refreshes triggered by unknown kids.
	JWKSMinRefreshInterval time.Duration `yaml:"jwks_min_refresh_interval" env:"JWT_JWKS_MIN_REFRESH_INTERVAL" env-default:"10s"`

	HTTPTimeout time.Duration `yaml:"http_timeout" env:"JWT_HTTP_TIMEOUT" env-default:"5s"`
}

func (c JWTConfig) validate() error {
	var errs []error
	if c.Issuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required when AUTH_MODE=jwt"))
	}
	if c.Audience == "" {
		errs = append(errs, errors.New("JWT_AUDIENCE is required when AUTH_MODE=jwt"))
	}
	if c.JWKSURL == "" {
		errs = append(errs, errors.New("JWT_JWKS_URL is required when AUTH_MODE=jwt"))
	}
	if c.ClockSkew < 0 || c.JWKSRefreshInterval < 0 || c.JWKSMinRefreshInterval < 0 || c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("JWT durations must not be negative"))
	}
	return errors.Join(errs...)
}
