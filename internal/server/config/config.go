// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment variables and command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// DefaultSecretKey is the development fallback signing secret. It is public
// knowledge, so tokens signed with it can be forged by anyone.
const DefaultSecretKey = "insecure-dev-secret"

// Config holds runtime settings for the gophauth server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDriver: "pgx" (PostgreSQL) or "sqlite".
//   - DatabaseDSN: data source name for the selected driver.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - TokenValidityDuration: lifetime of an issued session token.
//   - HashCost: bcrypt work factor.
//   - HashConcurrency: how many password hash/verify operations may run at once.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP      string
	DatabaseDriver        string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	HashCost              int
	HashConcurrency       int
	LogLevel              string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey defaults to DefaultSecretKey, which must be overridden in
// production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "file:gophauth.db"
	c.SecretKey = DefaultSecretKey
	c.TokenValidityDuration = time.Hour
	c.HashCost = 12
	c.HashConcurrency = runtime.NumCPU()
	c.LogLevel = "info"
}

// InsecureSecret reports whether the signing secret is the well-known
// development default.
func (c *Config) InsecureSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Validate checks that the settings can be used to start the server.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, fmt.Errorf("token validity must be positive, got %s", c.TokenValidityDuration))
	}
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("hash cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.HashCost))
	}
	if c.HashConcurrency < 1 {
		errs = append(errs, fmt.Errorf("hash concurrency must be at least 1, got %d", c.HashConcurrency))
	}
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags. args are the program arguments without the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
