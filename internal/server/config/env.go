package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the environment variables understood by the server.
// Unset variables leave the current value untouched.
type envConfig struct {
	EndpointAddrHTTP      string        `env:"GOPHAUTH_ADDRESS"`
	DatabaseDriver        string        `env:"GOPHAUTH_DATABASE_DRIVER"`
	DatabaseDSN           string        `env:"GOPHAUTH_DATABASE_DSN"`
	SecretKey             string        `env:"GOPHAUTH_SECRET_KEY"`
	TokenValidityDuration time.Duration `env:"GOPHAUTH_TOKEN_VALIDITY"`
	HashCost              int           `env:"GOPHAUTH_HASH_COST"`
	HashConcurrency       int           `env:"GOPHAUTH_HASH_CONCURRENCY"`
	LogLevel              string        `env:"GOPHAUTH_LOG_LEVEL"`
}

func parseEnv(config *Config) error {
	e := envConfig{
		EndpointAddrHTTP:      config.EndpointAddrHTTP,
		DatabaseDriver:        config.DatabaseDriver,
		DatabaseDSN:           config.DatabaseDSN,
		SecretKey:             config.SecretKey,
		TokenValidityDuration: config.TokenValidityDuration,
		HashCost:              config.HashCost,
		HashConcurrency:       config.HashConcurrency,
		LogLevel:              config.LogLevel,
	}

	if err := env.Parse(&e); err != nil {
		return err
	}

	config.EndpointAddrHTTP = e.EndpointAddrHTTP
	config.DatabaseDriver = e.DatabaseDriver
	config.DatabaseDSN = e.DatabaseDSN
	config.SecretKey = e.SecretKey
	config.TokenValidityDuration = e.TokenValidityDuration
	config.HashCost = e.HashCost
	config.HashConcurrency = e.HashConcurrency
	config.LogLevel = e.LogLevel

	return nil
}
