package config

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, DriverSQLite, c.DatabaseDriver)
	assert.Equal(t, "file:gophauth.db", c.DatabaseDSN)
	assert.Equal(t, DefaultSecretKey, c.SecretKey)
	assert.Equal(t, time.Hour, c.TokenValidityDuration)
	assert.Equal(t, 12, c.HashCost)
	assert.Equal(t, runtime.NumCPU(), c.HashConcurrency)
	assert.Equal(t, "info", c.LogLevel)
	assert.True(t, c.InsecureSecret())
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_DefaultsWhenNothingGiven(t *testing.T) {
	c, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errSub string
	}{
		{"empty secret", func(c *Config) { c.SecretKey = "" }, "secret key"},
		{"zero validity", func(c *Config) { c.TokenValidityDuration = 0 }, "token validity"},
		{"cost too low", func(c *Config) { c.HashCost = 3 }, "hash cost"},
		{"cost too high", func(c *Config) { c.HashCost = 32 }, "hash cost"},
		{"no concurrency", func(c *Config) { c.HashConcurrency = 0 }, "hash concurrency"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "database driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}

func TestInsecureSecret(t *testing.T) {
	c := Config{SecretKey: "0f1e2d3c4b5a"}
	assert.False(t, c.InsecureSecret())
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"secret_key":              "from-json",
		"hash_cost":               11,
		"token_validity_duration": "30m",
		"log_level":               "debug",
	})
	t.Setenv("GOPHAUTH_SECRET_KEY", "from-env")
	t.Setenv("GOPHAUTH_HASH_COST", "13")

	c, err := LoadConfig([]string{"-c", path, "-w", "14"})
	require.NoError(t, err)

	assert.Equal(t, "from-env", c.SecretKey, "env overrides json")
	assert.Equal(t, 14, c.HashCost, "flags override env")
	assert.Equal(t, 30*time.Minute, c.TokenValidityDuration, "json applies when nothing later sets it")
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadConfig_InvalidResult(t *testing.T) {
	_, err := LoadConfig([]string{"-w", "2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
