package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 10, cfg.RateLimit.MaxRequests)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Queue.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoadLayersOverDefaults(t *testing.T) {
	yaml := `
server:
  port: 9090
provider:
  name: gemini
  model: gemini-2.0-flash
rate_limit:
  max_requests: 3
`
	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Provider.Name)
	assert.Equal(t, "gemini-2.0-flash", cfg.Provider.Model)
	assert.Equal(t, 3, cfg.RateLimit.MaxRequests)

	// Untouched sections keep their defaults.
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_RECIPE_KEY", "sk-secret")

	yaml := `
provider:
  api_key: ${TEST_RECIPE_KEY}
  endpoint: ${TEST_RECIPE_ENDPOINT:-https://example.test/v1}
`
	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	assert.Equal(t, "sk-secret", cfg.Provider.APIKey)
	assert.Equal(t, "https://example.test/v1", cfg.Provider.Endpoint)
}

func TestLoadDefaultSyntaxPrefersEnv(t *testing.T) {
	t.Setenv("TEST_RECIPE_MODEL", "gpt-4o")

	yaml := `
provider:
  model: ${TEST_RECIPE_MODEL:-gpt-3.5-turbo}
`
	cfg, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Provider.Model)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown provider", func(c *Config) { c.Provider.Name = "llama" }},
		{"zero provider timeout", func(c *Config) { c.Provider.Timeout = 0 }},
		{"zero rate window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"zero max requests", func(c *Config) { c.RateLimit.MaxRequests = 0 }},
		{"zero cache ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"queue enabled without size", func(c *Config) {
			c.Queue.Enabled = true
			c.Queue.MaxSize = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(strings.NewReader("server: [not a map"))
	assert.Error(t, err)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}
