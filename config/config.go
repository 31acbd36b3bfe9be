// Package config provides configuration management for the recipegen server.
// Configuration is loaded once at process start from an optional YAML file
// layered over defaults, with ${VAR} and ${VAR:-default} environment variable
// expansion so secrets such as API keys never live in the file itself.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration. It combines the HTTP
// server settings, the upstream provider selection, rate limiting, caching,
// logging, and the optional admission queue into a single structure.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Provider       ProviderConfig       `yaml:"provider"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Cache          CacheConfig          `yaml:"cache"`
	Logging        LoggingConfig        `yaml:"logging"`
	Queue          QueueConfig          `yaml:"queue"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 8080)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Must exceed the provider timeout or slow generations are cut
	// off mid-response (default: 45s)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for in-flight requests
	// during graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigin is the value served in Access-Control-Allow-Origin.
	// "*" by default; deployments front a single known UI origin.
	AllowedOrigin string `yaml:"allowed_origin"`
}

// ProviderConfig selects and configures the upstream generation provider.
// Exactly one variant is active per deployment.
type ProviderConfig struct {
	// Name selects the adapter: "openai", "openai-responses", or "gemini"
	Name string `yaml:"name"`

	// Model overrides the adapter's default model identifier
	Model string `yaml:"model"`

	// APIKey authenticates against the upstream API.
	// Use environment references (e.g. ${OPENAI_API_KEY}) in config files.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the upstream URL, used in tests against fake servers
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single generation call (default: 30s). When it
	// elapses the call is abandoned, not cancelled.
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig controls the per-client fixed-window limiter.
type RateLimitConfig struct {
	// Window is the fixed window duration (default: 15m)
	Window time.Duration `yaml:"window"`

	// MaxRequests is the number of admissions per window (default: 10)
	MaxRequests int `yaml:"max_requests"`
}

// CacheConfig controls the in-memory response cache.
type CacheConfig struct {
	// TTL is how long a cached envelope stays valid (default: 1h).
	// Eviction is lazy; expired entries are dropped on lookup.
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// QueueConfig defines the optional FIFO admission queue placed ahead of the
// rate limiter. Disabled by default so requests flow straight through.
type QueueConfig struct {
	// Enabled determines if the queue middleware is active
	Enabled bool `yaml:"enabled"`

	// MaxSize is the maximum number of queued requests before 503s
	MaxSize int64 `yaml:"max_size"`
}

// CircuitBreakerConfig tunes the breaker wrapped around the provider adapter.
type CircuitBreakerConfig struct {
	// MaxRequests allowed through while half-open
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures that trip the circuit
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// DefaultConfig returns the configuration used when no file is supplied.
// The defaults encode the pipeline contract: 10 requests per 15 minutes,
// 1 hour cache TTL, 30 second generation timeout.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    45 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigin:   "*",
		},
		Provider: ProviderConfig{
			Name:    "openai",
			APIKey:  "${OPENAI_API_KEY}",
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Window:      15 * time.Minute,
			MaxRequests: 10,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Queue: QueueConfig{
			Enabled: false,
			MaxSize: 1000,
		},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         30 * time.Second,
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// LoadFile loads configuration from a YAML file.
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves environment variable references in configuration
// strings. It supports ${VAR} substitution and the ${VAR:-default} syntax
// for default values, and recursively resolves nested references.
func expandEnvVars(s string) string {
	result := os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			envKey := key[:i]
			defaultValue := key[i+2:]

			if val := os.Getenv(envKey); val != "" {
				return val
			}
			return defaultValue
		}

		return os.Getenv(key)
	})

	// Resolve nested references until the output is stable.
	prev := ""
	for prev != result {
		prev = result
		result = os.Expand(result, os.Getenv)
	}

	return result
}

// Load loads configuration from an io.Reader, layering the decoded YAML on
// top of DefaultConfig and validating the result.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	config := DefaultConfig()

	dec := yaml.NewDecoder(strings.NewReader(expanded))
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	switch c.Provider.Name {
	case "openai", "openai-responses", "gemini":
		// Known adapters
	default:
		return fmt.Errorf("unknown provider: %s", c.Provider.Name)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider timeout must be positive: %v", c.Provider.Timeout)
	}

	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive: %v", c.RateLimit.Window)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rate limit max requests must be positive: %d", c.RateLimit.MaxRequests)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive: %v", c.Cache.TTL)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Queue.Enabled && c.Queue.MaxSize <= 0 {
		return fmt.Errorf("queue max size must be positive: %d", c.Queue.MaxSize)
	}

	return nil
}
