package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the inform-ai service.
type Config struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	Server    ServerConfig
	Redis     RedisConfig
	Stream    StreamConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host      string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port      string        `envconfig:"SERVER_PORT" default:"8080"`
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"SESSION_TOKEN_TTL" default:"24h"`
}

// RedisConfig holds Redis configuration. Event fan-out is disabled when URI is empty.
type RedisConfig struct {
	URI           string `envconfig:"REDIS_URI"`
	ChannelPrefix string `envconfig:"REDIS_EVENT_CHANNEL_PREFIX" default:"informai:events"`
}

// StreamConfig holds websocket stream configuration.
type StreamConfig struct {
	BufferSize     int      `envconfig:"STREAM_BUFFER_SIZE" default:"64"`
	OriginPatterns []string `envconfig:"STREAM_ORIGIN_PATTERNS" default:"*"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TextLogs reports whether LOG_FORMAT selects the text formatter.
func (c *Config) TextLogs() bool {
	return strings.EqualFold(c.LogFormat, "text")
}

// Validate checks configuration for logical errors beyond required fields.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if c.Server.TokenTTL <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL must be > 0")
	}
	if c.Stream.BufferSize <= 0 {
		return fmt.Errorf("STREAM_BUFFER_SIZE must be > 0")
	}
	if c.Redis.URI != "" && c.Redis.ChannelPrefix == "" {
		return fmt.Errorf("REDIS_EVENT_CHANNEL_PREFIX cannot be empty when REDIS_URI is set")
	}
	return nil
}
