package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Server.TokenTTL)
	assert.Empty(t, cfg.Redis.URI)
	assert.Equal(t, "informai:events", cfg.Redis.ChannelPrefix)
	assert.Equal(t, 64, cfg.Stream.BufferSize)
	assert.Equal(t, []string{"*"}, cfg.Stream.OriginPatterns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TOKEN_TTL", "15m")
	t.Setenv("REDIS_URI", "redis://localhost:6379/0")
	t.Setenv("STREAM_ORIGIN_PATTERNS", "app.example.com,localhost:3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Server.TokenTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URI)
	assert.Equal(t, []string{"app.example.com", "localhost:3000"}, cfg.Stream.OriginPatterns)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "placeholder")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		LogFormat: "json",
		Server:    ServerConfig{TokenTTL: time.Hour},
		Stream:    StreamConfig{BufferSize: 1},
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.LogFormat = "xml"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Stream.BufferSize = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Redis = RedisConfig{URI: "redis://x"}
	assert.Error(t, bad.Validate())
}

func TestTextLogs(t *testing.T) {
	for format, want := range map[string]bool{
		"text": true,
		"TEXT": true,
		"Text": true,
		"json": false,
		"JSON": false,
	} {
		cfg := Config{LogFormat: format}
		assert.Equal(t, want, cfg.TextLogs(), format)
	}

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_FORMAT", "TEXT")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TextLogs())
}
