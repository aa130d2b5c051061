package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-impact-sim/internal/neo"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, 10.0, cfg.Server.RateLimitRPS)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, neo.DefaultBaseURL, cfg.NASA.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.NASA.Timeout)
	assert.Equal(t, 3, cfg.NASA.MaxRetries)
	assert.False(t, cfg.Sync.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 5, cfg.Sync.Pages)
	assert.Equal(t, 2, cfg.Worker.Count)
	assert.Equal(t, 20, cfg.Worker.BufferSize)
	assert.Equal(t, "./data/impact-sim.db", cfg.DB.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:3000, https://impact.example.com")
	t.Setenv("NASA_API_KEY", "DEMO_KEY")
	t.Setenv("NASA_TIMEOUT", "5s")
	t.Setenv("NEO_SYNC_ENABLED", "true")
	t.Setenv("NEO_SYNC_INTERVAL", "6h")
	t.Setenv("NEO_SYNC_PAGES", "10")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, []string{"http://localhost:3000", "https://impact.example.com"}, cfg.Server.CORSAllowOrigins)
	assert.Equal(t, "DEMO_KEY", cfg.NASA.APIKey)
	assert.Equal(t, 5*time.Second, cfg.NASA.Timeout)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 6*time.Hour, cfg.Sync.Interval)
	assert.Equal(t, 10, cfg.Sync.Pages)
	assert.Equal(t, 8, cfg.Worker.Count)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("NASA_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.NASA.Timeout)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"sync without key", map[string]string{"NEO_SYNC_ENABLED": "true"}},
		{"sync too frequent", map[string]string{"NEO_SYNC_ENABLED": "true", "NASA_API_KEY": "k", "NEO_SYNC_INTERVAL": "10s"}},
		{"zero sync pages", map[string]string{"NEO_SYNC_PAGES": "0"}},
		{"zero workers", map[string]string{"WORKER_COUNT": "0"}},
		{"negative retries", map[string]string{"NASA_MAX_RETRIES": "-1"}},
		{"zero rate limit", map[string]string{"RATE_LIMIT_RPS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
