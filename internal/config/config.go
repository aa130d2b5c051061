package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-impact-sim/internal/neo"
)

type Config struct {
	Server  ServerConfig
	NASA    NASAConfig
	Sync    SyncConfig
	Worker  WorkerConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host             string
	Port             int
	RateLimitRPS     float64
	CORSAllowOrigins []string
	ShutdownTimeout  time.Duration
}

type NASAConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

type SyncConfig struct {
	Enabled  bool
	Interval time.Duration
	Pages    int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:             getEnv("SERVER_HOST", "localhost"),
			Port:             getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:     getEnvFloat("RATE_LIMIT_RPS", 10),
			CORSAllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
			ShutdownTimeout:  getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		NASA: NASAConfig{
			APIKey:     getEnv("NASA_API_KEY", ""),
			BaseURL:    getEnv("NASA_NEO_BASE_URL", neo.DefaultBaseURL),
			Timeout:    getEnvDuration("NASA_TIMEOUT", 30*time.Second),
			MaxRetries: getEnvInt("NASA_MAX_RETRIES", 3),
		},
		Sync: SyncConfig{
			Enabled:  getEnvBool("NEO_SYNC_ENABLED", false),
			Interval: getEnvDuration("NEO_SYNC_INTERVAL", 24*time.Hour),
			Pages:    getEnvInt("NEO_SYNC_PAGES", 5),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/impact-sim.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be positive: %v", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.NASA.Timeout <= 0 {
		return fmt.Errorf("NASA timeout must be positive")
	}
	if c.NASA.MaxRetries < 0 {
		return fmt.Errorf("NASA max retries must not be negative: %d", c.NASA.MaxRetries)
	}

	if c.Sync.Enabled {
		if c.NASA.APIKey == "" {
			return fmt.Errorf("NEO sync requires NASA_API_KEY")
		}
		if c.Sync.Interval < time.Minute {
			return fmt.Errorf("NEO sync interval must be at least 1 minute")
		}
	}
	if c.Sync.Pages < 1 {
		return fmt.Errorf("NEO sync pages must be at least 1: %d", c.Sync.Pages)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1: %d", c.Worker.Count)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
