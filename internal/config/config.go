package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Auth modes accepted by AUTH_MODE.
const (
	AuthModePlaceholder = "placeholder"
	AuthModePassword    = "password"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port               string
	PostgresDSN        string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	SessionTTL         time.Duration // 0 keeps sessions until the cache evicts them
	AuthMode           string
	CORSAllowedOrigins []string
	MongoURI           string // optional audit sink
	MongoDB            string
	NATSURL            string // optional event stream
	LogLevel           string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		PostgresDSN:        getenv("POSTGRES_DSN", ""),
		RedisAddr:          getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RedisDB:            getenvInt("REDIS_DB", 0),
		SessionTTL:         getenvDuration("SESSION_TTL", 0),
		AuthMode:           getenv("AUTH_MODE", AuthModePlaceholder),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		MongoURI:           getenv("MONGO_URI", ""),
		MongoDB:            getenv("MONGO_DB", "session_gateway"),
		NATSURL:            getenv("NATS_URL", ""),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required")
	}
	if c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}
	switch c.AuthMode {
	case AuthModePlaceholder, AuthModePassword:
	default:
		return fmt.Errorf("AUTH_MODE must be %q or %q, got %q", AuthModePlaceholder, AuthModePassword, c.AuthMode)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getenvDuration accepts Go durations ("30m") or plain seconds ("1800").
func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
