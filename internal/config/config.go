package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings for the spot finder server and CLI.
type Config struct {
	DatabaseURL        string
	RedisURL           string
	Port               string
	MigrationsDir      string
	CacheTTL           time.Duration
	RateLimitPerMinute int
	DBMaxConns         int32 // 0 keeps the pgx default
}

// ErrMissing is returned when a required variable is unset.
var ErrMissing = errors.New("required environment variable not set")

// Load reads the configuration from the environment, after loading a .env
// file from the working directory if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		Port:          getEnv("PORT", "8080"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissing)
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("%w: REDIS_URL", ErrMissing)
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "30s"))
	if err != nil || ttl <= 0 {
		return nil, errors.New("parsing CACHE_TTL: must be a positive duration")
	}
	cfg.CacheTTL = ttl

	limit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || limit <= 0 {
		return nil, errors.New("parsing RATE_LIMIT_PER_MINUTE: must be a positive integer")
	}
	cfg.RateLimitPerMinute = limit

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return nil, errors.New("parsing DB_MAX_CONNS: must be a positive integer")
		}
		cfg.DBMaxConns = int32(n)
	}

	return cfg, nil
}

// LoadDatabase is Load for commands that only talk to Postgres.
func LoadDatabase() (*Config, error) {
	_ = godotenv.Load()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL", ErrMissing)
	}
	return &Config{
		DatabaseURL:   url,
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
