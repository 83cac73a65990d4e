package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the server and the command line tools read from the environment.
type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	LogLevel          string
	CORSOrigins       []string
	KFactor           float64
	DefaultRating     float64
	HistoryWindowDays int
	LeagueAccessTTL   time.Duration
	BcryptCost        int
}

// IsDevelopment reports whether the app runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads the configuration from the environment, loading a .env file first when present.
func Load() (*Config, error) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	cfg := &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
			getEnv("PGHOST", "localhost"),
			getEnv("PGPORT", "5432"),
			getEnv("PGDATABASE", "foosilator"),
			getEnv("PGUSER", "postgres"),
			os.Getenv("PGPASSWORD"),
			getEnv("PGSSLMODE", "disable"),
		)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
		}
		cfg.JWTSecret = "development-secret"
	}

	var err error
	if cfg.KFactor, err = getFloat("ELO_K_FACTOR", 32); err != nil {
		return nil, err
	}
	if cfg.KFactor <= 0 {
		return nil, fmt.Errorf("ELO_K_FACTOR must be positive, got %v", cfg.KFactor)
	}
	if cfg.DefaultRating, err = getFloat("ELO_DEFAULT_RATING", 1000); err != nil {
		return nil, err
	}
	if cfg.HistoryWindowDays, err = getInt("HISTORY_WINDOW_DAYS", 14); err != nil {
		return nil, err
	}
	if cfg.HistoryWindowDays <= 0 {
		return nil, fmt.Errorf("HISTORY_WINDOW_DAYS must be positive, got %d", cfg.HistoryWindowDays)
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cfg.BcryptCost)
	}

	ttl := getEnv("LEAGUE_ACCESS_TTL", "24h")
	if cfg.LeagueAccessTTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("invalid LEAGUE_ACCESS_TTL environment variable: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s environment variable: %v is not a finite number", key, v)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
