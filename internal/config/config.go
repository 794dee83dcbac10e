// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Addr          string
	StoreDriver   string
	DatabaseDSN   string
	MigrationsDir string

	ReviewsBaseURL string
	ReviewsRPS     int
	ReviewsTimeout time.Duration

	WebhookSigningKey string
	WebhookTimeout    time.Duration

	NotifyMaxAttempts int

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
	EnableHSTS         bool
}

// LoadEnvFiles reads .env and .env.local. Variables already present in the
// process environment win.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load reads the env files and builds a validated Config.
func Load() (Config, error) {
	LoadEnvFiles()
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		StoreDriver:        getEnv("STORE_DRIVER", StoreMemory),
		DatabaseDSN:        os.Getenv("DB_DSN"),
		MigrationsDir:      getEnv("MIGRATIONS_DIR", "db/migrations"),
		ReviewsBaseURL:     os.Getenv("REVIEWS_BASE_URL"),
		ReviewsRPS:         getInt("REVIEWS_RPS", 5, &errs),
		ReviewsTimeout:     getDuration("REVIEWS_TIMEOUT", 10*time.Second, &errs),
		WebhookSigningKey:  os.Getenv("WEBHOOK_SIGNING_KEY"),
		WebhookTimeout:     getDuration("WEBHOOK_TIMEOUT", 5*time.Second, &errs),
		NotifyMaxAttempts:  getInt("NOTIFY_MAX_ATTEMPTS", 5, &errs),
		RateLimitRPS:       getFloat("RATE_LIMIT_RPS", 20, &errs),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 40, &errs),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),
		EnableHSTS:         os.Getenv("ENABLE_HSTS") == "true",
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when STORE_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver))
	}
	if cfg.ReviewsBaseURL == "" {
		errs = append(errs, errors.New("missing required environment variable: REVIEWS_BASE_URL"))
	}
	if cfg.WebhookSigningKey == "" {
		errs = append(errs, errors.New("missing required environment variable: WEBHOOK_SIGNING_KEY"))
	}
	if cfg.NotifyMaxAttempts < 1 {
		errs = append(errs, errors.New("NOTIFY_MAX_ATTEMPTS must be at least 1"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func getFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func getList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
