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

// Config holds every runtime setting read from the environment.
type Config struct {
	Port       string
	Env        string
	CORSOrigin string
	// ClientURL is the storefront origin used in emailed links.
	ClientURL string

	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StripeSecretKey     string
	StripeWebhookSecret string

	Email EmailConfig

	OTLPEndpoint string

	CouponSweepSchedule string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// Enabled reports whether SMTP delivery is configured.
func (e EmailConfig) Enabled() bool {
	return e.Host != ""
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Env:                 strings.ToLower(getEnv("APP_ENV", "development")),
		CORSOrigin:          getEnv("CORS_ORIGIN", "http://localhost:3000"),
		ClientURL:           os.Getenv("CLIENT_URL"),
		DatabaseURL:         databaseURL(),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		OTLPEndpoint:        os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		CouponSweepSchedule: getEnv("COUPON_SWEEP_SCHEDULE", "@hourly"),
		Email: EmailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASS"),
			From:     getEnv("EMAIL_FROM", "VIBE BITES <no-reply@vibebites.com>"),
		},
	}

	if cfg.ClientURL == "" {
		cfg.ClientURL = cfg.CORSOrigin
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.Email.Port, err = strconv.Atoi(getEnv("EMAIL_PORT", "587")); err != nil {
		return nil, fmt.Errorf("invalid EMAIL_PORT: %w", err)
	}
	if cfg.AuthRateLimitRPS, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT_RPS: %w", err)
	}
	if cfg.AuthRateLimitBurst, err = strconv.Atoi(getEnv("AUTH_RATE_LIMIT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT_BURST: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL or DB_HOST/DB_NAME is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete DB_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host,
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		name,
		getEnv("DB_PORT", "5432"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
