package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable process configuration, read from the environment
// exactly once at startup and handed to components by value. Business logic
// never reads the environment directly.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTIssuer        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ResetTokenTTL    time.Duration

	BcryptCost int

	GoogleClientID string

	CookieDomain  string
	SecureCookies bool

	ResendAPIKey string
	EmailFrom    string
	AppBaseURL   string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		JWTIssuer:        getEnv("JWT_ISSUER", "accounthub"),
		AccessTokenTTL:   getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL:  getDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		ResetTokenTTL:    getDuration("RESET_TOKEN_TTL", time.Hour),
		BcryptCost:       getInt("BCRYPT_COST", 12),
		GoogleClientID:   os.Getenv("GOOGLE_CLIENT_ID"),
		CookieDomain:     os.Getenv("COOKIE_DOMAIN"),
		SecureCookies:    os.Getenv("COOKIE_SECURE") != "false",
		ResendAPIKey:     os.Getenv("RESEND_API_KEY"),
		EmailFrom:        os.Getenv("EMAIL_FROM"),
		AppBaseURL:       os.Getenv("APP_BASE_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}
	if cfg.JWTAccessSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return cfg, nil
}

// IsProduction controls error-detail masking and stack traces.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
