package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all the environment-driven settings for the application.
type Config struct {
	// SMTP. Optional: when SMTPHost is empty, outgoing mail is written to the
	// log instead of a mail server.
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	// Redis report cache. Optional: when RedisAddr is empty, reports are
	// served uncached.
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// Base URL for constructing confirmation/unsubscribe links
	BaseURL string
}

// Load reads and validates the environment variables, applying defaults where
// appropriate. A .env file in the working directory is loaded first when one
// is present. It returns an error if any present variable is malformed or the
// SMTP group is incomplete.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	// SMTP settings
	smtpHost := os.Getenv("SMTP_HOST")
	var smtpPort int
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	smtpFrom := os.Getenv("SMTP_FROM")
	if smtpHost != "" {
		smtpPortStr := os.Getenv("SMTP_PORT")
		if smtpPortStr == "" {
			smtpPortStr = "587"
		}
		var err error
		smtpPort, err = strconv.Atoi(smtpPortStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", smtpPortStr, err)
		}
		if smtpUser == "" {
			return nil, fmt.Errorf("SMTP_USER is required when SMTP_HOST is set")
		}
		if smtpPass == "" {
			return nil, fmt.Errorf("SMTP_PASS is required when SMTP_HOST is set")
		}
		if smtpFrom == "" {
			// default to the authenticated user
			smtpFrom = smtpUser
		}
	}

	// Redis settings
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPass := os.Getenv("REDIS_PASSWORD")

	cacheTTLStr := os.Getenv("CACHE_TTL")
	if cacheTTLStr == "" {
		cacheTTLStr = "5m"
	}
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL %q: %w", cacheTTLStr, err)
	}

	// Base URL for constructing confirmation/unsubscribe links
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &Config{
		SMTPHost: smtpHost,
		SMTPPort: smtpPort,
		SMTPUser: smtpUser,
		SMTPPass: smtpPass,
		SMTPFrom: smtpFrom,

		RedisAddr:     redisAddr,
		RedisPassword: redisPass,
		CacheTTL:      cacheTTL,

		BaseURL: baseURL,
	}, nil
}

// SMTPConfigured reports whether outgoing mail can use a real SMTP session.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}
