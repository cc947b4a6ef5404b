package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	MediaPath     string // Base path for uploaded listing images
	AllowedOrigin string

	JWTSecret string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeRefreshURL    string
	StripeReturnURL     string

	// ReconcileSchedule is a cron expression for the pending-seller sweep.
	ReconcileSchedule string
}

// Load loads configuration from environment variables or sets defaults.
// Secrets have no defaults: a missing JWT or Stripe secret is a startup error.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	cfg := &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./pawspace.db"),
		MediaPath:           getEnv("MEDIA_PATH", "./media"),
		AllowedOrigin:       getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeRefreshURL:    getEnv("STRIPE_REFRESH_URL", "https://pawspace.app/profile"),
		StripeReturnURL:     getEnv("STRIPE_RETURN_URL", "https://pawspace.app/profile"),
		ReconcileSchedule:   getEnv("RECONCILE_SCHEDULE", "@every 10m"),
	}

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if cfg.StripeWebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
