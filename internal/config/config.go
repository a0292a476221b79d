// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"brandguide/internal/models"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host   string `envconfig:"APP_HOST" default:"0.0.0.0"`
	Port   string `envconfig:"APP_PORT" default:"8080"`
	Env    string `envconfig:"APP_ENV" default:"development"` // "development", "production", "testing"
	AppURL string `envconfig:"APP_URL" default:"http://localhost:8080"`

	// PostgreSQL connection
	DBHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	DBPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	DBUser     string `envconfig:"POSTGRES_USER" default:"brandguide"`
	DBPassword string `envconfig:"POSTGRES_PASSWORD" default:"changeme"`
	DBName     string `envconfig:"POSTGRES_DB" default:"brandguide"`

	// Valkey (Redis-compatible cache + draft sessions)
	ValkeyHost     string `envconfig:"VALKEY_HOST" default:"localhost"`
	ValkeyPort     string `envconfig:"VALKEY_PORT" default:"6379"`
	ValkeyPassword string `envconfig:"VALKEY_PASSWORD"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePriceCore     string `envconfig:"STRIPE_PRICE_CORE"`
	StripePriceComplete string `envconfig:"STRIPE_PRICE_COMPLETE"`
	// StripePromoLookup resolves promo codes the static table does not know
	// through Stripe promotion codes.
	StripePromoLookup        bool          `envconfig:"STRIPE_PROMO_LOOKUP" default:"false"`
	CheckoutTimeout          time.Duration `envconfig:"CHECKOUT_TIMEOUT" default:"15s"`
	CheckoutRateLimit        int           `envconfig:"CHECKOUT_RATE_LIMIT" default:"10"`        // per minute per IP
	CheckoutProfileRateLimit int           `envconfig:"CHECKOUT_PROFILE_RATE_LIMIT" default:"5"` // per minute per brand profile

	// Guide generation
	GenerationDelay time.Duration `envconfig:"GENERATION_DELAY" default:"1500ms"`
	GuideCacheTTL   time.Duration `envconfig:"GUIDE_CACHE_TTL" default:"24h"`

	// S3-compatible storage for delivered guide files (optional)
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"brand-guides"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists. Returns an error if critical
// values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY must be set in production")
		}
		if cfg.StripeWebhookSecret == "" {
			return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// PriceRefs returns the Stripe price IDs configured per paid tier. The
// catalog stays the source of truth for amounts: startup fails when a
// referenced price charges something else.
func (c *Config) PriceRefs() map[models.Tier]string {
	return map[models.Tier]string{
		models.TierCore:     c.StripePriceCore,
		models.TierComplete: c.StripePriceComplete,
	}
}

// StorageEnabled reports whether S3 delivery is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
