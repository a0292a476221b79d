// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the brand guide server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brandguide/internal/cache"
	"brandguide/internal/config"
	"brandguide/internal/database"
	"brandguide/internal/guide"
	"brandguide/internal/handlers"
	"brandguide/internal/middleware"
	"brandguide/internal/payment"
	"brandguide/internal/router"
	"brandguide/internal/session"
	"brandguide/internal/storage"
	"brandguide/internal/store"
)

func main() {
	// Load configuration from the environment (and .env when present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"app_url", cfg.AppURL,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the demo brand (no-op if it already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (guide cache + draft sessions).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	guideCache := cache.NewGuideCache(valkeyClient, cfg.GuideCacheTTL)
	if cfg.IsDev() {
		// Templates change often during development.
		guideCache.InvalidateAll(context.Background())
	}
	generator := guide.NewGenerator(cfg.GenerationDelay)
	generator.Cache = guideCache

	// Initialize data stores.
	brandStore := store.NewBrandStore(db)
	guideStore := store.NewGuideStore(db)
	paymentStore := store.NewPaymentStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)
	eventStore := store.NewEventStore(db)

	// Connect to S3-compatible object storage (optional; guides are still
	// downloadable without it, just not delivered as stored files).
	var (
		uploader  payment.ArtifactUploader
		artifacts handlers.ArtifactStore
	)
	if cfg.StorageEnabled() {
		storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			uploader = storageClient
			artifacts = storageClient
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
		}
	} else {
		slog.Warn("s3 storage not configured, artifact delivery disabled")
	}

	// Stripe: checkout sessions and webhook verification.
	if cfg.StripeSecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout will fail")
	}
	provider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret, nil)
	checkout := payment.NewCheckout(provider, cfg.AppURL,
		payment.WithPriceRefs(cfg.PriceRefs()),
		payment.WithTimeout(cfg.CheckoutTimeout),
		payment.WithPromoLookup(cfg.StripePromoLookup),
		payment.WithPendingRecorder(paymentStore),
	)
	priceCtx, cancelPrices := context.WithTimeout(context.Background(), cfg.CheckoutTimeout)
	err = checkout.VerifyPrices(priceCtx)
	cancelPrices()
	if err != nil {
		slog.Error("stripe prices do not match the pricing catalog", "error", err)
		os.Exit(1)
	}
	webhook := payment.NewWebhook(provider, payment.Stores{
		Guides:        guideStore,
		Payments:      paymentStore,
		Subscriptions: subscriptionStore,
		Events:        eventStore,
	}, generator, uploader)

	checkoutLimiter := middleware.NewCheckoutLimiter(cfg.CheckoutRateLimit, cfg.CheckoutProfileRateLimit, time.Minute)
	defer checkoutLimiter.Stop()

	// Create handler groups with their dependencies.
	brandHandlers := handlers.NewBrand(sessionStore)
	guideHandlers := handlers.NewGuides(brandStore, guideStore, subscriptionStore, generator, sessionStore, artifacts)
	paymentHandlers := handlers.NewPayments(checkout, webhook)

	r := router.New(sessionStore, checkoutLimiter, secureCookies, handlers.Health(db),
		brandHandlers, guideHandlers, paymentHandlers)

	// WriteTimeout covers paid-tier generation inside the webhook and the
	// checkout provider call.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
