// Package main is the entry point for the barbershop site builder server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"barbersites/internal/ai"
	"barbersites/internal/cache"
	"barbersites/internal/config"
	"barbersites/internal/content"
	"barbersites/internal/database"
	"barbersites/internal/handlers"
	"barbersites/internal/logging"
	"barbersites/internal/middleware"
	"barbersites/internal/payment"
	"barbersites/internal/render"
	"barbersites/internal/requests"
	"barbersites/internal/router"
	"barbersites/internal/storage"
	"barbersites/internal/store"
)

func main() {
	// Outside production a local .env overrides the environment.
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Overload(".env"); err == nil {
			slog.Info("loaded environment from .env")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Dev:   cfg.IsDev(),
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	ctx := context.Background()

	// Connect to PostgreSQL.
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Valkey backs the preview cache and the webhook event ledger. Both are
	// optional; the database alone keeps payment updates idempotent.
	var (
		previews requests.PreviewCache
		events   requests.EventLedger
	)
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, preview cache and event ledger disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		previews = cache.NewPreviewCache(valkeyClient, cfg.PreviewTTL)
		events = cache.NewEventLedger(valkeyClient, cache.DefaultEventRetention)
	}

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)
	if !aiRegistry.HasProvider(cfg.AIProvider) {
		slog.Warn("active ai provider has no api key, site copy will use defaults", "provider", cfg.AIProvider)
	}

	var issuer payment.Issuer
	if cfg.StripeSecretKey != "" {
		issuer = payment.NewStripeIssuer(cfg.StripeSecretKey, cfg.PaymentCurrency, nil)
	} else {
		slog.Warn("stripe not configured, payment endpoints disabled")
	}
	if cfg.StripeWebhookSecret == "" {
		slog.Warn("stripe webhook secret not set, all webhooks will be rejected")
	}

	// S3-compatible object storage is optional; without it publishing and
	// logo uploads answer 503.
	var objects requests.ObjectStore
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, publishing and logo uploads disabled")
	}

	svc := requests.New(requests.Deps{
		Templates:    store.NewTemplateRequestStore(db),
		Personalized: store.NewPersonalizedRequestStore(db),
		Content:      content.NewGenerator(aiRegistry, cfg.AITimeout),
		Renderer:     render.MustNew(),
		Payments:     issuer,
		Previews:     previews,
		Events:       events,
		Objects:      objects,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute, cfg.TrustProxy)
	defer limiter.Stop()

	r := router.New(router.Options{
		AdminToken: cfg.AdminToken,
		Limiter:    limiter,
	},
		handlers.NewPublic(svc, payment.NewWebhookVerifier(cfg.StripeWebhookSecret)),
		handlers.NewAdmin(svc, aiRegistry),
	)
	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN not set, admin API is unauthenticated")
	}

	// WriteTimeout must cover a template submission, which waits on the
	// AI provider for up to AITimeout.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
