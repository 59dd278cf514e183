package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/maltedev/storefront-feed/internal/cache"
	"github.com/maltedev/storefront-feed/internal/metrics"
	"github.com/maltedev/storefront-feed/internal/parser"
	"github.com/maltedev/storefront-feed/internal/pricing"
	"github.com/maltedev/storefront-feed/internal/raindrop"
	"github.com/maltedev/storefront-feed/internal/scraper"
	"github.com/maltedev/storefront-feed/internal/storefront/api"
	"github.com/maltedev/storefront-feed/internal/storefront/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	responseCache, err := cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer responseCache.Close()

	m := metrics.New()
	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}

	// Initialize services
	lister := raindrop.NewClient(httpClient, raindrop.Options{
		BaseURL: cfg.Raindrop.BaseURL,
		Token:   cfg.Raindrop.Token,
		PerPage: cfg.Raindrop.PerPage,
	}, m, logger)

	fetcher := scraper.NewHTTPFetcher(httpClient, cfg.Fetch.UserAgent, m, logger)
	converter := pricing.NewConverter(cfg.Pricing)
	scraperService := scraper.NewService(fetcher, parser.NewMarketplaceParser(), converter, m, logger)

	handlers := api.NewHandlers(lister, scraperService, responseCache, cfg.Auth.AccessToken, m, logger)
	router := api.NewRouter(handlers, m.Registry, cfg.Server.AllowedOrigins)

	if !lister.Configured() {
		logger.Warn("RAINDROP_TOKEN is not set, /api/raindrop will fail")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting",
		"port", cfg.Server.Port,
		"cache", cfg.Cache.Backend,
		"auth", cfg.Auth.AccessToken != "",
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
