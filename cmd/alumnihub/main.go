// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the alumnihub API server.
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

	"alumnihub/internal/cache"
	"alumnihub/internal/config"
	"alumnihub/internal/database"
	"alumnihub/internal/discussion"
	"alumnihub/internal/handlers"
	"alumnihub/internal/middleware"
	"alumnihub/internal/ranking"
	"alumnihub/internal/router"
	"alumnihub/internal/store"
	"alumnihub/internal/taxonomy"
)

func main() {
	// Load configuration from environment variables and .env.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"log_level", cfg.LogLevel.String(),
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

	// Seed development data (no-op if categories already exist).
	if cfg.IsDev() {
		if err := database.Seed(context.Background(), db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the view cache. The API serves uncached reads
	// when it is unavailable.
	var views *cache.ViewCache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, view cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		views = cache.NewViewCache(valkeyClient, cfg.CacheTTL)
	}

	// Initialize data stores and engines.
	categoryStore := store.NewCategoryStore(db, cfg.TxMaxRetries)
	forumStore := store.NewForumStore(db, cfg.TxMaxRetries)
	rankingStore := store.NewRankingStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	taxonomyEngine := taxonomy.NewEngine(categoryStore)
	discussionEngine := discussion.NewEngine(forumStore)
	rankingEngine := ranking.NewEngine(rankingStore)

	// Rate limiter for mutating routes.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(limiter, router.Handlers{
		Categories: handlers.NewCategories(taxonomyEngine, views, cacheLogStore),
		Forum:      handlers.NewForum(discussionEngine, views, cacheLogStore),
		Rankings:   handlers.NewRankings(rankingEngine, views),
		Admin:      handlers.NewAdmin(cacheLogStore),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
