// Package main is the entry point for the AssetVault server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/abdul-hamid-achik/assetvault/internal/config"
	"github.com/abdul-hamid-achik/assetvault/internal/database"
	"github.com/abdul-hamid-achik/assetvault/internal/events"
	"github.com/abdul-hamid-achik/assetvault/internal/handlers"
	"github.com/abdul-hamid-achik/assetvault/internal/indexer"
	"github.com/abdul-hamid-achik/assetvault/internal/logging"
	"github.com/abdul-hamid-achik/assetvault/internal/metrics"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting AssetVault",
		"version", version,
		"env", cfg.Environment,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis is optional: it backs rate limiting and the event stream.
	var redisClient *redis.Client
	var publisher events.Publisher = events.Nop{}
	if cfg.Redis.URL != "" {
		logger.Info("connecting to Redis")
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opt.MaxRetries = cfg.Redis.MaxRetries
		opt.PoolSize = cfg.Redis.PoolSize
		opt.MinIdleConns = cfg.Redis.MinIdleConns
		redisClient = redis.NewClient(opt)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return fmt.Errorf("failed to ping Redis: %w", err)
		}
		publisher = events.NewRedisPublisher(redisClient, cfg.Redis.Stream)
		logger.Info("connected to Redis", "stream", cfg.Redis.Stream)
	}

	// Open the vault store. Closing the vault closes the publisher, and with
	// it the Redis client.
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	s, err := store.NewBoltStore(cfg.Store.Path)
	if err != nil {
		publisher.Close()
		return fmt.Errorf("failed to open store: %w", err)
	}
	v := vault.New(s,
		vault.WithFeeRate(cfg.Vault.FeeRatePerDay),
		vault.WithFaucet(cfg.Vault.AllowFaucet),
		vault.WithPublisher(publisher),
	)
	defer func() {
		if err := v.Close(); err != nil {
			logger.Error("failed to close vault", "error", err)
		}
	}()
	reg := registry.New(s, publisher)

	if cfg.Vault.AllowFaucet {
		logger.Warn("funding faucet enabled")
	}

	// PostgreSQL is optional: it holds the event index.
	var dbPool *pgxpool.Pool
	if cfg.Database.URL != "" {
		logger.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		dbPool = db.Pool
		logger.Info("connected to PostgreSQL")

		ix := indexer.New(db, v, cfg.Indexer.BatchSize)
		go ix.Run(ctx, cfg.Indexer.Interval)
	}

	// Create router
	router := handlers.NewRouter(&handlers.Dependencies{
		Config:   cfg,
		Vault:    v,
		Registry: reg,
		DB:       dbPool,
		Redis:    redisClient,
		Logger:   logger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go metrics.StartCollector(ctx, v.Snapshot, dbPool, cfg.MetricsInterval)

	// Start server in goroutine
	go func() {
		logger.Info("server listening",
			"addr", cfg.ServerAddr(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	cancel()

	logger.Info("server stopped")
	return nil
}
