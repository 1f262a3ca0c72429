package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/config"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/scheduler"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/server"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/tracing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// @title Biofitness API
// @version 1.0
// @description Gym membership administration backend.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	logger.Info("Starting Biofitness backend")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Env,
		}); err != nil {
			logger.Error("Sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, cfg.OTLPEndpoint, "biofitness-api", cfg.Env)
	if err != nil {
		logger.Fatalf("Failed to init tracing: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	resolver := state.NewResolver(database)
	if err := resolver.CheckCanonical(context.Background()); err != nil {
		logger.Fatalf("States table is not seeded: %v", err)
	}
	sync := membership.NewSynchronizer(membership.NewRepository(database), resolver, cfg.Location())

	var refresher *scheduler.Refresher
	if cfg.StateSyncEnabled {
		refresher, err = scheduler.New(cfg.StateSyncCron, cfg.Location(), sync)
		if err != nil {
			logger.Fatalf("Failed to schedule state sync: %v", err)
		}
		refresher.Start()
	}

	srv := server.New(cfg, server.NewHandlers(database, cfg, sync))

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	if refresher != nil {
		select {
		case <-refresher.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("State sync still running at shutdown")
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Errorf("Error flushing traces: %v", err)
	}

	logger.Info("Server stopped")
}
