package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/famnudger/fam/backend/config"
	"github.com/famnudger/fam/backend/internal/database"
	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/observability"
	"github.com/famnudger/fam/backend/internal/server"
)

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(string(cfg.Environment))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()
	shutdownTracing := observability.Init(ctx, appLog, observability.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: server.ServiceName,
		Environment: string(cfg.Environment),
		Version:     version,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
		SampleRatio: cfg.OTelSampleRatio,
	})

	db, err := database.New(cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(db, appLog); err != nil {
		appLog.Fatal("Failed to run migrations", "error", err)
	}

	// Analyses still work without redis, just uncached and unthrottled.
	var redisClient *redis.Client
	if rc, err := database.NewRedisClient(cfg, appLog); err != nil {
		appLog.Warn("Redis unavailable, caching and rate limiting disabled", "error", err)
	} else {
		redisClient = rc
		defer func() { _ = redisClient.Close() }()
	}

	registry, err := server.LoadRegistry(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("Failed to load ingredient registry", "error", err)
	}

	srv := server.New(cfg, server.Deps{
		DB:        db,
		Redis:     redisClient,
		Assembler: engine.NewAssembler(registry),
		Log:       appLog,
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			appLog.Error("Server error", "error", err)
		}
	case sig := <-quit:
		appLog.Info("Received signal", "signal", sig.String())
	}

	appLog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLog.Warn("Tracer shutdown error", "error", err)
	}
	appLog.Info("Server stopped")
}
