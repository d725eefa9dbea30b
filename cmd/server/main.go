// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/backend-go/internal/api"
	"github.com/retailpulse/backend-go/internal/cache"
	"github.com/retailpulse/backend-go/internal/config"
	"github.com/retailpulse/backend-go/internal/repository/postgres"
	"github.com/retailpulse/backend-go/internal/service"
	"github.com/retailpulse/backend-go/internal/storage"
	"github.com/retailpulse/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Optional snapshot persistence
	var snapshots postgres.SnapshotStore
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		repo := postgres.NewSnapshotRepository(db)
		if err := repo.Migrate(context.Background()); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to migrate snapshot schema")
		}
		snapshots = repo
	}

	// Metrics cache (noop when disabled)
	metricsCache, err := cache.NewMetricsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		metricsCache = cache.NewNoopMetricsCache()
	}

	// Optional upload archive
	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		archiveClient, err := storage.NewMinioClient(cfg.Archive)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Upload archive unavailable, continuing without it")
		} else {
			archive = archiveClient
		}
	}

	// Initialize services
	datasets := service.NewDatasetService(snapshots, metricsCache, archive)
	if err := datasets.Restore(context.Background()); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to restore latest snapshot")
	}

	// Initialize HTTP server
	router := api.NewRouter(datasets, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
