// backend-go/cmd/wenku-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/api"
	"github.com/andresuchdata/wenku/backend-go/internal/cache"
	"github.com/andresuchdata/wenku/backend-go/internal/catalog"
	"github.com/andresuchdata/wenku/backend-go/internal/config"
	"github.com/andresuchdata/wenku/backend-go/internal/metrics"
	"github.com/andresuchdata/wenku/backend-go/internal/repository/sqldb"
	"github.com/andresuchdata/wenku/backend-go/internal/service"
	"github.com/andresuchdata/wenku/backend-go/internal/storage"
	"github.com/andresuchdata/wenku/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := sqldb.Open(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	store, err := storage.Open(cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to open object store")
	}

	catalogCache, err := cache.NewCatalogCache(context.Background(), cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Catalog cache unavailable, continuing without it")
		catalogCache = cache.NewNoopCatalogCache()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize services
	repo := sqldb.NewDocumentRepository(db)
	reconciler := catalog.NewReconciler(store, repo, catalog.ReconcilerConfig{
		PageSize:       cfg.Sync.PageSize,
		Workers:        cfg.Sync.Workers,
		MaxObjectBytes: cfg.Sync.MaxObjectBytes,
	}, logger.Log)

	services := &api.Services{
		LibraryService: service.NewLibraryService(repo, catalogCache),
		SyncService:    service.NewSyncService(reconciler, catalogCache, m, time.Duration(cfg.Sync.TimeoutSeconds)*time.Second),
		Metrics:        m,
		Gatherer:       registry,
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("bucket", store.Bucket()).
			Str("db_driver", cfg.Database.Driver).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
