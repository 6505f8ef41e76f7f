// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/wenku/backend-go/internal/api/handlers"
	"github.com/andresuchdata/wenku/backend-go/internal/api/middleware"
	"github.com/andresuchdata/wenku/backend-go/internal/metrics"
	"github.com/andresuchdata/wenku/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	LibraryService *service.LibraryService
	SyncService    *service.SyncService

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	corsConfig := cors.Config{
		AllowOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowAllOrigins = true
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.Use(middleware.Metrics(services.Metrics))
	}
	if services.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api/wenku")
	apiGroup.Use(middleware.CacheControl())

	if services.LibraryService != nil {
		libraryHandler := handlers.NewLibraryHandler(services.LibraryService)
		apiGroup.GET("/categories", libraryHandler.GetCategories)
		apiGroup.GET("/documents", libraryHandler.GetDocuments)
		apiGroup.GET("/documents/:id", libraryHandler.GetDocument)
		apiGroup.GET("/search", libraryHandler.Search)
		apiGroup.POST("/read-count", libraryHandler.RecordRead)
	}

	if services.SyncService != nil {
		syncHandler := handlers.NewSyncHandler(services.SyncService)
		apiGroup.GET("/sync", syncHandler.Sync)
		apiGroup.POST("/sync", syncHandler.Sync)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
