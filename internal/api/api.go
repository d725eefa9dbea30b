// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/retailpulse/backend-go/internal/api/handlers"
	"github.com/retailpulse/backend-go/internal/api/middleware"
	"github.com/retailpulse/backend-go/internal/service"
)

func NewRouter(datasets *service.DatasetService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	uploadHandler := handlers.NewUploadHandler(datasets)
	apiGroup.POST("/upload", uploadHandler.UploadDataset)

	dashboardHandler := handlers.NewDashboardHandler(datasets)
	apiGroup.GET("/inventory", dashboardHandler.GetInventory)
	apiGroup.GET("/stores", dashboardHandler.GetStores)
	storeGroup := apiGroup.Group("/stores/:store")
	{
		storeGroup.GET("/metrics", dashboardHandler.GetStoreMetrics)
		storeGroup.GET("/alerts", dashboardHandler.GetStoreAlerts)
		storeGroup.GET("/summary", dashboardHandler.GetStoreSummary)
	}

	analyticsGroup := apiGroup.Group("/analytics")
	{
		analyticsGroup.GET("/rankings", dashboardHandler.GetRankings)
		analyticsGroup.GET("/sales_by_store", dashboardHandler.GetSalesByStore)
	}

	transferHandler := handlers.NewTransferHandler(datasets)
	transferGroup := apiGroup.Group("/transfers")
	{
		transferGroup.GET("", dashboardHandler.GetTransfers)
		transferGroup.GET("/status", transferHandler.GetStatus)
		transferGroup.GET("/summary", transferHandler.GetSummary)
		transferGroup.POST("/approve", transferHandler.Approve)
		transferGroup.POST("/reject", transferHandler.Reject)
		transferGroup.POST("/bulk_approve", transferHandler.BulkApprove)
	}

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
