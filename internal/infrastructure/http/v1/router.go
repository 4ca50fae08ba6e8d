// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"quarryflow/internal/domain/dashboard"
	"quarryflow/internal/domain/reconciliation"
	"quarryflow/internal/domain/stockledger"
	"quarryflow/internal/infrastructure/http/v1/handlers"
	"quarryflow/internal/infrastructure/http/v1/middleware"
	"quarryflow/internal/infrastructure/storage/postgres"
	"quarryflow/pkg/logger"
)

// RouterConfig holds wired services for the HTTP layer.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// ReconciliationService analyzes production flow checkpoints
	ReconciliationService *reconciliation.Service

	// DashboardService computes KPIs and daily/weekly rollups
	DashboardService *dashboard.Service

	// StockLedgerService maintains the per-(product, location) ledger
	StockLedgerService *stockledger.Service

	// AuditService serves the ledger change history
	AuditService *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no actor context required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()
	dashboardHandler := handlers.NewDashboardHandler(base, cfg.ReconciliationService, cfg.DashboardService)
	stockHandler := handlers.NewStockHandler(base, cfg.StockLedgerService, cfg.AuditService)

	// API v1. Identity arrives from the gateway as headers, Actor lifts it
	// into the request context for audit attribution.
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Actor())
	{
		dash := v1.Group("/dashboard")
		{
			dash.GET("/summary", dashboardHandler.GetSummary)
			dash.GET("/kpis", dashboardHandler.GetKPIs)
			dash.GET("/daily", dashboardHandler.GetDailySummary)
			dash.GET("/weekly", dashboardHandler.GetWeeklySummary)
		}

		stock := v1.Group("/stock-levels")
		{
			stock.GET("", stockHandler.List)
			stock.GET("/current", stockHandler.GetCurrent)
			stock.GET("/:id/history", stockHandler.History)
			stock.POST("", stockHandler.CreateOrUpdate)
			stock.POST("/:id/adjust", stockHandler.Adjust)
			stock.POST("/recalculate", stockHandler.Recalculate)
		}
	}

	return router
}
