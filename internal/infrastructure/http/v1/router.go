// Package v1 provides HTTP API version 1.
package v1

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"laluna/internal/core/idempotency"
	"laluna/internal/domain/auth"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/order"
	"laluna/internal/domain/reports"
	"laluna/internal/infrastructure/http/v1/handlers"
	"laluna/internal/infrastructure/http/v1/middleware"
	"laluna/internal/infrastructure/realtime"
	"laluna/pkg/logger"
)

// RouterConfig holds everything the router wires into handlers.
type RouterConfig struct {
	Logger      *logger.Logger
	Development bool
	Version     string

	// Storage names the backend reported by the health endpoints.
	Storage string
	Store   handlers.Pinger
	// DBStats is optional; it feeds /health/info.
	DBStats func() any

	JWTValidator middleware.JWTValidator
	Idempotency  idempotency.Store

	// FrontendURLs are the CORS and WebSocket origins. "*" allows any.
	FrontendURLs []string

	AuthService      *auth.Service
	CustomerService  *customer.Service
	OrderService     *order.Service
	InventoryService *inventory.Service
	ReportsService   *reports.Service
	Hub              *realtime.Hub
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(corsMiddleware(cfg.FrontendURLs))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.Storage, cfg.Version, cfg.DBStats)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		protected.Use(middleware.Idempotency(cfg.Idempotency))
	}

	registerAuthRoutes(protected, authHandler)
	registerCustomerRoutes(protected.Group("/customers"), handlers.NewCustomerHandler(base, cfg.CustomerService))
	registerOrderRoutes(
		protected.Group("/orders"),
		handlers.NewOrderHandler(base, cfg.OrderService),
		handlers.NewReportsHandler(base, cfg.ReportsService),
	)
	registerInventoryRoutes(
		protected.Group("/inventory"),
		handlers.NewInventoryHandler(base, cfg.InventoryService, cfg.Hub, cfg.FrontendURLs),
	)

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderIdempotencyKey, middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
