package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/api/admin"
	"github.com/liliang-cn/qualia/internal/api/middleware"
	"github.com/liliang-cn/qualia/internal/api/widget"
	"github.com/liliang-cn/qualia/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
	Logger       *zap.Logger
}

// SetupRouter sets up the Gin router
func SetupRouter(
	adminService *service.AdminService,
	widgetService *service.WidgetService,
	cfg RouterConfig,
) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins, logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Widget API (public)
	widgetHandler := widget.NewHandler(widgetService)
	widgetGroup := r.Group("/api/widget")
	widgetHandler.RegisterRoutes(widgetGroup)

	// Admin API (read-only, requires API key)
	adminHandler := admin.NewHandler(adminService)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.Auth(middleware.AuthConfig{
		APIKey:  cfg.APIKey,
		Methods: []string{http.MethodGet},
	}, logger))
	adminHandler.RegisterRoutes(adminGroup)

	return r
}
