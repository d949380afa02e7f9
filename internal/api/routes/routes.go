package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobforge/internal/api/handlers"
	"jobforge/internal/api/middleware"
	"jobforge/internal/config"
	"jobforge/internal/llm"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, client *llm.Client, deps *handlers.TailorDeps) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	// Tailoring runs LLM conversations and gets the long timeout
	e.Use(middleware.SelectiveTimeoutConfig(cfg.Server.ReadTimeout, 5*time.Minute)...)

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/keys", handlers.KeyStatusHandler(client))
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/tailor", handlers.TailorHandler(deps))
	}
}
