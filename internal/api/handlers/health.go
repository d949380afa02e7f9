package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobforge/internal/llm"
	"jobforge/pkg/models"
	"jobforge/pkg/utils"
)

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Checks: map[string]string{
			"api":    "ok",
			"uptime": utils.FormatDuration(time.Since(startTime)),
		},
	}
	return c.JSON(http.StatusOK, response)
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
	})
}

// KeyStatusHandler reports which key slots are quota-exhausted and for
// which day, so an operator can see at a glance why calls are rotating.
func KeyStatusHandler(client *llm.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"quota_exhausted_keys": client.QuotaStatus(),
			"timestamp":            time.Now(),
		})
	}
}
