package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SelectiveTimeoutConfig applies the short timeout to ordinary endpoints
// and the long one to tailoring, which spends minutes inside LLM calls.
func SelectiveTimeoutConfig(short, long time.Duration) []echo.MiddlewareFunc {
	isTailor := func(c echo.Context) bool {
		return strings.HasPrefix(c.Path(), "/api/v1/tailor")
	}
	return []echo.MiddlewareFunc{
		middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: short,
			Skipper: isTailor,
		}),
		middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Timeout: long,
			Skipper: func(c echo.Context) bool { return !isTailor(c) },
		}),
	}
}

// TimeoutConfig returns timeout middleware configuration
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	})
}
