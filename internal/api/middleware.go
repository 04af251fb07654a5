// middleware.go - Request logging middleware
package api

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// skipRequestLog filters health checks and job polling out of the request log.
func skipRequestLog(c echo.Context) bool {
	path := c.Request().URL.Path
	if path == "/api/health" {
		return true
	}
	return c.Request().Method == "GET" &&
		strings.HasPrefix(path, "/api/exports/") &&
		!strings.HasSuffix(path, "/download")
}

// RequestLogger logs one line per request into logger.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	log := logger.With().Str("component", "http").Logger()

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper:     skipRequestLog,
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
