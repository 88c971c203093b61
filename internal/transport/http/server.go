// Package http provides the HTTP server implementation for the service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/seetohjy/hdb-insights/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server: question streaming,
// direct tool endpoints, health and metrics.
func NewServer(handler *v1.Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register Routes
	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
