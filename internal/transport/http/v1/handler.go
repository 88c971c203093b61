// Package v1 provides the HTTP handlers for the service.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seetohjy/hdb-insights/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Streaming question endpoint
	e.POST("/ask", h.Ask)

	// Direct tool endpoints, bypassing the reasoning loop
	e.POST("/query", h.Query)
	e.POST("/predict", h.Predict)

	e.GET("/health", h.Health)
	e.GET("/", h.Root)
}

// QuestionRequest is the body of /ask and /query.
type QuestionRequest struct {
	Question string `json:"question"`
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Root returns basic information about the API.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Welcome to the HDB Price Analysis API",
		"endpoints": map[string]string{
			"/ask":     "Ask a question about HDB prices and data (streaming response)",
			"/query":   "Query the database with natural language",
			"/predict": "Predict HDB resale price for given property attributes",
		},
	})
}
