// Package v1 provides the HTTP handlers of the replay service.
package v1

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/service"
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
	// Replay
	e.GET("/v1/replay", h.GetReplay)
	e.GET("/v1/agent_logs/:name", h.GetAgentLogs)

	// Extraction
	e.POST("/v1/runs/:name/extract", h.ExtractRun)
	e.GET("/v1/runs/:name/summary", h.GetSummary)
	e.GET("/v1/runs/:name/agents/:agent/timeline", h.GetTimeline)
	e.GET("/v1/runs/:name/extractions", h.ListExtractions)
	e.GET("/v1/extractions/:extraction_id", h.GetExtraction)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorResponse maps service errors to status codes.
func errorResponse(c echo.Context, err error) error {
	var integrity *domain.IntegrityError
	switch {
	case errors.Is(err, service.ErrInvalidRunName), errors.Is(err, domain.ErrStepOutOfRange):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingInput):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &integrity):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error": err.Error(),
			"frame": integrity.Frame,
			"agent": integrity.Agent,
		})
	default:
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
