package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/replay/internal/service"
)

// ExtractRun extracts agent timelines from the checkpoints of a run.
// POST /v1/runs/:name/extract
func (h *Handler) ExtractRun(c echo.Context) error {
	name := c.Param("name")
	report, err := h.service.Extract(c.Request().Context(), name)
	if service.IsEmpty(err) {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"agents":  []service.AgentArtifact{},
			"message": err.Error(),
		})
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// GetSummary returns the extraction summary of a run.
// GET /v1/runs/:name/summary
func (h *Handler) GetSummary(c echo.Context) error {
	summary, err := h.service.Summary(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errorResponse(c, err)
	}
	if summary == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "summary not found"})
	}
	return c.JSON(http.StatusOK, summary)
}

// GetTimeline returns the full timeline of one agent.
// GET /v1/runs/:name/agents/:agent/timeline
func (h *Handler) GetTimeline(c echo.Context) error {
	t, err := h.service.Timeline(c.Request().Context(), c.Param("name"), c.Param("agent"))
	if err != nil {
		return errorResponse(c, err)
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "timeline not found"})
	}
	return c.JSON(http.StatusOK, t)
}

// ListExtractions lists the recorded extractions of a run.
// GET /v1/runs/:name/extractions
func (h *Handler) ListExtractions(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	extractions, err := h.service.Extractions(c.Request().Context(), c.Param("name"), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"extractions": extractions,
	})
}

// GetExtraction returns one recorded extraction.
// GET /v1/extractions/:extraction_id
func (h *Handler) GetExtraction(c echo.Context) error {
	ext, err := h.service.Extraction(c.Request().Context(), c.Param("extraction_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if ext == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "extraction not found"})
	}
	return c.JSON(http.StatusOK, ext)
}
