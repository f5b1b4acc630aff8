package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/replay/internal/replay"
	"github.com/xiaot623/gogo/replay/internal/service"
)

// GetReplay returns playback parameters for a simulation run.
// GET /v1/replay?name=&step=&speed=&zoom=&scene=
func (h *Handler) GetReplay(c echo.Context) error {
	q, err := ParseReplayQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	view, err := h.service.Replay(c.Request().Context(), q)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetAgentLogs returns the simplified timelines of a run keyed by agent.
// GET /v1/agent_logs/:name
func (h *Handler) GetAgentLogs(c echo.Context) error {
	logs, err := h.service.AgentLogs(c.Request().Context(), c.Param("name"), splitList(c.QueryParam("agents")))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// ParseReplayQuery reads a replay query, applying defaults for absent values.
func ParseReplayQuery(c echo.Context) (service.ReplayQuery, error) {
	q := service.ReplayQuery{
		Name:   c.QueryParam("name"),
		Step:   service.DefaultStep,
		Speed:  replay.DefaultSpeed,
		Zoom:   service.DefaultZoom,
		Scene:  c.QueryParam("scene"),
		Agents: splitList(c.QueryParam("agents")),
	}
	if s := c.QueryParam("step"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("step must be an integer")
		}
		q.Step = v
	}
	if s := c.QueryParam("speed"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("speed must be an integer")
		}
		q.Speed = v
	}
	if s := c.QueryParam("zoom"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, errors.New("zoom must be a number")
		}
		q.Zoom = v
	}
	return q, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
