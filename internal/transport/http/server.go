// Package http provides the HTTP server implementation for the replay service.
package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/gogo/replay/internal/service"
	v1 "github.com/xiaot623/gogo/replay/internal/transport/http/v1"
	"github.com/xiaot623/gogo/replay/internal/transport/ws"
)

// NewServer creates and configures the HTTP server. It serves the replay
// and agent log API and the replay frame stream.
func NewServer(svc *service.Service, frameInterval time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	streamServer := ws.NewServer(svc, frameInterval)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	streamServer.RegisterRoutes(e)

	return e
}
