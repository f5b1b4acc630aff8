// Package ws streams movement frames of a replay over WebSocket.
package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/protocol"
	"github.com/xiaot623/gogo/replay/internal/replay"
	"github.com/xiaot623/gogo/replay/internal/service"
)

const writeTimeout = 10 * time.Second

// Server handles replay stream connections.
type Server struct {
	service *service.Service
	// frameInterval is the delay between frames at speed multiplier 1.
	frameInterval time.Duration
	upgrader      websocket.Upgrader
}

// NewServer creates a new replay stream server.
func NewServer(svc *service.Service, frameInterval time.Duration) *Server {
	return &Server{
		service:       svc,
		frameInterval: frameInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the stream route with the echo server.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/replay/:name/stream", s.HandleStream)
}

// HandleStream seeks to the requested step and streams frames from there,
// one every frameInterval divided by the speed multiplier.
// GET /v1/replay/:name/stream?step=&speed=
func (s *Server) HandleStream(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket: %v", err)
		return err
	}
	defer conn.Close()

	name := c.Param("name")
	step, speed := service.DefaultStep, replay.DefaultSpeed
	if v := c.QueryParam("step"); v != "" {
		if step, err = strconv.Atoi(v); err != nil {
			s.sendError(conn, name, protocol.ErrorCodeInvalidRequest, "step must be an integer")
			return nil
		}
	}
	if v := c.QueryParam("speed"); v != "" {
		if speed, err = strconv.Atoi(v); err != nil {
			s.sendError(conn, name, protocol.ErrorCodeInvalidRequest, "speed must be an integer")
			return nil
		}
	}

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go s.readPump(conn, cancel)

	l, p, err := s.service.Seek(ctx, name, step, speed)
	if err != nil {
		s.sendError(conn, name, errorCode(err), err.Error())
		return nil
	}

	if err := s.writeJSON(conn, protocol.SeekMessage{
		BaseMessage:     base(protocol.TypeSeek, name),
		StartDatetime:   p.StartDatetime,
		Frame:           p.Frame,
		Step:            p.Step,
		SpeedMultiplier: p.SpeedMultiplier,
		PersonaInitPos:  p.PersonaInitPos,
		Clamped:         p.Clamped,
	}); err != nil {
		return nil
	}

	sent, err := s.streamFrames(ctx, conn, name, l, p)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("WARN: replay stream %s stopped: %v", name, err)
		}
		return nil
	}

	s.writeJSON(conn, protocol.EndMessage{BaseMessage: base(protocol.TypeEnd, name), Frames: sent})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
	return nil
}

func (s *Server) streamFrames(ctx context.Context, conn *websocket.Conn, name string, l *domain.CompressedMovementLog, p *replay.Playback) (int, error) {
	interval := s.frameInterval / time.Duration(p.SpeedMultiplier)
	ticker := time.NewTicker(max(interval, time.Millisecond))
	defer ticker.Stop()

	sent := 0
	for _, i := range replay.FrameIndices(l, p.Frame) {
		if sent > 0 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-ticker.C:
			}
		}
		records, _ := replay.Frame(l, i)
		if err := s.writeJSON(conn, protocol.FrameMessage{
			BaseMessage: base(protocol.TypeFrame, name),
			Frame:       i,
			Movement:    records,
		}); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// readPump drains client messages so close frames are processed, and
// cancels the stream when the client goes away.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func (s *Server) writeJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

func (s *Server) sendError(conn *websocket.Conn, name, code, message string) {
	s.writeJSON(conn, protocol.ErrorMessage{
		BaseMessage: base(protocol.TypeError, name),
		Code:        code,
		Message:     message,
	})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, code), time.Now().Add(writeTimeout))
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidRunName), errors.Is(err, domain.ErrStepOutOfRange):
		return protocol.ErrorCodeInvalidRequest
	case errors.Is(err, domain.ErrMissingInput):
		return protocol.ErrorCodeNotFound
	case errors.Is(err, domain.ErrDataIntegrity):
		return protocol.ErrorCodeDataIntegrity
	default:
		return protocol.ErrorCodeInternal
	}
}

func base(msgType, name string) protocol.BaseMessage {
	return protocol.BaseMessage{Type: msgType, Ts: time.Now().UnixMilli(), Name: name}
}
