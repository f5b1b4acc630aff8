// Package protocol defines the WebSocket messages of the replay stream.
package protocol

import "github.com/xiaot623/gogo/replay/internal/domain"

// Message types from server to client
const (
	TypeSeek  = "seek"
	TypeFrame = "frame"
	TypeEnd   = "end"
	TypeError = "error"
)

// Error codes
const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeDataIntegrity  = "data_integrity"
	ErrorCodeInternal       = "internal_error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts"`
	Name string `json:"name,omitempty"`
}

// SeekMessage opens a stream with the playback position.
type SeekMessage struct {
	BaseMessage
	StartDatetime   string                  `json:"start_datetime"`
	Frame           int                     `json:"frame"`
	Step            int                     `json:"step"`
	SpeedMultiplier int                     `json:"speed_multiplier"`
	PersonaInitPos  map[string]domain.Coord `json:"persona_init_pos"`
	Clamped         bool                    `json:"clamped,omitempty"`
}

// FrameMessage carries the agent records of one movement frame.
type FrameMessage struct {
	BaseMessage
	Frame    int                              `json:"frame"`
	Movement map[string]domain.MovementRecord `json:"movement"`
}

// EndMessage is sent after the last frame.
type EndMessage struct {
	BaseMessage
	Frames int `json:"frames"`
}

// ErrorMessage reports a failure; the stream closes afterwards.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
