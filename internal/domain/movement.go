package domain

import (
	"bytes"
	"encoding/json"
)

// CompressedMovementLog is the frame-indexed movement recording of a run.
type CompressedMovementLog struct {
	StartDatetime  string           `json:"start_datetime"`
	Stride         float64          `json:"stride"`
	FramesPerStep  int              `json:"frames_per_step,omitempty"`
	SecPerStep     float64          `json:"sec_per_step,omitempty"`
	PersonaInitPos map[string]Coord `json:"persona_init_pos"`
	// AllMovement maps a stringified frame index to per-agent records.
	AllMovement map[string]map[string]MovementRecord `json:"all_movement"`
}

// MovementRecord is one agent's record in a frame. Fields other than
// movement are preserved verbatim.
type MovementRecord struct {
	Movement    Coord
	HasMovement bool
	raw         json.RawMessage
}

// UnmarshalJSON keeps the raw record and extracts the movement coordinate.
func (m *MovementRecord) UnmarshalJSON(data []byte) error {
	var fields struct {
		Movement *Coord `json:"movement"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	m.raw = append(m.raw[:0], data...)
	m.Movement = nil
	m.HasMovement = fields.Movement != nil
	if fields.Movement != nil {
		m.Movement = *fields.Movement
	}
	return nil
}

// MarshalJSON writes back the record as it was read.
func (m MovementRecord) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(m.raw)) > 0 {
		return m.raw, nil
	}
	if !m.HasMovement {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Coord{"movement": m.Movement})
}
