// Package checkpoint reads simulation checkpoints and aggregates them into
// per-agent timelines.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// rawSnapshot mirrors the checkpoint file. Pointers distinguish absent
// fields from zero values.
type rawSnapshot struct {
	Time   *string                       `json:"time"`
	Step   *int                          `json:"step"`
	Agents map[string]*domain.AgentState `json:"agents"`
}

// ReadSnapshot reads one checkpoint file. Any failure wraps
// domain.ErrCorruptSnapshot and names the file.
func ReadSnapshot(path string) (*domain.CheckpointSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptSnapshot, filepath.Base(path), err)
	}
	defer f.Close()

	snap, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// DecodeSnapshot parses a single checkpoint document.
// The agents object is required; time, step and every per-agent field
// default when absent.
func DecodeSnapshot(r io.Reader) (*domain.CheckpointSnapshot, error) {
	var raw rawSnapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", domain.ErrCorruptSnapshot)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", domain.ErrCorruptSnapshot)
	}
	if raw.Agents == nil {
		return nil, fmt.Errorf("%w: missing agents", domain.ErrCorruptSnapshot)
	}

	snap := &domain.CheckpointSnapshot{
		Agents: make(map[string]domain.AgentState, len(raw.Agents)),
	}
	if raw.Time != nil {
		snap.Timestamp = *raw.Time
	}
	if raw.Step != nil {
		snap.Step = *raw.Step
	}
	for name, state := range raw.Agents {
		if state == nil {
			return nil, fmt.Errorf("%w: agent %q is null", domain.ErrCorruptSnapshot, name)
		}
		snap.Agents[name] = withDefaults(*state)
	}
	return snap, nil
}

func withDefaults(s domain.AgentState) domain.AgentState {
	if s.Status == nil {
		s.Status = domain.Document{}
	}
	if len(s.Action) == 0 || string(s.Action) == "null" {
		s.Action = json.RawMessage("{}")
	}
	if s.Coord == nil {
		s.Coord = domain.Coord{}
	}
	if s.Schedule == nil {
		s.Schedule = domain.Document{}
	}
	if s.Chats == nil {
		s.Chats = []any{}
	}
	return s
}

// Entry builds the timeline entry for one agent of a snapshot.
func Entry(snap *domain.CheckpointSnapshot, state domain.AgentState) domain.AgentTimelineEntry {
	return domain.AgentTimelineEntry{
		Timestamp: snap.Timestamp,
		Step:      snap.Step,
		Status:    state.Status,
		Currently: state.Currently,
		Action:    state.Action,
		Coord:     state.Coord,
		Schedule:  state.Schedule,
		Chats:     state.Chats,
	}
}
