// Package domain defines the core domain models for checkpoint extraction and replay.
package domain

import "encoding/json"

// Document is an opaque key-value value produced by the simulator.
// It is forwarded as-is and never interpreted.
type Document map[string]any

// Coord is an ordered pair of tile coordinates. It may be empty.
type Coord []float64

// CheckpointSnapshot is one point-in-time record of all agents.
type CheckpointSnapshot struct {
	Timestamp string                `json:"time"`
	Step      int                   `json:"step"`
	Agents    map[string]AgentState `json:"agents"`
}

// AgentState is an agent's state as carried within a snapshot.
type AgentState struct {
	Status    Document        `json:"status"`
	Currently string          `json:"currently"`
	Action    json.RawMessage `json:"action"`
	Coord     Coord           `json:"coord"`
	Schedule  Document        `json:"schedule"`
	Chats     []any           `json:"chats"`
}

// Action is the structured part of an agent action used for display.
type Action struct {
	Event *ActionEvent `json:"event"`
}

// ActionEvent describes what an agent is doing and where.
type ActionEvent struct {
	Describe string `json:"describe"`
	// Address is ordered coarse-to-fine, e.g. [world, sector, arena, object].
	Address []string `json:"address"`
}
