package domain

import "encoding/json"

// AgentTimelineEntry is one agent's state in one checkpoint.
type AgentTimelineEntry struct {
	Timestamp string          `json:"timestamp"`
	Step      int             `json:"step"`
	Status    Document        `json:"status"`
	Currently string          `json:"currently"`
	Action    json.RawMessage `json:"action"`
	Coord     Coord           `json:"coord"`
	Schedule  Document        `json:"schedule"`
	Chats     []any           `json:"chats"`
}

// ParsedAction decodes the raw action. It returns nil when the action is
// absent or does not have the expected shape.
func (e AgentTimelineEntry) ParsedAction() *Action {
	if len(e.Action) == 0 {
		return nil
	}
	var a Action
	if err := json.Unmarshal(e.Action, &a); err != nil {
		return nil
	}
	return &a
}

// SimplifiedEntry is the display-oriented projection of an AgentTimelineEntry.
type SimplifiedEntry struct {
	Timestamp      string   `json:"timestamp"`
	Step           int      `json:"step"`
	Status         Document `json:"status"`
	Currently      string   `json:"currently"`
	ActionDescribe string   `json:"action_describe"`
	Location       string   `json:"location"`
	Coord          Coord    `json:"coord"`
	ChatsCount     int      `json:"chats_count"`
}

// AgentTimeline is the persisted envelope of a full timeline.
type AgentTimeline struct {
	AgentName  string               `json:"agent_name"`
	TotalSteps int                  `json:"total_steps"`
	Timeline   []AgentTimelineEntry `json:"timeline"`
}

// SimplifiedTimeline is the persisted envelope of a simplified timeline.
type SimplifiedTimeline struct {
	AgentName  string            `json:"agent_name"`
	TotalSteps int               `json:"total_steps"`
	Timeline   []SimplifiedEntry `json:"timeline"`
}

// AgentSummary is the per-agent part of a RunSummary.
type AgentSummary struct {
	TotalSteps     int    `json:"total_steps"`
	FirstTimestamp string `json:"first_timestamp"`
	LastTimestamp  string `json:"last_timestamp"`
}

// RunSummary describes one extraction run.
type RunSummary struct {
	RunID             string                  `json:"run_id,omitempty"`
	CheckpointsFolder string                  `json:"checkpoints_folder"`
	ExtractionTime    string                  `json:"extraction_time"`
	TotalCheckpoints  int                     `json:"total_checkpoints"`
	FailedCheckpoints []string                `json:"failed_checkpoints,omitempty"`
	Agents            map[string]AgentSummary `json:"agents"`
}

// ExtractionTimeLayout formats RunSummary.ExtractionTime.
const ExtractionTimeLayout = "20060102-15:04:05"
