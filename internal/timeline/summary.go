package timeline

import (
	"time"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// SummaryInput carries the extraction metadata a RunSummary reports.
type SummaryInput struct {
	RunID             string
	CheckpointsFolder string
	ExtractedAt       time.Time
	TotalCheckpoints  int
	FailedCheckpoints []string
}

// BuildSummary derives the run summary from the agent timelines.
func BuildSummary(in SummaryInput, timelines map[string][]domain.AgentTimelineEntry) domain.RunSummary {
	s := domain.RunSummary{
		RunID:             in.RunID,
		CheckpointsFolder: in.CheckpointsFolder,
		ExtractionTime:    in.ExtractedAt.Format(domain.ExtractionTimeLayout),
		TotalCheckpoints:  in.TotalCheckpoints,
		FailedCheckpoints: in.FailedCheckpoints,
		Agents:            make(map[string]domain.AgentSummary, len(timelines)),
	}
	for agent, entries := range timelines {
		as := domain.AgentSummary{TotalSteps: len(entries)}
		if len(entries) > 0 {
			as.FirstTimestamp = entries[0].Timestamp
			as.LastTimestamp = entries[len(entries)-1].Timestamp
		}
		s.Agents[agent] = as
	}
	return s
}
