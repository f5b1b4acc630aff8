// Package timeline derives display views and run summaries from agent timelines.
package timeline

import "github.com/xiaot623/gogo/replay/internal/domain"

// Simplify projects a full entry onto the fields the replay UI displays.
// It depends only on its argument.
func Simplify(e domain.AgentTimelineEntry) domain.SimplifiedEntry {
	out := domain.SimplifiedEntry{
		Timestamp:  e.Timestamp,
		Step:       e.Step,
		Status:     e.Status,
		Currently:  e.Currently,
		Coord:      e.Coord,
		ChatsCount: len(e.Chats),
	}
	if a := e.ParsedAction(); a != nil && a.Event != nil {
		out.ActionDescribe = a.Event.Describe
		if n := len(a.Event.Address); n > 0 {
			// Address runs coarse-to-fine; the last element is the most specific place.
			out.Location = a.Event.Address[n-1]
		}
	}
	return out
}

// SimplifyAll projects every entry of a timeline, preserving order.
func SimplifyAll(entries []domain.AgentTimelineEntry) []domain.SimplifiedEntry {
	out := make([]domain.SimplifiedEntry, len(entries))
	for i, e := range entries {
		out[i] = Simplify(e)
	}
	return out
}

// Full wraps entries in the persisted full-timeline envelope.
func Full(agent string, entries []domain.AgentTimelineEntry) domain.AgentTimeline {
	return domain.AgentTimeline{
		AgentName:  agent,
		TotalSteps: len(entries),
		Timeline:   entries,
	}
}

// Simplified wraps the projection of entries in the simplified envelope.
func Simplified(agent string, entries []domain.AgentTimelineEntry) domain.SimplifiedTimeline {
	return domain.SimplifiedTimeline{
		AgentName:  agent,
		TotalSteps: len(entries),
		Timeline:   SimplifyAll(entries),
	}
}
