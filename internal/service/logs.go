package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/repository"
)

func (s *Service) artifacts(name string) *repository.Artifacts {
	return repository.NewArtifacts(s.config.AgentLogsPath(name))
}

// AgentLogs returns the simplified timeline of each agent of a run. Agents
// are taken from agents, then the configured personas, then the run
// summary. Agents without a timeline are left out; a run without logs
// yields an empty map.
func (s *Service) AgentLogs(ctx context.Context, name string, agents []string) (map[string]*domain.SimplifiedTimeline, error) {
	if !validRunName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunName, name)
	}
	store := s.artifacts(name)

	if len(agents) == 0 {
		agents = s.personas
	}
	if len(agents) == 0 {
		summary, err := store.ReadSummary()
		if err != nil {
			return nil, fmt.Errorf("failed to read summary: %w", err)
		}
		if summary != nil {
			for agent := range summary.Agents {
				agents = append(agents, agent)
			}
			sort.Strings(agents)
		}
	}

	logs := make(map[string]*domain.SimplifiedTimeline, len(agents))
	for _, agent := range agents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := store.ReadSimplified(agent)
		if err != nil {
			return nil, fmt.Errorf("failed to read logs of %s: %w", agent, err)
		}
		if t != nil {
			logs[agent] = t
		}
	}
	return logs, nil
}

// Summary returns the extraction summary of a run, or nil when none exists.
func (s *Service) Summary(ctx context.Context, name string) (*domain.RunSummary, error) {
	if !validRunName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunName, name)
	}
	summary, err := s.artifacts(name).ReadSummary()
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	return summary, nil
}

// Timeline returns the full timeline of one agent, or nil when none exists.
func (s *Service) Timeline(ctx context.Context, name, agent string) (*domain.AgentTimeline, error) {
	if !validRunName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunName, name)
	}
	t, err := s.artifacts(name).ReadTimeline(agent)
	if err != nil {
		return nil, fmt.Errorf("failed to read timeline of %s: %w", agent, err)
	}
	return t, nil
}
