package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/replay"
)

// Default replay query values.
const (
	DefaultStep = 1
	DefaultZoom = 0.8
)

// ReplayQuery is a request to replay a simulation run.
type ReplayQuery struct {
	Name  string
	Step  int
	Speed int
	// Zoom and Scene are passed through to the renderer.
	Zoom  float64
	Scene string
	// Agents restricts the agent logs returned; empty means the defaults.
	Agents []string
}

// ReplayView carries everything the renderer needs to start playback.
type ReplayView struct {
	Name           string                                      `json:"name"`
	Step           int                                         `json:"step"`
	LogicalStep    int                                         `json:"logical_step"`
	TotalSteps     int                                         `json:"total_steps"`
	PlaySpeed      int                                         `json:"play_speed"`
	Zoom           float64                                     `json:"zoom"`
	Scene          string                                      `json:"scene"`
	StartDatetime  string                                      `json:"start_datetime"`
	Stride         float64                                     `json:"stride"`
	SecPerStep     float64                                     `json:"sec_per_step,omitempty"`
	FramesPerStep  int                                         `json:"frames_per_step"`
	PersonaNames   []string                                    `json:"persona_names"`
	PersonaInitPos map[string]domain.Coord                     `json:"persona_init_pos"`
	AllMovement    map[string]map[string]domain.MovementRecord `json:"all_movement"`
	AgentLogs      map[string]*domain.SimplifiedTimeline       `json:"agent_logs"`
}

type cachedMovement struct {
	modTime time.Time
	log     *domain.CompressedMovementLog
}

// Movement loads the compressed movement log of a run. Logs are cached
// until the file changes; callers must not modify the result.
func (s *Service) Movement(ctx context.Context, name string) (*domain.CompressedMovementLog, error) {
	if !validRunName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunName, name)
	}
	path := s.config.MovementPath(name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: the data file doesn't exist: %s", domain.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("stat movement log: %w", err)
	}

	s.movementMu.Lock()
	defer s.movementMu.Unlock()
	if c, ok := s.movementCache[path]; ok && c.modTime.Equal(info.ModTime()) {
		return c.log, nil
	}
	l, err := replay.LoadMovementLog(path, s.config.FramesPerStep)
	if err != nil {
		return nil, err
	}
	s.movementCache[path] = cachedMovement{modTime: info.ModTime(), log: l}
	return l, nil
}

// Seek positions playback of a run at a logical step.
func (s *Service) Seek(ctx context.Context, name string, step, speed int) (*domain.CompressedMovementLog, *replay.Playback, error) {
	l, err := s.Movement(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	p, err := replay.Seek(l, step, speed)
	if err != nil {
		return nil, nil, fmt.Errorf("seek %s to step %d: %w", name, step, err)
	}
	return l, p, nil
}

// Replay builds the playback parameters and agent logs for a replay query.
func (s *Service) Replay(ctx context.Context, q ReplayQuery) (*ReplayView, error) {
	l, p, err := s.Seek(ctx, q.Name, q.Step, q.Speed)
	if err != nil {
		return nil, err
	}
	logs, err := s.AgentLogs(ctx, q.Name, q.Agents)
	if err != nil {
		return nil, err
	}

	return &ReplayView{
		Name:           q.Name,
		Step:           p.Frame,
		LogicalStep:    p.Step,
		TotalSteps:     replay.StepCount(l),
		PlaySpeed:      p.SpeedMultiplier,
		Zoom:           q.Zoom,
		Scene:          q.Scene,
		StartDatetime:  p.StartDatetime,
		Stride:         l.Stride,
		SecPerStep:     l.SecPerStep,
		FramesPerStep:  l.FramesPerStep,
		PersonaNames:   s.personaNames(l),
		PersonaInitPos: p.PersonaInitPos,
		AllMovement:    l.AllMovement,
		AgentLogs:      logs,
	}, nil
}

// personaNames returns the configured personas, or the agents of the log.
func (s *Service) personaNames(l *domain.CompressedMovementLog) []string {
	if len(s.personas) > 0 {
		return s.personas
	}
	names := make([]string, 0, len(l.PersonaInitPos))
	for name := range l.PersonaInitPos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
