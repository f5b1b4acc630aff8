package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/internal/repository"
	"github.com/xiaot623/gogo/replay/internal/timeline"
)

// AgentArtifact describes the files written for one agent.
type AgentArtifact struct {
	Name           string `json:"name"`
	TotalSteps     int    `json:"total_steps"`
	TimelinePath   string `json:"timeline_path"`
	SimplifiedPath string `json:"simplified_path"`
}

// ExtractReport is the outcome of an extraction.
type ExtractReport struct {
	ExtractionID     string                     `json:"extraction_id"`
	CheckpointsDir   string                     `json:"checkpoints_dir"`
	OutputDir        string                     `json:"output_dir"`
	TotalCheckpoints int                        `json:"total_checkpoints"`
	Agents           []AgentArtifact            `json:"agents"`
	Failures         []domain.ExtractionFailure `json:"failures,omitempty"`
	Warnings         []string                   `json:"warnings,omitempty"`
	SummaryPath      string                     `json:"summary_path"`
}

// Extract extracts the checkpoints of a configured simulation run.
func (s *Service) Extract(ctx context.Context, name string) (*ExtractReport, error) {
	if !validRunName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRunName, name)
	}
	return s.ExtractDir(ctx, name, s.config.CheckpointsDir(name), "")
}

// ExtractDir aggregates the checkpoints in checkpointsDir and writes per-agent
// timelines and the run summary to outputDir (default
// <checkpointsDir>/<AgentLogsDir>). Nothing is written when the directory is
// missing or holds no checkpoints.
func (s *Service) ExtractDir(ctx context.Context, name, checkpointsDir, outputDir string) (*ExtractReport, error) {
	if outputDir == "" {
		outputDir = filepath.Join(checkpointsDir, s.config.AgentLogsDir)
	}
	unlock := s.lockFor(filepath.Clean(outputDir))
	defer unlock()

	startedAt := time.Now()
	res, err := s.aggregator.Aggregate(ctx, checkpointsDir)
	if err != nil {
		return nil, err
	}

	report := &ExtractReport{
		ExtractionID:     "ext_" + uuid.New().String()[:8],
		CheckpointsDir:   checkpointsDir,
		OutputDir:        outputDir,
		TotalCheckpoints: res.TotalCheckpoints(),
		Warnings:         res.Warnings,
	}
	failed := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failed = append(failed, f.File)
		report.Failures = append(report.Failures, domain.ExtractionFailure{File: f.File, Error: f.Err.Error()})
	}

	store := repository.NewArtifacts(outputDir)
	written := make(map[string][]domain.AgentTimelineEntry, len(res.Agents))
	for _, agent := range res.Agents {
		entries := res.Timelines[agent]
		if !repository.ValidAgentName(agent) {
			w := fmt.Sprintf("skipping agent %q: name is not usable as a file name", agent)
			log.Printf("WARN: %s", w)
			report.Warnings = append(report.Warnings, w)
			continue
		}

		timelinePath, err := store.WriteTimeline(timeline.Full(agent, entries))
		if err != nil {
			return nil, fmt.Errorf("write timeline of %s: %w", agent, err)
		}
		simplifiedPath, err := store.WriteSimplified(timeline.Simplified(agent, entries))
		if err != nil {
			return nil, fmt.Errorf("write simplified timeline of %s: %w", agent, err)
		}
		written[agent] = entries
		report.Agents = append(report.Agents, AgentArtifact{
			Name:           agent,
			TotalSteps:     len(entries),
			TimelinePath:   timelinePath,
			SimplifiedPath: simplifiedPath,
		})
		log.Printf("Saved %s: %s (%d entries)", agent, timelinePath, len(entries))
	}

	summary := timeline.BuildSummary(timeline.SummaryInput{
		RunID:             report.ExtractionID,
		CheckpointsFolder: checkpointsDir,
		ExtractedAt:       time.Now(),
		TotalCheckpoints:  res.TotalCheckpoints(),
		FailedCheckpoints: failed,
	}, written)
	report.SummaryPath, err = store.WriteSummary(summary)
	if err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	log.Printf("Extraction %s complete: %d agents from %d checkpoints", report.ExtractionID, len(report.Agents), report.TotalCheckpoints)

	if s.catalog != nil {
		ext := &domain.Extraction{
			ExtractionID:     report.ExtractionID,
			RunName:          name,
			SourceDir:        checkpointsDir,
			OutputDir:        outputDir,
			TotalCheckpoints: report.TotalCheckpoints,
			AgentCount:       len(report.Agents),
			Failures:         report.Failures,
			Warnings:         report.Warnings,
			Agents:           summary.Agents,
			StartedAt:        startedAt,
			FinishedAt:       time.Now(),
		}
		if err := s.catalog.CreateExtraction(ctx, ext); err != nil {
			// Artifacts are already on disk; the catalog is only an index.
			log.Printf("ERROR: failed to record extraction %s: %v", ext.ExtractionID, err)
		}
	}

	return report, nil
}

// IsEmpty reports whether err means no checkpoints were found.
func IsEmpty(err error) bool {
	return errors.Is(err, domain.ErrEmptyInput)
}

// Extractions lists the recorded extractions of a run, newest first.
func (s *Service) Extractions(ctx context.Context, name string, limit int) ([]domain.Extraction, error) {
	if s.catalog == nil {
		return nil, nil
	}
	extractions, err := s.catalog.ListExtractions(ctx, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	return extractions, nil
}

// Extraction returns one recorded extraction, or nil when unknown.
func (s *Service) Extraction(ctx context.Context, extractionID string) (*domain.Extraction, error) {
	if s.catalog == nil {
		return nil, nil
	}
	ext, err := s.catalog.GetExtraction(ctx, extractionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}
	return ext, nil
}
