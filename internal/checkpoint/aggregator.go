package checkpoint

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// DefaultWorkers bounds concurrent checkpoint reads when none is configured.
const DefaultWorkers = 4

// FileFailure records a checkpoint that was skipped.
type FileFailure struct {
	File string
	Err  error
}

// Result is the outcome of one aggregation pass.
type Result struct {
	Dir   string
	Files []string
	// Timelines holds one entry per checkpoint the agent appeared in, in
	// file discovery order.
	Timelines map[string][]domain.AgentTimelineEntry
	// Agents lists agent names in sorted order.
	Agents   []string
	Failures []FileFailure
	Warnings []string
}

// TotalCheckpoints counts every discovered file, including skipped ones.
func (r *Result) TotalCheckpoints() int {
	return len(r.Files)
}

// Aggregator turns a checkpoint directory into per-agent timelines.
type Aggregator struct {
	workers int
	read    func(path string) (*domain.CheckpointSnapshot, error)
}

// NewAggregator creates an aggregator reading up to workers files at once.
func NewAggregator(workers int) *Aggregator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Aggregator{workers: workers, read: ReadSnapshot}
}

type readResult struct {
	snap *domain.CheckpointSnapshot
	err  error
}

// Aggregate discovers and reads every checkpoint in dir. A checkpoint that
// fails to read is logged, recorded in Result.Failures and skipped. When
// no checkpoint exists it returns domain.ErrEmptyInput.
func (a *Aggregator) Aggregate(ctx context.Context, dir string) (*Result, error) {
	files, warnings, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Printf("WARN: %s", w)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrEmptyInput, dir)
	}
	log.Printf("Found %d checkpoint files in %s", len(files), dir)

	// Reads run in parallel; each lands in its own slot so the merge below
	// sees them in discovery order.
	results := make([]readResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			snap, err := a.read(path)
			results[i] = readResult{snap: snap, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Dir:       dir,
		Files:     files,
		Timelines: make(map[string][]domain.AgentTimelineEntry),
		Warnings:  warnings,
	}

	lastStep, lastFile := 0, ""
	for i, r := range results {
		name := filepath.Base(files[i])
		if r.err != nil {
			log.Printf("ERROR: failed to process %s: %v", files[i], r.err)
			res.Failures = append(res.Failures, FileFailure{File: name, Err: r.err})
			continue
		}
		if lastFile != "" && r.snap.Step < lastStep {
			w := fmt.Sprintf("step decreases from %d (%s) to %d (%s)", lastStep, lastFile, r.snap.Step, name)
			log.Printf("WARN: %s", w)
			res.Warnings = append(res.Warnings, w)
		}
		lastStep, lastFile = r.snap.Step, name

		for agent, state := range r.snap.Agents {
			res.Timelines[agent] = append(res.Timelines[agent], Entry(r.snap, state))
		}
		log.Printf("Processed %s (time: %s)", name, r.snap.Timestamp)
	}

	res.Agents = make([]string, 0, len(res.Timelines))
	for agent := range res.Timelines {
		res.Agents = append(res.Agents, agent)
	}
	sort.Strings(res.Agents)

	return res, nil
}
