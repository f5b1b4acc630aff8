package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

const (
	timelineSuffix   = "_timeline.json"
	simplifiedSuffix = "_simplified.json"
	summaryFile      = "summary.json"
)

// Artifacts reads and writes the timeline files of one run.
type Artifacts struct {
	dir string
}

// NewArtifacts returns the artifact set rooted at dir.
func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{dir: dir}
}

// Dir returns the artifact directory.
func (a *Artifacts) Dir() string {
	return a.dir
}

// ValidAgentName reports whether name can be used as a file name prefix.
func ValidAgentName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

// TimelinePath returns the full-timeline file of an agent.
func (a *Artifacts) TimelinePath(agent string) string {
	return filepath.Join(a.dir, agent+timelineSuffix)
}

// SimplifiedPath returns the simplified-timeline file of an agent.
func (a *Artifacts) SimplifiedPath(agent string) string {
	return filepath.Join(a.dir, agent+simplifiedSuffix)
}

// SummaryPath returns the summary file.
func (a *Artifacts) SummaryPath() string {
	return filepath.Join(a.dir, summaryFile)
}

// WriteTimeline writes the full timeline of an agent and returns its path.
func (a *Artifacts) WriteTimeline(t domain.AgentTimeline) (string, error) {
	if !ValidAgentName(t.AgentName) {
		return "", fmt.Errorf("invalid agent name %q", t.AgentName)
	}
	path := a.TimelinePath(t.AgentName)
	return path, a.writeJSON(path, t)
}

// WriteSimplified writes the simplified timeline of an agent and returns its path.
func (a *Artifacts) WriteSimplified(t domain.SimplifiedTimeline) (string, error) {
	if !ValidAgentName(t.AgentName) {
		return "", fmt.Errorf("invalid agent name %q", t.AgentName)
	}
	path := a.SimplifiedPath(t.AgentName)
	return path, a.writeJSON(path, t)
}

// WriteSummary writes the run summary and returns its path.
func (a *Artifacts) WriteSummary(s domain.RunSummary) (string, error) {
	path := a.SummaryPath()
	return path, a.writeJSON(path, s)
}

// ReadSimplified loads the simplified timeline of an agent. It returns nil
// when the agent has no timeline.
func (a *Artifacts) ReadSimplified(agent string) (*domain.SimplifiedTimeline, error) {
	if !ValidAgentName(agent) {
		return nil, nil
	}
	var t domain.SimplifiedTimeline
	ok, err := readJSON(a.SimplifiedPath(agent), &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// ReadTimeline loads the full timeline of an agent. It returns nil when absent.
func (a *Artifacts) ReadTimeline(agent string) (*domain.AgentTimeline, error) {
	if !ValidAgentName(agent) {
		return nil, nil
	}
	var t domain.AgentTimeline
	ok, err := readJSON(a.TimelinePath(agent), &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// ReadSummary loads the run summary. It returns nil when absent.
func (a *Artifacts) ReadSummary() (*domain.RunSummary, error) {
	var s domain.RunSummary
	ok, err := readJSON(a.SummaryPath(), &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// writeJSON writes v through a temporary file so readers never observe a
// partially written artifact.
func (a *Artifacts) writeJSON(path string, v any) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", a.dir, err)
	}
	tmp, err := os.CreateTemp(a.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
