package repository

import (
	"context"
	"testing"
	"time"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatalf("failed to create catalog: %v", err)
	}
	return c
}

func TestSQLiteCatalogCreateAndGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	defer c.Close()

	started := time.Now().Add(-time.Second).Truncate(time.Second).UTC()
	ext := &domain.Extraction{
		ExtractionID:     "ext_1",
		RunName:          "sim",
		SourceDir:        "results/checkpoints/sim",
		OutputDir:        "results/checkpoints/sim/agent_logs",
		TotalCheckpoints: 3,
		AgentCount:       2,
		Failures:         []domain.ExtractionFailure{{File: "simulate-2.json", Error: "corrupt snapshot"}},
		Warnings:         []string{"step decreases"},
		Agents: map[string]domain.AgentSummary{
			"Isabella": {TotalSteps: 2, FirstTimestamp: "t1", LastTimestamp: "t3"},
			"Klaus":    {TotalSteps: 1, FirstTimestamp: "t1", LastTimestamp: "t1"},
		},
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := c.CreateExtraction(ctx, ext); err != nil {
		t.Fatalf("CreateExtraction failed: %v", err)
	}

	got, err := c.GetExtraction(ctx, "ext_1")
	if err != nil {
		t.Fatalf("GetExtraction failed: %v", err)
	}
	if got == nil {
		t.Fatalf("expected extraction")
	}
	if got.RunName != "sim" || got.TotalCheckpoints != 3 || got.AgentCount != 2 {
		t.Fatalf("unexpected extraction: %+v", got)
	}
	if len(got.Failures) != 1 || got.Failures[0].File != "simulate-2.json" {
		t.Fatalf("unexpected failures: %+v", got.Failures)
	}
	if len(got.Warnings) != 1 {
		t.Fatalf("unexpected warnings: %+v", got.Warnings)
	}
	if got.Agents["Isabella"].LastTimestamp != "t3" || len(got.Agents) != 2 {
		t.Fatalf("unexpected agents: %+v", got.Agents)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected started_at: %v", got.StartedAt)
	}
}

func TestSQLiteCatalogGetMissing(t *testing.T) {
	c := newTestCatalog(t)
	defer c.Close()

	got, err := c.GetExtraction(context.Background(), "ext_missing")
	if err != nil {
		t.Fatalf("GetExtraction failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestSQLiteCatalogListNewestFirst(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	defer c.Close()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"ext_a", "ext_b", "ext_c"} {
		ext := &domain.Extraction{
			ExtractionID: id,
			RunName:      "sim",
			SourceDir:    "in",
			OutputDir:    "out",
			Agents:       map[string]domain.AgentSummary{"Klaus": {TotalSteps: i}},
			StartedAt:    base.Add(time.Duration(i) * time.Minute),
			FinishedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := c.CreateExtraction(ctx, ext); err != nil {
			t.Fatalf("CreateExtraction failed: %v", err)
		}
	}
	other := &domain.Extraction{ExtractionID: "ext_other", RunName: "other", SourceDir: "in", OutputDir: "out", StartedAt: base, FinishedAt: base}
	if err := c.CreateExtraction(ctx, other); err != nil {
		t.Fatalf("CreateExtraction failed: %v", err)
	}

	list, err := c.ListExtractions(ctx, "sim", 2)
	if err != nil {
		t.Fatalf("ListExtractions failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 extractions, got %d", len(list))
	}
	if list[0].ExtractionID != "ext_c" || list[1].ExtractionID != "ext_b" {
		t.Fatalf("unexpected order: %s, %s", list[0].ExtractionID, list[1].ExtractionID)
	}
	if list[0].Agents["Klaus"].TotalSteps != 2 {
		t.Fatalf("expected agent details loaded: %+v", list[0].Agents)
	}

	all, err := c.ListExtractions(ctx, "sim", 0)
	if err != nil {
		t.Fatalf("ListExtractions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 extractions, got %d", len(all))
	}
}

func TestSQLiteCatalogDuplicateID(t *testing.T) {
	ctx := context.Background()
	c := newTestCatalog(t)
	defer c.Close()

	ext := &domain.Extraction{ExtractionID: "ext_1", RunName: "sim", SourceDir: "in", OutputDir: "out", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := c.CreateExtraction(ctx, ext); err != nil {
		t.Fatalf("CreateExtraction failed: %v", err)
	}
	if err := c.CreateExtraction(ctx, ext); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
