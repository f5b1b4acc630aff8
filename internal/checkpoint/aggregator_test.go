package checkpoint

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/tests/helpers"
)

func writeCheckpoint(t *testing.T, dir string, step int, agents ...string) {
	t.Helper()
	states := make(map[string]any, len(agents))
	for _, a := range agents {
		states[a] = helpers.AgentState("idle", "idle", []string{"town", "home"}, []float64{float64(step), 1}, 0)
	}
	name := fmt.Sprintf("simulate-%04d.json", step)
	helpers.WriteJSON(t, dir, name, helpers.Checkpoint(fmt.Sprintf("t%04d", step), step, states))
}

func TestAggregateBuildsTimelines(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, 1, "Isabella", "Klaus")
	writeCheckpoint(t, dir, 2, "Isabella", "Klaus", "Maria")
	writeCheckpoint(t, dir, 3, "Isabella")

	res, err := NewAggregator(2).Aggregate(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalCheckpoints())
	assert.Empty(t, res.Failures)
	assert.Equal(t, []string{"Isabella", "Klaus", "Maria"}, res.Agents)
	assert.Len(t, res.Timelines, len(res.Agents))

	isabella := res.Timelines["Isabella"]
	require.Len(t, isabella, 3)
	assert.Equal(t, "t0001", isabella[0].Timestamp)
	assert.Equal(t, "t0003", isabella[2].Timestamp)
	assert.Len(t, res.Timelines["Klaus"], 2)
	assert.Len(t, res.Timelines["Maria"], 1)
	assert.Equal(t, 2, res.Timelines["Maria"][0].Step)
}

func TestAggregatePreservesDiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	for step := 1; step <= 40; step++ {
		writeCheckpoint(t, dir, step, "Isabella")
	}

	res, err := NewAggregator(8).Aggregate(context.Background(), dir)
	require.NoError(t, err)

	entries := res.Timelines["Isabella"]
	require.Len(t, entries, 40)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Step, entries[i].Step)
		assert.Equal(t, i+1, entries[i].Step)
	}
	assert.Empty(t, res.Warnings)
}

func TestAggregateSkipsCorruptCheckpoint(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, 1, "Isabella")
	helpers.WriteFile(t, dir, "simulate-0002.json", `{"time": "t0002", "agents": {`)
	writeCheckpoint(t, dir, 3, "Isabella")
	helpers.WriteFile(t, dir, "simulate-0004.json", `{"time": "t0004", "step": 4}`)

	res, err := NewAggregator(0).Aggregate(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalCheckpoints())
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "simulate-0002.json", res.Failures[0].File)
	assert.ErrorIs(t, res.Failures[0].Err, domain.ErrCorruptSnapshot)
	assert.Equal(t, "simulate-0004.json", res.Failures[1].File)

	entries := res.Timelines["Isabella"]
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Step)
	assert.Equal(t, 3, entries[1].Step)
}

func TestAggregateEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteFile(t, dir, "notes.json", `{}`)

	res, err := NewAggregator(2).Aggregate(context.Background(), dir)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestAggregateMissingDirectory(t *testing.T) {
	_, err := NewAggregator(2).Aggregate(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestAggregateWarnsOnStepDecrease(t *testing.T) {
	dir := t.TempDir()
	helpers.WriteJSON(t, dir, "simulate-a.json", helpers.Checkpoint("t1", 5, map[string]any{"Klaus": map[string]any{}}))
	helpers.WriteJSON(t, dir, "simulate-b.json", helpers.Checkpoint("t2", 3, map[string]any{"Klaus": map[string]any{}}))

	res, err := NewAggregator(2).Aggregate(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "simulate-b.json")
}

func TestAggregateCancelled(t *testing.T) {
	dir := t.TempDir()
	writeCheckpoint(t, dir, 1, "Isabella")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAggregator(1).Aggregate(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
