package replay

import (
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/replay/internal/domain"
	"github.com/xiaot623/gogo/replay/tests/helpers"
)

var initPos = map[string][]float64{
	"Isabella": {10, 20},
	"Klaus":    {30, 40},
}

func newLog(t *testing.T, start string, stride, framesPerStep, frames int) *domain.CompressedMovementLog {
	t.Helper()
	data, err := json.Marshal(helpers.MovementLog(start, stride, framesPerStep, frames, initPos))
	require.NoError(t, err)
	var l domain.CompressedMovementLog
	require.NoError(t, json.Unmarshal(data, &l))
	return &l
}

func TestSeekToStepThree(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 12)

	p, err := Seek(l, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T08:30:00", p.StartDatetime)
	assert.Equal(t, 9, p.Frame)
	assert.Equal(t, 3, p.Step)
	assert.Equal(t, 4, p.SpeedMultiplier)
	assert.False(t, p.Clamped)
	assert.Equal(t, domain.Coord{19, 20}, p.PersonaInitPos["Isabella"])
	assert.Equal(t, domain.Coord{39, 40}, p.PersonaInitPos["Klaus"])
}

func TestSeekStepOneIsUnchanged(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 12)

	for _, step := range []int{1, 0, -7} {
		p, err := Seek(l, step, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Step)
		assert.Equal(t, 1, p.Frame)
		assert.Equal(t, "2024-01-01T08:00:00", p.StartDatetime)
		assert.Equal(t, l.PersonaInitPos, p.PersonaInitPos)
	}

	first, err := Seek(l, 1, 0)
	require.NoError(t, err)
	second, err := Seek(l, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSeekPastEndClampsToLastFrame(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 10, 4, 12)

	p, err := Seek(l, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, p.Frame)
	assert.True(t, p.Clamped)
	assert.Equal(t, domain.Coord{21, 20}, p.PersonaInitPos["Isabella"])
	// The start time follows the requested step, not the clamped frame.
	assert.Equal(t, "2024-01-02T00:30:00", p.StartDatetime)
}

func TestSeekHugeStepClampsWithoutOverflow(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 0, 4, 12)

	for _, step := range []int{math.MaxInt64, 1<<62 + 1, math.MaxInt64 / 4} {
		p, err := Seek(l, step, 2)
		require.NoError(t, err, "step %d", step)
		assert.Equal(t, 11, p.Frame, "step %d", step)
		assert.True(t, p.Clamped, "step %d", step)
		assert.Equal(t, step, p.Step)
		assert.Equal(t, "2024-01-01T08:00:00", p.StartDatetime)
		assert.Equal(t, domain.Coord{21, 20}, p.PersonaInitPos["Isabella"])
	}
}

func TestSeekHugeStepTimeShiftOutOfRange(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 10, 4, 12)

	for _, step := range []int{math.MaxInt64, 1<<62 + 1, 1 << 40} {
		_, err := Seek(l, step, 2)
		assert.ErrorIs(t, err, domain.ErrStepOutOfRange, "step %d", step)
	}

	// About 190 years of ten-minute steps still fits.
	p, err := Seek(l, 10_000_000, 2)
	require.NoError(t, err)
	assert.True(t, p.Clamped)
	assert.Equal(t, 11, p.Frame)
}

func TestSeekLastFrameBoundary(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 10, 5, 12)

	p, err := Seek(l, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, p.Frame)
	assert.False(t, p.Clamped)

	p, err = Seek(l, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 11, p.Frame)
	assert.True(t, p.Clamped)
}

func TestSeekDoesNotMutateLog(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 12)

	_, err := Seek(l, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T08:00:00", l.StartDatetime)
	assert.Equal(t, domain.Coord{10, 20}, l.PersonaInitPos["Isabella"])
}

func TestSeekConcurrent(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 40)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := Seek(l, i+1, i)
			if err == nil && p.Step != i+1 {
				err = errors.New("wrong step")
			}
			errs[i] = err
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestSeekMissingAgentIsIntegrityFault(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 12)
	delete(l.AllMovement["9"], "Klaus")

	_, err := Seek(l, 3, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	var integrity *domain.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "Klaus", integrity.Agent)
	assert.Equal(t, 9, integrity.Frame)
}

func TestSeekRecordWithoutMovement(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 12)
	var rec domain.MovementRecord
	require.NoError(t, json.Unmarshal([]byte(`{"description": "idle"}`), &rec))
	l.AllMovement["9"]["Isabella"] = rec

	_, err := Seek(l, 3, 2)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestSeekMissingFrame(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 15, 4, 12)
	delete(l.AllMovement, "5")

	_, err := Seek(l, 2, 2)
	var integrity *domain.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, 5, integrity.Frame)
	assert.Empty(t, integrity.Agent)
}

func TestSeekEmptyLog(t *testing.T) {
	l := &domain.CompressedMovementLog{
		StartDatetime:  "2024-01-01T08:00:00",
		Stride:         10,
		FramesPerStep:  1,
		PersonaInitPos: map[string]domain.Coord{"Klaus": {1, 1}},
	}

	p, err := Seek(l, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Coord{1, 1}, p.PersonaInitPos["Klaus"])

	_, err = Seek(l, 2, 2)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestSeekZeroFramesPerStep(t *testing.T) {
	l := newLog(t, "2024-01-01T08:00:00", 10, 0, 12)

	p, err := Seek(l, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, p.Frame)
}

func TestSeekDatetimeLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-01-01T08:00:00":           "2024-01-01T08:30:00",
		"2024-01-01T08:00:00.5":         "2024-01-01T08:30:00.5",
		"2024-01-01T08:00:00.500000":    "2024-01-01T08:30:00.500000",
		"2024-01-01T08:00:00.120+08:00": "2024-01-01T08:30:00.120+08:00",
		"2024-01-01T08:00:00+08:00":     "2024-01-01T08:30:00+08:00",
		"2024-01-01T08:00:00Z":          "2024-01-01T08:30:00Z",
		"2024-01-01 08:00:00":           "2024-01-01 08:30:00",
		"2024-01-01 08:00:00.250":       "2024-01-01 08:30:00.250",
		"2024-01-01T08:00":              "2024-01-01T08:30",
	}
	for in, want := range cases {
		l := newLog(t, in, 15, 4, 12)
		p, err := Seek(l, 3, 2)
		require.NoError(t, err, in)
		assert.Equal(t, want, p.StartDatetime, in)
	}

	l := newLog(t, "January 1st", 15, 4, 12)
	_, err := Seek(l, 3, 2)
	assert.Error(t, err)
}

func TestSpeedMultiplier(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 2, 2: 4, 3: 8, 4: 16, 5: 32, 6: 32, 100: 32}
	for speed, want := range cases {
		assert.Equal(t, want, SpeedMultiplier(speed), "speed %d", speed)
	}
}

func TestStepCount(t *testing.T) {
	assert.Equal(t, 4, StepCount(newLog(t, "2024-01-01T08:00:00", 15, 4, 12)))
	assert.Equal(t, 0, StepCount(&domain.CompressedMovementLog{}))
}
