// Package replay positions playback of a compressed movement log at an
// arbitrary logical step.
package replay

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

const (
	// MinSpeed and MaxSpeed bound the speed level; the multiplier is 2^level.
	MinSpeed = 0
	MaxSpeed = 5
	// DefaultSpeed is the speed level used when none is requested.
	DefaultSpeed = 2
)

// Playback holds the parameters playback resumes from.
type Playback struct {
	StartDatetime string
	// Frame is the movement frame playback advances from.
	Frame int
	// Step is the logical step after clamping to at least 1.
	Step            int
	SpeedMultiplier int
	PersonaInitPos  map[string]domain.Coord
	// Clamped is set when the target frame was past the end of the recording.
	Clamped bool
}

// SpeedMultiplier returns 2^speed with speed clamped to [MinSpeed, MaxSpeed].
func SpeedMultiplier(speed int) int {
	speed = min(max(speed, MinSpeed), MaxSpeed)
	return 1 << speed
}

// Seek computes where playback of l resumes for a 1-based logical step.
// l is only read, so Seek may be called concurrently on a shared log.
// An agent without a movement at the target frame is reported as a
// *domain.IntegrityError.
func Seek(l *domain.CompressedMovementLog, step, speed int) (*Playback, error) {
	step = max(step, 1)
	p := &Playback{
		StartDatetime:   l.StartDatetime,
		Frame:           1,
		Step:            step,
		SpeedMultiplier: SpeedMultiplier(speed),
		PersonaInitPos:  make(map[string]domain.Coord, len(l.PersonaInitPos)),
	}
	for agent, pos := range l.PersonaInitPos {
		p.PersonaInitPos[agent] = pos
	}
	if step == 1 {
		return p, nil
	}

	minutes := l.Stride * float64(step-1)
	if math.Abs(minutes) > maxShiftMinutes {
		return nil, fmt.Errorf("%w: step %d shifts start_datetime by %g minutes", domain.ErrStepOutOfRange, step, minutes)
	}
	start, err := shiftDatetime(l.StartDatetime, time.Duration(minutes*float64(time.Minute)))
	if err != nil {
		return nil, err
	}
	p.StartDatetime = start

	framesPerStep := l.FramesPerStep
	if framesPerStep <= 0 {
		framesPerStep = 1
	}
	// Compared before multiplying so large steps cannot overflow.
	last := len(l.AllMovement) - 1
	frame := last
	if last >= 1 && step-1 <= (last-1)/framesPerStep {
		frame = (step-1)*framesPerStep + 1
	} else {
		p.Clamped = true
	}
	if frame < 0 {
		return nil, &domain.IntegrityError{Frame: frame, Reason: "movement log has no frames"}
	}
	p.Frame = frame

	records, ok := l.AllMovement[strconv.Itoa(frame)]
	if !ok {
		return nil, &domain.IntegrityError{Frame: frame, Reason: "frame missing from movement log"}
	}
	for agent := range l.PersonaInitPos {
		rec, ok := records[agent]
		if !ok {
			return nil, &domain.IntegrityError{Frame: frame, Agent: agent, Reason: "agent missing from frame"}
		}
		if !rec.HasMovement {
			return nil, &domain.IntegrityError{Frame: frame, Agent: agent, Reason: "record has no movement"}
		}
		p.PersonaInitPos[agent] = rec.Movement
	}
	return p, nil
}

// maxShiftMinutes is the largest start_datetime shift a time.Duration holds.
const maxShiftMinutes = float64(math.MaxInt64 / int64(time.Minute))

// datetimeLayouts are tried in order; the matching layout also formats the result.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

func shiftDatetime(s string, d time.Duration) (string, error) {
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.Add(d).Format(outputLayout(layout, s)), nil
	}
	return "", fmt.Errorf("invalid start_datetime %q", s)
}

// outputLayout fixes the fractional-second width of layout to the width used in s.
func outputLayout(layout, s string) string {
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return layout
	}
	n := 0
	for i+1+n < len(s) && s[i+1+n] >= '0' && s[i+1+n] <= '9' {
		n++
	}
	if n == 0 {
		return layout
	}
	frac := "." + strings.Repeat("0", n)
	for _, nines := range []string{".999999999", ".999999"} {
		if strings.Contains(layout, nines) {
			return strings.Replace(layout, nines, frac, 1)
		}
	}
	return strings.Replace(layout, "05", "05"+frac, 1)
}

// StepCount returns how many logical steps the recording spans.
func StepCount(l *domain.CompressedMovementLog) int {
	framesPerStep := max(l.FramesPerStep, 1)
	frames := len(l.AllMovement)
	if frames == 0 {
		return 0
	}
	return int(math.Ceil(float64(frames-1)/float64(framesPerStep))) + 1
}
