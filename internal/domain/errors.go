package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput is returned when a requested directory or file does not exist.
	ErrMissingInput = errors.New("missing input")
	// ErrCorruptSnapshot marks a checkpoint that cannot be read or lacks required structure.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	// ErrEmptyInput is returned when no checkpoint files were found.
	ErrEmptyInput = errors.New("no checkpoint files found")
	// ErrStepOutOfRange is returned for a seek step too large to represent.
	ErrStepOutOfRange = errors.New("step out of range")
	// ErrDataIntegrity marks a movement log that lacks data the replay depends on.
	ErrDataIntegrity = errors.New("data integrity fault")
)

// IntegrityError reports an agent position that cannot be resolved at a frame.
type IntegrityError struct {
	Frame  int
	Agent  string
	Reason string
}

func (e *IntegrityError) Error() string {
	if e.Agent == "" {
		return fmt.Sprintf("frame %d: %s", e.Frame, e.Reason)
	}
	return fmt.Sprintf("frame %d, agent %q: %s", e.Frame, e.Agent, e.Reason)
}

func (e *IntegrityError) Unwrap() error {
	return ErrDataIntegrity
}
