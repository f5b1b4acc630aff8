package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// LoadMovementLog reads a compressed movement log. A log without
// frames_per_step takes defaultFramesPerStep.
func LoadMovementLog(path string, defaultFramesPerStep int) (*domain.CompressedMovementLog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: movement log %s", domain.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("open movement log: %w", err)
	}
	defer f.Close()

	var l domain.CompressedMovementLog
	if err := json.NewDecoder(f).Decode(&l); err != nil {
		return nil, fmt.Errorf("decode movement log %s: %w", path, err)
	}
	if l.FramesPerStep <= 0 {
		l.FramesPerStep = defaultFramesPerStep
	}
	if l.PersonaInitPos == nil {
		l.PersonaInitPos = map[string]domain.Coord{}
	}
	return &l, nil
}
