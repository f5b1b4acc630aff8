package replay

import (
	"sort"
	"strconv"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

// FrameIndices returns the numeric frame indices of l at or after from, ascending.
// Keys that are not integers are ignored.
func FrameIndices(l *domain.CompressedMovementLog, from int) []int {
	indices := make([]int, 0, len(l.AllMovement))
	for key := range l.AllMovement {
		i, err := strconv.Atoi(key)
		if err != nil || i < from {
			continue
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// Frame returns the records of frame i.
func Frame(l *domain.CompressedMovementLog, i int) (map[string]domain.MovementRecord, bool) {
	records, ok := l.AllMovement[strconv.Itoa(i)]
	return records, ok
}
