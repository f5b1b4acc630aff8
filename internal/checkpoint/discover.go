package checkpoint

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xiaot623/gogo/replay/internal/domain"
)

const (
	filePrefix = "simulate-"
	fileSuffix = ".json"
)

// IsCheckpointFile reports whether name follows the checkpoint naming convention.
func IsCheckpointFile(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

// Discover lists the checkpoint files of dir in lexicographic filename
// order. The returned warnings flag names whose lexicographic order differs
// from their numeric order.
func Discover(dir string) (files []string, warnings []string, err error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: checkpoints folder %s", domain.ErrMissingInput, dir)
		}
		return nil, nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", domain.ErrMissingInput, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !IsCheckpointFile(e.Name()) || !isRegularFile(dir, e) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if w := orderingWarning(names); w != "" {
		warnings = append(warnings, w)
	}

	files = make([]string, len(names))
	for i, name := range names {
		files[i] = filepath.Join(dir, name)
	}
	return files, warnings, nil
}

// isRegularFile reports whether e is a regular file or a symlink resolving to one.
func isRegularFile(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// orderingWarning compares lexicographic order with numeric-aware order and
// describes the first pair on which they disagree.
func orderingWarning(sorted []string) string {
	natural := append([]string(nil), sorted...)
	sort.SliceStable(natural, func(i, j int) bool {
		return naturalLess(natural[i], natural[j])
	})
	for i := range sorted {
		if sorted[i] != natural[i] {
			return fmt.Sprintf("checkpoint filenames do not sort chronologically: %s is ordered before %s; pad numeric parts with zeros",
				sorted[i], natural[i])
		}
	}
	return ""
}

// naturalLess orders strings treating runs of digits as numbers.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, restA := splitDigits(a)
			nb, restB := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			a, b = restA, restB
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func splitDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
