package helpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xiaot623/gogo/replay/internal/repository"
)

func NewTestSQLiteCatalog(t *testing.T) *repository.SQLiteCatalog {
	t.Helper()

	c, err := repository.NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite catalog: %v", err)
	}

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

// WriteJSON marshals v into dir/name, creating dir as needed.
func WriteJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFile writes raw content into dir/name.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Checkpoint builds a checkpoint document from agent entries built by AgentState.
func Checkpoint(time string, step int, agents map[string]any) map[string]any {
	return map[string]any{
		"time":   time,
		"step":   step,
		"agents": agents,
	}
}

// AgentState builds one agent entry of a checkpoint. The agent is placed at
// coord, performs describe at address and carries chats chat turns.
func AgentState(currently, describe string, address []string, coord []float64, chats int) map[string]any {
	chatList := make([]any, chats)
	for i := range chatList {
		chatList[i] = []string{"other", "hello"}
	}
	return map[string]any{
		"status":    map[string]any{"poignancy": 1},
		"currently": currently,
		"action": map[string]any{
			"event": map[string]any{
				"describe": describe,
				"address":  address,
			},
		},
		"coord":    coord,
		"schedule": map[string]any{"daily": []string{"sleep"}},
		"chats":    chatList,
	}
}

// MovementLog builds a movement log with frames 0..frames-1, in which each
// agent of init moves one tile right per frame.
func MovementLog(start string, stride, framesPerStep, frames int, init map[string][]float64) map[string]any {
	all := make(map[string]any, frames)
	for i := 0; i < frames; i++ {
		frame := make(map[string]any, len(init))
		for agent, pos := range init {
			frame[agent] = map[string]any{
				"movement":     []float64{pos[0] + float64(i), pos[1]},
				"pronunciatio": "🚶",
				"description":  "walking",
			}
		}
		all[strconv.Itoa(i)] = frame
	}
	return map[string]any{
		"start_datetime":   start,
		"stride":           stride,
		"frames_per_step":  framesPerStep,
		"sec_per_step":     10,
		"persona_init_pos": init,
		"all_movement":     all,
	}
}
