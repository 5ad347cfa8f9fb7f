package ledger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestAppendWritesOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "ledger.jsonl")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	led := New(path).WithClock(func() time.Time { return fixed })

	require.NoError(t, led.Append("tick", map[string]any{"note": "no_intents"}))
	require.NoError(t, led.Append("decision", map[string]any{"accepted": true, "reason": "ok"}))

	lines := readLines(t, path)
	require.Len(t, lines, 2)
	assert.Equal(t, "tick", lines[0]["kind"])
	assert.Equal(t, "no_intents", lines[0]["note"])
	assert.Equal(t, "2026-03-01T12:00:00Z", lines[0]["ts"])
	assert.Equal(t, "decision", lines[1]["kind"])
	assert.Equal(t, true, lines[1]["accepted"])
}

func TestAppendNeverRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	led := New(path)
	require.NoError(t, led.Append("a", nil))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, led.Append("b", nil))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second[:len(first)]))
}

func TestAppendConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.jsonl")
	led := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, led.Append("tick", map[string]any{"n": 1}))
		}()
	}
	wg.Wait()

	assert.Len(t, readLines(t, path), 20)
}
