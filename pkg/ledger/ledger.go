// Package ledger is the append-only JSON-lines audit trail.
//
// One Append is one line is one JSON object terminated by \n. Lines are
// never rewritten. Both the orchestrator and the executor append to the
// same file; short appends in O_APPEND mode are safe on POSIX-like
// filesystems, and every append is flushed before returning.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Ledger appends audit records to a fixed path. Safe for concurrent use
// within a process.
type Ledger struct {
	mu    sync.Mutex
	path  string
	clock func() time.Time
}

// New returns a ledger writing to path. The file and its parent directory
// are created on first append.
func New(path string) *Ledger {
	return &Ledger{path: path, clock: time.Now}
}

// WithClock overrides the timestamp source for testing.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	l.clock = clock
	return l
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Append writes one record with the given kind and fields. A ts field in
// ISO-8601 UTC and the kind are always present; fields must not contain
// values encoding/json cannot marshal.
func (l *Ledger) Append(kind string, fields map[string]any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		rec[k] = v
	}
	rec["ts"] = l.clock().UTC().Format(time.RFC3339)
	rec["kind"] = kind

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("ledger: marshal %s record: %w", kind, err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("ledger: mkdir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("ledger: open: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("ledger: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("ledger: sync: %w", err)
	}
	return nil
}
