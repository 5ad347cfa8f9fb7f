// Package queue is the durable store for per-domain action queues: JSON
// arrays of queue items, replaced atomically and serialized per process.
//
// Cross-process coordination with the executor is optimistic: every writer
// reloads the file under its lock and applies its mutations to the fresh
// items, so an append racing a status flip loses neither.
package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/quietdesk/companion/pkg/contracts"
)

// Queue file locations relative to the artifacts directory.
const (
	SendQueueFile  = "messages/send_queue.json"
	EventQueueFile = "calendar/event_queue.json"
	PostQueueFile  = "forum/post_queue.json"
)

// SendQueuePath returns the send queue path under artifactsDir.
func SendQueuePath(artifactsDir string) string {
	return filepath.Join(artifactsDir, filepath.FromSlash(SendQueueFile))
}

// EventQueuePath returns the event queue path under artifactsDir.
func EventQueuePath(artifactsDir string) string {
	return filepath.Join(artifactsDir, filepath.FromSlash(EventQueueFile))
}

// PostQueuePath returns the forum queue path under artifactsDir.
func PostQueuePath(artifactsDir string) string {
	return filepath.Join(artifactsDir, filepath.FromSlash(PostQueueFile))
}

// ErrCorrupt marks a queue file that exists but does not parse. Callers
// treat the queue as empty for reading but must not overwrite the file in
// the same pass.
type ErrCorrupt struct {
	Path string
	Err  error
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("queue %s: corrupt: %v", e.Path, e.Err)
}

func (e *ErrCorrupt) Unwrap() error { return e.Err }

// Load reads a queue file. A missing file is an empty queue. A file that
// fails to parse returns (nil, *ErrCorrupt).
func Load(path string) ([]contracts.QueueItem, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &ErrCorrupt{Path: path, Err: err}
	}
	var items []contracts.QueueItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ErrCorrupt{Path: path, Err: err}
	}
	return items, nil
}

// Write atomically replaces a queue file with the given items,
// pretty-printed UTF-8 JSON.
func Write(path string, items []contracts.QueueItem) error {
	if items == nil {
		items = []contracts.QueueItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("queue %s: marshal: %w", path, err)
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// Store serializes writes per queue file within a process.
type Store struct {
	mu sync.Mutex
}

// NewStore returns a Store.
func NewStore() *Store {
	return &Store{}
}

// Update reloads path under the store lock, runs apply on the fresh items,
// and rewrites the file when apply reports a change. apply must mutate by
// qid rather than index so a concurrent append from the other process is
// preserved. Corrupt files abort the update.
func (s *Store) Update(path string, apply func(items []contracts.QueueItem) ([]contracts.QueueItem, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := Load(path)
	if err != nil {
		return err
	}
	next, changed, err := apply(items)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return Write(path, next)
}

// Append adds item to the queue at path. When requireUniqueQID is set and
// an item with the same qid already exists, the queue is left unchanged
// and ErrAlreadyQueued is returned.
func (s *Store) Append(path string, item contracts.QueueItem, requireUniqueQID bool) error {
	return s.Update(path, func(items []contracts.QueueItem) ([]contracts.QueueItem, bool, error) {
		if requireUniqueQID {
			for _, existing := range items {
				if existing.QID == item.QID {
					return items, false, ErrAlreadyQueued
				}
			}
		}
		return append(items, item), true, nil
	})
}

// ErrAlreadyQueued is returned by Append when the qid is already present.
var ErrAlreadyQueued = fmt.Errorf("queue: qid already present")
