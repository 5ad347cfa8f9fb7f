package executor

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/quietdesk/companion/pkg/queue"
)

// DedupeFile is the terminal-qid map, relative to the artifacts directory.
const DedupeFile = ".exec_executed.json"

// DedupePath returns the dedupe store location under artifactsDir.
func DedupePath(artifactsDir string) string {
	return filepath.Join(artifactsDir, DedupeFile)
}

// LoadDedupe reads the qid→terminal-status map. Missing or unreadable
// files yield an empty map; losing the map only risks a rejected token
// replay, never a dropped record, because terminal status also lives in
// the queue file.
func LoadDedupe(path string) map[string]string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]string{}
	}
	var db map[string]string
	if err := json.Unmarshal(raw, &db); err != nil {
		return map[string]string{}
	}
	if db == nil {
		return map[string]string{}
	}
	return db
}

// SaveDedupe atomically persists the map.
func SaveDedupe(path string, db map[string]string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	return queue.WriteFileAtomic(path, append(data, '\n'))
}
