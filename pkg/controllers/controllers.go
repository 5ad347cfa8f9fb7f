// Package controllers materializes accepted intents: sanitize what will be
// persisted, write human-readable draft artifacts, and append queue items
// with fresh spec fingerprints. Controllers never call external services
// and never mint tokens.
package controllers

import (
	"context"

	"github.com/google/uuid"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/queue"
)

// Controller realizes one accepted intent for its domain.
type Controller interface {
	Execute(ctx context.Context, intent contracts.Intent) contracts.ExecutionResult
}

const noteUnsupported = "unsupported_intent"

func skipped(note string) contracts.ExecutionResult {
	return contracts.ExecutionResult{Status: contracts.ExecSkipped, Note: note}
}

func failed(note string) contracts.ExecutionResult {
	return contracts.ExecutionResult{Status: contracts.ExecFail, Note: note}
}

// writeDraft atomically writes a UTF-8 draft artifact.
func writeDraft(path, content string) error {
	return queue.WriteFileAtomic(path, []byte(content))
}

// safeID reduces an untrusted identifier to [A-Za-z0-9_-], capped at 64
// characters. Empty results get a random hex id so file names stay unique.
func safeID(raw string) string {
	keep := make([]rune, 0, len(raw))
	for _, ch := range raw {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			keep = append(keep, ch)
		}
	}
	if len(keep) > 64 {
		keep = keep[:64]
	}
	if len(keep) == 0 {
		return randomHex()
	}
	return string(keep)
}

func randomHex() string {
	id := uuid.NewString()
	out := make([]byte, 0, 32)
	for i := 0; i < len(id); i++ {
		if id[i] != '-' {
			out = append(out, id[i])
		}
	}
	return string(out)
}
