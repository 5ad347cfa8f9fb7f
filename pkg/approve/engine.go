// Package approve scans pending queue items at the end of every tick and
// attaches short-lived approval tokens to the ones the conservative policy
// accepts. The engine is idempotent: an item that already carries a token
// is never re-tokenized.
package approve

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/ledger"
	"github.com/quietdesk/companion/pkg/policy"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/tokens"
)

// Engine evaluates the send and event queues against the auto-approval
// policy. Forum items are never auto-approved.
type Engine struct {
	store  *queue.Store
	ledger *ledger.Ledger
	secret []byte
	cfg    policy.Config
	ttl    time.Duration
	now    func() time.Time
	log    *slog.Logger
}

// New returns an engine. An empty secret disables the engine entirely:
// Run becomes a no-op.
func New(store *queue.Store, led *ledger.Ledger, secret []byte, cfg policy.Config, ttl time.Duration, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:  store,
		ledger: led,
		secret: secret,
		cfg:    cfg,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// WithClock overrides the time source for testing.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// stamp carries the mutation for one approved item, applied by qid against
// freshly loaded queue items.
type stamp struct {
	token      string
	approvedBy string
	approvedAt string
	specHash   string
}

// Run evaluates both auto-approvable queues once. It returns the number of
// approvals minted.
func (e *Engine) Run(artifactsDir string) (int, error) {
	if len(e.secret) == 0 {
		return 0, nil
	}

	total := 0
	n, err := e.runQueue(queue.SendQueuePath(artifactsDir), contracts.ActionSendEmail)
	if err != nil {
		return total, err
	}
	total += n
	n, err = e.runQueue(queue.EventQueuePath(artifactsDir), contracts.ActionCreateEvent)
	if err != nil {
		return total, err
	}
	total += n
	return total, nil
}

func (e *Engine) runQueue(path string, action contracts.Action) (int, error) {
	items, err := queue.Load(path)
	if err != nil {
		// Corrupt queue: audit and leave the file untouched this pass.
		_ = e.ledger.Append("queue_read_error", map[string]any{"path": path, "err": err.Error()})
		return 0, nil
	}

	stamps := make(map[string]stamp)
	for _, item := range items {
		if item.Status != contracts.StatusPending || item.ApprovalToken != nil {
			continue
		}
		if item.Action != action {
			continue
		}
		qid, hash, ok := e.evaluate(item)
		if !ok {
			continue
		}
		token, err := tokens.MintAt(e.secret, action.TokenType(), e.ttl, map[string]string{
			"qid":       qid,
			"spec_hash": hash,
		}, e.now())
		if err != nil {
			e.log.Warn("token mint failed", "qid", qid, "err", err)
			continue
		}
		stamps[item.QID] = stamp{
			token:      token,
			approvedBy: "auto",
			approvedAt: e.now().UTC().Format(time.RFC3339),
			specHash:   hash,
		}
		if err := e.ledger.Append("auto_approve", map[string]any{"qid": qid, "action": string(action)}); err != nil {
			e.log.Warn("ledger append failed", "err", err)
		}
	}
	if len(stamps) == 0 {
		return 0, nil
	}

	err = e.store.Update(path, func(fresh []contracts.QueueItem) ([]contracts.QueueItem, bool, error) {
		changed := false
		for i := range fresh {
			st, ok := stamps[fresh[i].QID]
			if !ok {
				continue
			}
			// Re-check on the fresh item: the executor may have raced it to
			// a terminal state, or a manual approval may have landed.
			if fresh[i].Status != contracts.StatusPending || fresh[i].ApprovalToken != nil {
				continue
			}
			token := st.token
			by := st.approvedBy
			at := st.approvedAt
			fresh[i].ApprovalToken = &token
			fresh[i].ApprovedBy = &by
			fresh[i].ApprovedAt = &at
			fresh[i].SpecHash = st.specHash
			changed = true
		}
		return fresh, changed, nil
	})
	if err != nil {
		return 0, fmt.Errorf("auto approve %s: %w", path, err)
	}
	return len(stamps), nil
}

// evaluate rebuilds the typed spec from the item and applies the policy
// predicate. It returns the qid and the spec hash to bind. Items whose
// spec fails to reconstruct are skipped without a state change.
func (e *Engine) evaluate(item contracts.QueueItem) (string, string, bool) {
	switch item.Action {
	case contracts.ActionSendEmail:
		spec, err := contracts.SendEmailSpecFromMap(item.Spec)
		if err != nil {
			return "", "", false
		}
		hash := item.SpecHash
		if hash == "" {
			if hash, err = spec.Hash(); err != nil {
				return "", "", false
			}
		}
		if !policy.CanAutoApproveSend(spec, e.cfg) {
			return "", "", false
		}
		return spec.QID, hash, true

	case contracts.ActionCreateEvent:
		spec, err := contracts.CreateEventSpecFromMap(item.Spec)
		if err != nil {
			return "", "", false
		}
		hash := item.SpecHash
		if hash == "" {
			if hash, err = spec.Hash(); err != nil {
				return "", "", false
			}
		}
		if !policy.CanAutoApproveEvent(spec, e.cfg, e.now()) {
			return "", "", false
		}
		return spec.QID, hash, true
	}
	return "", "", false
}
