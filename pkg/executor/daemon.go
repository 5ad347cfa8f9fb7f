// Package executor is the standalone side-effect daemon. It polls the
// approval queues, verifies the HMAC token on each pending item, checks the
// token binding against the stored spec, and dispatches the action to the
// configured writers. Every item ends in exactly one terminal state and is
// recorded in a dedupe store so a restart never re-executes it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/ledger"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/tokens"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	dispatchTimeout     = 30 * time.Second
	maxErrorChars       = 300

	reasonBadToken     = "invalid_or_expired_token"
	reasonBindMismatch = "token_bind_mismatch"
)

// ErrNoSecret aborts daemon construction when the shared secret is absent.
// Running without a secret would make every queued token unverifiable.
var ErrNoSecret = errors.New("executor: empty approval secret")

// Daemon owns one polling loop over the three queues.
type Daemon struct {
	artifactsDir string
	store        *queue.Store
	ledger       *ledger.Ledger
	secret       []byte
	writers      Writers
	interval     time.Duration
	now          func() time.Time
	log          *slog.Logger

	dedupe map[string]string
}

// New constructs a daemon. It fails fast on an empty secret.
func New(artifactsDir string, store *queue.Store, led *ledger.Ledger, secret []byte, writers Writers, log *slog.Logger) (*Daemon, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	if log == nil {
		log = slog.Default()
	}
	return &Daemon{
		artifactsDir: artifactsDir,
		store:        store,
		ledger:       led,
		secret:       secret,
		writers:      writers,
		interval:     defaultPollInterval,
		now:          time.Now,
		log:          log,
		dedupe:       LoadDedupe(DedupePath(artifactsDir)),
	}, nil
}

// WithClock overrides the time source for testing.
func (d *Daemon) WithClock(now func() time.Time) *Daemon {
	d.now = now
	return d
}

// WithInterval overrides the poll interval.
func (d *Daemon) WithInterval(iv time.Duration) *Daemon {
	d.interval = iv
	return d
}

// Run polls until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if n, err := d.RunOnce(ctx); err != nil {
			d.log.Warn("executor pass failed", "err", err)
		} else if n > 0 {
			d.log.Info("executor pass", "executed", n)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce makes one pass over all queues and returns the number of items
// driven to a terminal state.
func (d *Daemon) RunOnce(ctx context.Context) (int, error) {
	total := 0
	passes := []struct {
		path   string
		accept map[contracts.Action]bool
	}{
		{queue.SendQueuePath(d.artifactsDir), map[contracts.Action]bool{contracts.ActionSendEmail: true}},
		{queue.EventQueuePath(d.artifactsDir), map[contracts.Action]bool{contracts.ActionCreateEvent: true}},
		{queue.PostQueuePath(d.artifactsDir), map[contracts.Action]bool{
			contracts.ActionCreatePost: true,
			contracts.ActionReplyPost:  true,
		}},
	}
	for _, p := range passes {
		n, err := d.runQueue(ctx, p.path, p.accept)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// outcome is the terminal transition for one item, applied by qid against a
// fresh load of the queue file.
type outcome struct {
	status contracts.Status
	reason string
}

func (d *Daemon) runQueue(ctx context.Context, path string, accept map[contracts.Action]bool) (int, error) {
	items, err := queue.Load(path)
	if err != nil {
		_ = d.ledger.Append("queue_read_error", map[string]any{"path": path, "err": err.Error()})
		return 0, nil
	}

	outcomes := make(map[string]outcome)
	for _, item := range items {
		if item.Status != contracts.StatusPending {
			continue
		}
		if _, done := d.dedupe[item.QID]; done {
			continue
		}
		if item.ApprovalToken == nil || *item.ApprovalToken == "" {
			continue
		}
		if !accept[item.Action] {
			continue
		}
		outcomes[item.QID] = d.execute(ctx, item)
	}
	if len(outcomes) == 0 {
		return 0, nil
	}

	// The dedupe store is stamped and persisted before the queue write: the
	// writers have already fired, so a failed status flip must not let the
	// next poll re-dispatch the same qid.
	for qid, out := range outcomes {
		d.dedupe[qid] = string(out.status)
	}
	if err := SaveDedupe(DedupePath(d.artifactsDir), d.dedupe); err != nil {
		d.log.Warn("dedupe persist failed", "err", err)
	}

	err = d.store.Update(path, func(fresh []contracts.QueueItem) ([]contracts.QueueItem, bool, error) {
		changed := false
		for i := range fresh {
			out, ok := outcomes[fresh[i].QID]
			if !ok {
				continue
			}
			if fresh[i].Status.Terminal() {
				continue
			}
			fresh[i].Status = out.status
			if out.reason != "" {
				reason := out.reason
				fresh[i].Reason = &reason
			}
			changed = true
		}
		return fresh, changed, nil
	})
	if err != nil {
		return len(outcomes), fmt.Errorf("executor %s: %w", path, err)
	}
	return len(outcomes), nil
}

// execute verifies and dispatches a single item, returning its terminal
// transition. The queue file itself is only mutated afterwards, by qid.
func (d *Daemon) execute(ctx context.Context, item contracts.QueueItem) outcome {
	approval := tokens.Verify(d.secret, *item.ApprovalToken)
	if approval == nil || approval.Expired(d.now()) || approval.TokenType != item.Action.TokenType() {
		d.reject(item, reasonBadToken)
		return outcome{status: contracts.StatusRejected, reason: reasonBadToken}
	}
	if approval.Bind["qid"] != item.QID || item.SpecHash == "" || approval.Bind["spec_hash"] != item.SpecHash {
		d.reject(item, reasonBindMismatch)
		return outcome{status: contracts.StatusRejected, reason: reasonBindMismatch}
	}

	dctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	err := d.dispatch(dctx, item)
	if err != nil {
		msg := truncate(err.Error(), maxErrorChars)
		if lerr := d.ledger.Append("exec_error", map[string]any{
			"qid":    item.QID,
			"action": string(item.Action),
			"err":    msg,
		}); lerr != nil {
			d.log.Warn("ledger append failed", "err", lerr)
		}
		return outcome{status: contracts.StatusError, reason: msg}
	}

	if lerr := d.ledger.Append("exec_ok", map[string]any{
		"qid":    item.QID,
		"action": string(item.Action),
	}); lerr != nil {
		d.log.Warn("ledger append failed", "err", lerr)
	}
	return outcome{status: contracts.StatusDone}
}

func (d *Daemon) reject(item contracts.QueueItem, reason string) {
	if err := d.ledger.Append("exec_reject", map[string]any{
		"qid":    item.QID,
		"action": string(item.Action),
		"reason": reason,
	}); err != nil {
		d.log.Warn("ledger append failed", "err", err)
	}
}

// dispatch rebuilds the typed spec and invokes the matching writer.
func (d *Daemon) dispatch(ctx context.Context, item contracts.QueueItem) error {
	switch item.Action {
	case contracts.ActionSendEmail:
		spec, err := contracts.SendEmailSpecFromMap(item.Spec)
		if err != nil {
			return err
		}
		if spec.To == "" {
			return errors.New("send_email: empty recipient")
		}
		return d.writers.SendEmail(ctx, spec)
	case contracts.ActionCreateEvent:
		spec, err := contracts.CreateEventSpecFromMap(item.Spec)
		if err != nil {
			return err
		}
		return d.writers.CreateEvent(ctx, spec)
	case contracts.ActionCreatePost:
		spec, err := contracts.CreatePostSpecFromMap(item.Spec)
		if err != nil {
			return err
		}
		return d.writers.CreatePost(ctx, spec)
	case contracts.ActionReplyPost:
		spec, err := contracts.ReplyPostSpecFromMap(item.Spec)
		if err != nil {
			return err
		}
		return d.writers.ReplyPost(ctx, spec)
	}
	return fmt.Errorf("unknown action %q", item.Action)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
