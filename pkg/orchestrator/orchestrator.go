// Package orchestrator drives the tick loop: read normalized state, let the
// schedulers propose, gate every candidate, let the arbiter pick one winner,
// dispatch it to a controller, and finish the tick with an auto-approval
// pass over the queues. One intent is realized per tick at most.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/quietdesk/companion/pkg/approve"
	"github.com/quietdesk/companion/pkg/arbiter"
	"github.com/quietdesk/companion/pkg/config"
	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/controllers"
	"github.com/quietdesk/companion/pkg/gate"
	"github.com/quietdesk/companion/pkg/ledger"
	"github.com/quietdesk/companion/pkg/llm"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/schedulers"
)

// InboxReader loads the current inbox view. Implementations adapt a real
// mail backend; failures degrade to an empty state.
type InboxReader interface {
	ReadInbox(ctx context.Context) (schedulers.InboxState, error)
}

// CalendarReader loads upcoming events.
type CalendarReader interface {
	ReadCalendar(ctx context.Context) (schedulers.CalendarState, error)
}

// FeedReader loads the forum feed.
type FeedReader interface {
	ReadFeed(ctx context.Context) (schedulers.FeedState, error)
}

// Readers bundles the optional state sources. Any nil reader yields an
// empty state for its domain.
type Readers struct {
	Inbox    InboxReader
	Calendar CalendarReader
	Feed     FeedReader
	Repos    []string
}

// Orchestrator owns one tick loop over a single artifacts directory.
type Orchestrator struct {
	artifactsDir string
	cfg          *config.Config
	client       llm.Client
	store        *queue.Store
	ledger       *ledger.Ledger
	gate         *gate.Gate
	approver     *approve.Engine
	readers      Readers
	log          *slog.Logger
}

// New wires an orchestrator from shared components. client may be nil.
func New(artifactsDir string, cfg *config.Config, client llm.Client, store *queue.Store, led *ledger.Ledger, readers Readers, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	var approver *approve.Engine
	if cfg.AutoApprove && len(cfg.SecretBytes()) > 0 {
		ttl := time.Duration(cfg.AutoApproveTTLS) * time.Second
		approver = approve.New(store, led, cfg.SecretBytes(), cfg.PolicyConfig(), ttl, log)
	}
	return &Orchestrator{
		artifactsDir: artifactsDir,
		cfg:          cfg,
		client:       client,
		store:        store,
		ledger:       led,
		gate:         gate.New(),
		approver:     approver,
		readers:      readers,
		log:          log,
	}
}

// controllerFor returns the controller owning a domain.
func (o *Orchestrator) controllerFor(domain contracts.Domain) controllers.Controller {
	switch domain {
	case contracts.DomainMessages:
		return controllers.NewMessagesController(o.artifactsDir, o.store, o.client, o.log)
	case contracts.DomainCalendar:
		return controllers.NewCalendarController(o.artifactsDir, o.store, o.log)
	case contracts.DomainCoding:
		return controllers.NewCodingController(o.artifactsDir, o.log)
	case contracts.DomainForum:
		return controllers.NewForumController(o.artifactsDir, o.store, o.client, o.log)
	}
	return nil
}

// readStates gathers per-domain input, degrading failed reads to empty.
func (o *Orchestrator) readStates(ctx context.Context) (schedulers.InboxState, schedulers.CalendarState, schedulers.FeedState) {
	var inbox schedulers.InboxState
	var cal schedulers.CalendarState
	var feed schedulers.FeedState

	if o.readers.Inbox != nil {
		st, err := o.readers.Inbox.ReadInbox(ctx)
		if err != nil {
			o.log.Warn("inbox read failed", "err", err)
		} else {
			inbox = st
		}
	}
	if o.readers.Calendar != nil {
		st, err := o.readers.Calendar.ReadCalendar(ctx)
		if err != nil {
			o.log.Warn("calendar read failed", "err", err)
		} else {
			cal = st
		}
	}
	if o.readers.Feed != nil {
		st, err := o.readers.Feed.ReadFeed(ctx)
		if err != nil {
			o.log.Warn("feed read failed", "err", err)
		} else {
			feed = st
		}
	}
	return inbox, cal, feed
}

// propose collects candidates from every scheduler.
func (o *Orchestrator) propose(ctx context.Context) []contracts.Intent {
	inbox, cal, feed := o.readStates(ctx)

	var intents []contracts.Intent
	intents = append(intents, schedulers.NewMessagesScheduler(inbox, o.client, o.log).Propose(ctx)...)
	intents = append(intents, schedulers.NewCalendarScheduler(cal).Propose()...)
	intents = append(intents, schedulers.NewCodingScheduler(schedulers.RepoState{Repos: o.readers.Repos}).Propose()...)
	intents = append(intents, schedulers.NewForumScheduler(feed).Propose()...)
	return intents
}

// Tick runs one full cycle and returns the winner's execution result, if a
// winner was dispatched.
func (o *Orchestrator) Tick(ctx context.Context) (*contracts.ExecutionResult, error) {
	candidates := o.propose(ctx)

	accepted := make([]contracts.Intent, 0, len(candidates))
	for _, intent := range candidates {
		decision := o.gate.Decide(intent)
		if decision.Accepted {
			accepted = append(accepted, intent)
			continue
		}
		if err := o.ledger.Append("decision", map[string]any{
			"intent_id": intent.ID,
			"domain":    string(intent.Domain),
			"type":      intent.Type,
			"accepted":  false,
			"reason":    decision.Reason,
		}); err != nil {
			o.log.Warn("ledger append failed", "err", err)
		}
	}

	winner, ok := arbiter.Choose(accepted)
	if !ok {
		if err := o.ledger.Append("tick", map[string]any{"note": "no_intents"}); err != nil {
			o.log.Warn("ledger append failed", "err", err)
		}
		o.autoApprove()
		return nil, nil
	}

	if err := o.ledger.Append("decision", map[string]any{
		"intent_id": winner.ID,
		"domain":    string(winner.Domain),
		"type":      winner.Type,
		"accepted":  true,
		"reason":    gate.ReasonOK,
		"score":     arbiter.Score(winner),
	}); err != nil {
		o.log.Warn("ledger append failed", "err", err)
	}

	ctrl := o.controllerFor(winner.Domain)
	result := ctrl.Execute(ctx, winner)

	if err := o.ledger.Append("exec", map[string]any{
		"intent_id": winner.ID,
		"domain":    string(winner.Domain),
		"type":      winner.Type,
		"status":    string(result.Status),
		"note":      result.Note,
		"artifacts": result.Artifacts,
	}); err != nil {
		o.log.Warn("ledger append failed", "err", err)
	}

	o.autoApprove()
	return &result, nil
}

func (o *Orchestrator) autoApprove() {
	if o.approver == nil {
		return
	}
	n, err := o.approver.Run(o.artifactsDir)
	if err != nil {
		o.log.Warn("auto approve pass failed", "err", err)
		return
	}
	if n > 0 {
		o.log.Info("auto approved", "count", n)
	}
}

// Run executes ticks full cycles with the given interval between them. A
// non-positive ticks value runs until the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context, ticks int, interval time.Duration) error {
	for i := 0; ticks <= 0 || i < ticks; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
		if _, err := o.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
