package schedulers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/llm"
	"github.com/quietdesk/companion/pkg/sanitize"
)

// MessagesScheduler proposes reply drafts for inbox threads. With an LLM
// configured it asks for a strict-JSON intent batch over sanitized thread
// fields; schema failure or any LLM error falls back to the heuristic.
type MessagesScheduler struct {
	state InboxState
	llm   llm.Client
	log   *slog.Logger
}

// NewMessagesScheduler returns a scheduler over the given inbox state.
// client may be nil.
func NewMessagesScheduler(state InboxState, client llm.Client, log *slog.Logger) *MessagesScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &MessagesScheduler{state: state, llm: client, log: log}
}

func (s *MessagesScheduler) fallback() []contracts.Intent {
	threads := s.state.Threads
	if len(threads) > maxIntentsPerTick {
		threads = threads[:maxIntentsPerTick]
	}
	intents := make([]contracts.Intent, 0, len(threads))
	for _, th := range threads {
		urgency := 0.4
		if th.Unread {
			urgency = 0.8
		}
		value := 0.4
		if th.Important {
			value = 0.7
		}
		intents = append(intents, contracts.Intent{
			ID:     uuid.NewString(),
			Domain: contracts.DomainMessages,
			Type:   "draft_reply",
			Payload: map[string]any{
				"thread_id":  th.ThreadID,
				"message_id": th.MessageID,
				"subject":    th.Subject,
				"snippet":    th.Snippet,
				"from":       th.From,
			},
			Value:         value,
			Urgency:       urgency,
			EffortS:       60,
			Preconditions: []string{"has_inbox_data"},
		})
	}
	return intents
}

// Propose returns candidate intents for this tick, at most ten.
func (s *MessagesScheduler) Propose(ctx context.Context) []contracts.Intent {
	if s.llm == nil {
		return s.fallback()
	}

	threads := s.state.Threads
	if len(threads) > 20 {
		threads = threads[:20]
	}
	safe := make([]Thread, 0, len(threads))
	for _, th := range threads {
		safe = append(safe, Thread{
			ThreadID:  th.ThreadID,
			MessageID: th.MessageID,
			From:      sanitize.Text(th.From, 200),
			Subject:   sanitize.Text(th.Subject, 200),
			Snippet:   sanitize.Text(th.Snippet, 800),
			Unread:    th.Unread,
			Important: th.Important,
		})
	}
	threadsJSON, err := json.Marshal(safe)
	if err != nil {
		return s.fallback()
	}

	resp, err := s.llm.Complete(ctx, llm.SystemMessagesScheduler(), llm.UserMessagesScheduler(string(threadsJSON)), true)
	if err != nil {
		s.log.Warn("messages scheduler llm failed, using heuristic", "err", err)
		return s.fallback()
	}
	if resp.JSON == nil {
		return s.fallback()
	}
	intents, err := llm.ParseIntentBatch(resp.JSON, "has_inbox_data")
	if err != nil {
		s.log.Warn("messages scheduler batch rejected", "err", err)
		return s.fallback()
	}
	if len(intents) > maxIntentsPerTick {
		intents = intents[:maxIntentsPerTick]
	}
	return intents
}
