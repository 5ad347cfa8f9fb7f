package executor

import (
	"context"
	"log/slog"

	"github.com/quietdesk/companion/pkg/contracts"
)

// Writers is the downstream write surface the executor dispatches to. The
// real adapters (mail, calendar, forum HTTP) live outside the core; each
// call may fail and the executor converts failures into terminal error
// states. Implementations should honor the context deadline.
type Writers interface {
	SendEmail(ctx context.Context, spec contracts.SendEmailSpec) error
	CreateEvent(ctx context.Context, spec contracts.CreateEventSpec) error
	CreatePost(ctx context.Context, spec contracts.CreatePostSpec) error
	ReplyPost(ctx context.Context, spec contracts.ReplyPostSpec) error
}

// LogWriters records each would-be side effect to the logger and succeeds.
// It stands in for the real adapters in local runs.
type LogWriters struct {
	Log *slog.Logger
}

// NewLogWriters returns writers that only log.
func NewLogWriters(log *slog.Logger) *LogWriters {
	if log == nil {
		log = slog.Default()
	}
	return &LogWriters{Log: log}
}

func (w *LogWriters) SendEmail(ctx context.Context, spec contracts.SendEmailSpec) error {
	w.Log.Info("send_email", "qid", spec.QID, "to", spec.To, "subject", spec.Subject)
	return nil
}

func (w *LogWriters) CreateEvent(ctx context.Context, spec contracts.CreateEventSpec) error {
	w.Log.Info("create_event", "qid", spec.QID, "calendar", spec.CalendarID, "title", spec.Title)
	return nil
}

func (w *LogWriters) CreatePost(ctx context.Context, spec contracts.CreatePostSpec) error {
	w.Log.Info("create_post", "qid", spec.QID, "title", spec.Title)
	return nil
}

func (w *LogWriters) ReplyPost(ctx context.Context, spec contracts.ReplyPostSpec) error {
	w.Log.Info("reply_post", "qid", spec.QID, "post", spec.PostID)
	return nil
}
