package controllers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/quietdesk/companion/pkg/contracts"
	"github.com/quietdesk/companion/pkg/queue"
	"github.com/quietdesk/companion/pkg/sanitize"
)

// CalendarController writes agenda drafts and enqueues event creations.
// agenda_draft produces a draft file only; enqueue_event_draft also
// appends a create_event queue item.
type CalendarController struct {
	artifactsDir string
	store        *queue.Store
	log          *slog.Logger
}

// NewCalendarController returns a controller writing under artifactsDir.
func NewCalendarController(artifactsDir string, store *queue.Store, log *slog.Logger) *CalendarController {
	if log == nil {
		log = slog.Default()
	}
	return &CalendarController{artifactsDir: artifactsDir, store: store, log: log}
}

// Execute implements Controller for agenda_draft and enqueue_event_draft.
func (c *CalendarController) Execute(ctx context.Context, intent contracts.Intent) contracts.ExecutionResult {
	draftsDir := filepath.Join(c.artifactsDir, "calendar", "drafts")

	switch intent.Type {
	case "agenda_draft":
		eventID := intent.PayloadString("event_id")
		if eventID == "" {
			eventID = "unknown"
		}
		title := sanitize.Text(intent.PayloadString("title"), 200)
		when := sanitize.Text(intent.PayloadString("when"), 200)
		desc := sanitize.Text(intent.PayloadString("description"), 2000)

		path := filepath.Join(draftsDir, safeID(eventID)+"_agenda.md")
		content := fmt.Sprintf("# Agenda Draft\n\nEvent: %s\nWhen: %s\n\n%s\n", title, when, desc)
		if err := writeDraft(path, content); err != nil {
			return failed(err.Error())
		}
		return contracts.ExecutionResult{
			Status:    contracts.ExecOK,
			Artifacts: []string{path},
			Note:      "agenda_draft_created",
		}

	case "enqueue_event_draft":
		calendarID := intent.PayloadString("calendar_id")
		if calendarID == "" {
			calendarID = "primary"
		}
		title := sanitize.Text(intent.PayloadString("title"), 200)
		startISO := intent.PayloadString("start_iso")
		endISO := intent.PayloadString("end_iso")
		desc := sanitize.Text(intent.PayloadString("description"), 2000)

		attendees := []string{}
		if raw, ok := intent.Payload["attendees"].([]any); ok {
			for _, a := range raw {
				if s, ok := a.(string); ok {
					attendees = append(attendees, s)
				}
			}
		}

		hexID := randomHex()
		descPath := filepath.Join(draftsDir, "event_"+hexID+".md")
		if err := writeDraft(descPath, desc); err != nil {
			return failed(err.Error())
		}

		spec := contracts.CreateEventSpec{
			QID:               "create_event_" + hexID,
			CalendarID:        calendarID,
			Title:             title,
			StartISO:          startISO,
			EndISO:            endISO,
			DescriptionMDPath: descPath,
			Attendees:         attendees,
		}
		hash, err := spec.Hash()
		if err != nil {
			return failed(err.Error())
		}
		specMap, err := spec.Map()
		if err != nil {
			return failed(err.Error())
		}

		queuePath := queue.EventQueuePath(c.artifactsDir)
		item := contracts.QueueItem{
			QID:      spec.QID,
			Action:   contracts.ActionCreateEvent,
			Spec:     specMap,
			SpecHash: hash,
			Status:   contracts.StatusPending,
		}
		if err := c.store.Append(queuePath, item, true); err != nil {
			return failed(err.Error())
		}
		return contracts.ExecutionResult{
			Status:    contracts.ExecOK,
			Artifacts: []string{descPath, queuePath},
			Note:      "event_enqueued",
		}
	}

	return skipped(noteUnsupported)
}
