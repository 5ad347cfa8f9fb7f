package schedulers

import (
	"github.com/google/uuid"

	"github.com/quietdesk/companion/pkg/contracts"
)

// CalendarScheduler proposes one agenda draft per upcoming event.
type CalendarScheduler struct {
	state CalendarState
}

// NewCalendarScheduler returns a scheduler over the given calendar state.
func NewCalendarScheduler(state CalendarState) *CalendarScheduler {
	return &CalendarScheduler{state: state}
}

// Propose returns candidate intents for this tick, at most ten.
func (s *CalendarScheduler) Propose() []contracts.Intent {
	events := s.state.Events
	if len(events) > maxIntentsPerTick {
		events = events[:maxIntentsPerTick]
	}
	intents := make([]contracts.Intent, 0, len(events))
	for _, ev := range events {
		intents = append(intents, contracts.Intent{
			ID:     uuid.NewString(),
			Domain: contracts.DomainCalendar,
			Type:   "agenda_draft",
			Payload: map[string]any{
				"event_id":    ev.EventID,
				"title":       ev.Title,
				"when":        ev.When,
				"description": ev.Description,
			},
			Value:         0.6,
			Urgency:       0.4,
			EffortS:       120,
			Preconditions: []string{"has_calendar_data"},
		})
	}
	return intents
}
