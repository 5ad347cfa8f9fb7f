// Package policy holds the conservative auto-approval predicates. Each
// predicate is pure and deterministic given a spec, the configuration, and
// a reference time; forum posts and replies have no predicate and always
// require manual approval.
package policy

import (
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/quietdesk/companion/pkg/contracts"
)

// PolicyConservative is the only policy under which anything is
// auto-approved. Any other value disables auto-approval entirely.
const PolicyConservative = "conservative"

// Config is the knob set the predicates evaluate against.
type Config struct {
	Policy              string `yaml:"policy"`
	SelfEmail           string `yaml:"self_email"`
	AutoCalendarID      string `yaml:"auto_calendar_id"`
	EventWindowDays     int    `yaml:"event_window_days"`
	EventMaxDurationMin int    `yaml:"event_max_duration_min"`
	EventStartHour      int    `yaml:"event_start_hour"`
	EventEndHour        int    `yaml:"event_end_hour"`
}

// ParseISO parses an ISO-8601 timestamp, tolerating a trailing Z and a
// missing offset (interpreted in the host's local timezone).
func ParseISO(ts string) (time.Time, bool) {
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, ts, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CanAutoApproveSend reports whether a send spec qualifies: conservative
// policy, recipient equal to the configured self address, a sane subject,
// and a readable body file.
func CanAutoApproveSend(spec contracts.SendEmailSpec, cfg Config) bool {
	if cfg.Policy != PolicyConservative {
		return false
	}
	if spec.To == "" || cfg.SelfEmail == "" {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(spec.To), strings.TrimSpace(cfg.SelfEmail)) {
		return false
	}
	if spec.Subject == "" || utf8.RuneCountInString(spec.Subject) > 200 {
		return false
	}
	f, err := os.Open(spec.BodyMDPath)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// CanAutoApproveEvent reports whether an event spec qualifies: conservative
// policy, the configured auto calendar, no attendees, and a start/end pair
// that is in the future, inside the approval window, of bounded duration,
// and within local working hours at both endpoints.
func CanAutoApproveEvent(spec contracts.CreateEventSpec, cfg Config, now time.Time) bool {
	if cfg.Policy != PolicyConservative {
		return false
	}
	if spec.CalendarID != cfg.AutoCalendarID {
		return false
	}
	if spec.Title == "" {
		return false
	}
	if len(spec.Attendees) > 0 {
		return false
	}

	start, ok := ParseISO(spec.StartISO)
	if !ok {
		return false
	}
	end, ok := ParseISO(spec.EndISO)
	if !ok {
		return false
	}

	nowLocal := now.Local()
	startLocal := start.Local()
	endLocal := end.Local()

	if !startLocal.After(nowLocal) {
		return false
	}
	if startLocal.Sub(nowLocal) > time.Duration(cfg.EventWindowDays)*24*time.Hour {
		return false
	}

	dur := endLocal.Sub(startLocal)
	if dur <= 0 || dur > time.Duration(cfg.EventMaxDurationMin)*time.Minute {
		return false
	}

	if startLocal.Hour() < cfg.EventStartHour || startLocal.Hour() > cfg.EventEndHour {
		return false
	}
	if endLocal.Hour() < cfg.EventStartHour || endLocal.Hour() > cfg.EventEndHour {
		return false
	}
	return true
}
