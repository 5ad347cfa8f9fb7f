package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ApprovalProfile is an on-disk override of the auto-approval policy knobs,
// useful for running the same binary against different calendars or
// approval windows without touching the environment.
type ApprovalProfile struct {
	Name   string        `yaml:"name"`
	Policy ProfilePolicy `yaml:"approval"`
}

// ProfilePolicy mirrors the policy knobs with pointer hour bounds: hour
// zero is a valid inclusive bound, so absence must be distinguishable.
type ProfilePolicy struct {
	Policy              string `yaml:"policy"`
	SelfEmail           string `yaml:"self_email"`
	AutoCalendarID      string `yaml:"auto_calendar_id"`
	EventWindowDays     int    `yaml:"event_window_days"`
	EventMaxDurationMin int    `yaml:"event_max_duration_min"`
	EventStartHour      *int   `yaml:"event_start_hour"`
	EventEndHour        *int   `yaml:"event_end_hour"`
}

// LoadApprovalProfile reads a YAML approval profile and applies it over the
// configuration's policy knobs. Zero-valued fields in the profile keep the
// configured value.
func (c *Config) LoadApprovalProfile(path string) (*ApprovalProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load approval profile: %w", err)
	}
	var profile ApprovalProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parse approval profile %q: %w", path, err)
	}

	p := profile.Policy
	if p.Policy != "" {
		c.AutoApprovePolicy = p.Policy
	}
	if p.SelfEmail != "" {
		c.SelfEmail = p.SelfEmail
	}
	if p.AutoCalendarID != "" {
		c.AutoCalendarID = p.AutoCalendarID
	}
	if p.EventWindowDays > 0 {
		c.EventWindowDays = p.EventWindowDays
	}
	if p.EventMaxDurationMin > 0 {
		c.EventMaxDurationMin = p.EventMaxDurationMin
	}
	if p.EventStartHour != nil {
		c.EventStartHour = *p.EventStartHour
	}
	if p.EventEndHour != nil {
		c.EventEndHour = *p.EventEndHour
	}
	return &profile, nil
}
