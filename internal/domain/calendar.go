package domain

import (
	"fmt"
	"time"
)

// ReminderDuration is the fixed length of every calendar reminder
const ReminderDuration = 30 * time.Minute

// AlertOption selects when a reminder alarm fires
type AlertOption string

const (
	AlertNone   AlertOption = "none"
	AlertAtTime AlertOption = "at-time"
	Alert5m     AlertOption = "5m"
	Alert15m    AlertOption = "15m"
	Alert30m    AlertOption = "30m"
	Alert60m    AlertOption = "60m"
)

var alertOffsets = map[AlertOption]time.Duration{
	AlertAtTime: 0,
	Alert5m:     5 * time.Minute,
	Alert15m:    15 * time.Minute,
	Alert30m:    30 * time.Minute,
	Alert60m:    60 * time.Minute,
}

// ParseAlert validates an alert option; empty means none
func ParseAlert(s string) (AlertOption, error) {
	a := AlertOption(s)
	if s == "" || a == AlertNone {
		return AlertNone, nil
	}
	if _, ok := alertOffsets[a]; !ok {
		return "", fmt.Errorf("unknown alert option: %q", s)
	}
	return a, nil
}

// Offset returns how long before the due time the alarm fires
func (a AlertOption) Offset() (time.Duration, bool) {
	d, ok := alertOffsets[a]
	return d, ok
}

// Reminder is the calendar-side view of a dated task
type Reminder struct {
	UID       string
	Title     string
	Due       time.Time
	AllDay    bool
	Alarm     *time.Duration // before Due
	URL       string
	Completed bool

	// PushedCompleted is the completion state last written from the document,
	// so a change made on the calendar side can be told apart.
	PushedCompleted bool
}

// Start returns when the reminder's block begins
func (r Reminder) Start() time.Time {
	if r.AllDay {
		return r.Due
	}
	return r.Due.Add(-ReminderDuration)
}

// CompletedExternally reports whether the reminder was completed on the calendar side
func (r Reminder) CompletedExternally() bool {
	return r.Completed && !r.PushedCompleted
}

// UncompletedExternally reports whether a reminder pushed as done was reopened on the calendar side
func (r Reminder) UncompletedExternally() bool {
	return !r.Completed && r.PushedCompleted
}

// Equal compares every field that is written to the calendar
func (r Reminder) Equal(o Reminder) bool {
	if (r.Alarm == nil) != (o.Alarm == nil) || (r.Alarm != nil && *r.Alarm != *o.Alarm) {
		return false
	}
	return r.UID == o.UID && r.Title == o.Title && r.Due.Equal(o.Due) && r.AllDay == o.AllDay &&
		r.URL == o.URL && r.Completed == o.Completed && r.PushedCompleted == o.PushedCompleted
}

// ReminderFor derives the reminder of a task; false when the task has no date
func ReminderFor(t Task, alert AlertOption, loc *time.Location) (Reminder, bool) {
	if t.DoDate == "" {
		return Reminder{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	r := Reminder{
		UID:             t.ID,
		Title:           t.Title,
		URL:             t.URL,
		Completed:       t.Completed,
		PushedCompleted: t.Completed,
	}
	layout, value := DateLayout, t.DoDate
	if t.DoTime != "" {
		layout, value = DateLayout+" "+TimeLayout, t.DoDate+" "+t.DoTime
	} else {
		r.AllDay = true
	}
	due, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return Reminder{}, false
	}
	r.Due = due
	if off, ok := alert.Offset(); ok && !r.AllDay {
		r.Alarm = &off
	}
	return r, true
}
