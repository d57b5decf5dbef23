// Package ics stores reminders as VTODO files in a vdir collection, one
// .ics file per task, the layout calendar sync tools like vdirsyncer expect.
package ics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/natefinch/atomic"

	"focuslist/internal/config"
	"focuslist/internal/domain"
	"focuslist/internal/logging"
)

const (
	productID = "-//focuslist//focuslist//EN"

	// propPushedStatus remembers the STATUS last written by us
	propPushedStatus = "X-FOCUSLIST-PUSHED-STATUS"

	statusCompleted   = "COMPLETED"
	statusNeedsAction = "NEEDS-ACTION"
)

// Collection is a directory of VTODO files
type Collection struct {
	dir string

	// Location is used for all-day dates and floating times
	Location *time.Location
	Now      func() time.Time
}

// NewCollection opens the collection at dir, creating it if needed
func NewCollection(dir string) (*Collection, error) {
	dir = config.ExpandHome(dir)
	if dir == "" {
		return nil, errors.New("calendar directory is not configured")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create calendar directory: %w", err)
	}
	return &Collection{dir: dir, Location: time.Local, Now: time.Now}, nil
}

// Dir returns the collection directory
func (c *Collection) Dir() string {
	return c.dir
}

// List returns every reminder in the collection. Files that fail to parse
// are skipped.
func (c *Collection) List(ctx context.Context) ([]domain.Reminder, error) {
	files, err := c.files()
	if err != nil {
		return nil, err
	}
	var out []domain.Reminder
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cal, err := readCalendar(path)
		if err != nil {
			logging.Warn("calendar", "skipping %s: %v", filepath.Base(path), err)
			continue
		}
		for _, todo := range cal.Children {
			if todo.Name != ical.CompToDo {
				continue
			}
			r, err := c.reminder(todo)
			if err != nil {
				logging.Warn("calendar", "skipping todo in %s: %v", filepath.Base(path), err)
				continue
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// Upsert writes the reminder to <uid>.ics, keeping properties it does not manage
func (c *Collection) Upsert(ctx context.Context, r domain.Reminder) error {
	path, err := c.path(r.UID)
	if err != nil {
		return err
	}

	todo := ical.NewComponent(ical.CompToDo)
	if cal, err := readCalendar(path); err == nil {
		for _, child := range cal.Children {
			if child.Name == ical.CompToDo {
				todo = child
				break
			}
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("calendar", "rewriting unreadable %s: %v", filepath.Base(path), err)
	}
	c.fill(todo, r)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, todo)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode reminder %s: %w", r.UID, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write reminder %s: %w", r.UID, err)
	}
	logging.Debug("calendar", "wrote %s (%s)", r.UID, logging.Truncate(r.Title, 40))
	return nil
}

// Delete removes the reminder with the given uid. A missing reminder is not an error.
func (c *Collection) Delete(ctx context.Context, uid string) error {
	path, err := c.path(uid)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	// files created by other clients may not be named after their uid
	files, err := c.files()
	if err != nil {
		return err
	}
	for _, f := range files {
		cal, err := readCalendar(f)
		if err != nil {
			continue
		}
		for _, todo := range cal.Children {
			if todo.Name != ical.CompToDo {
				continue
			}
			if id, _ := todo.Props.Text(ical.PropUID); id == uid {
				return os.Remove(f)
			}
		}
	}
	return nil
}

func (c *Collection) files() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ics") {
			continue
		}
		files = append(files, filepath.Join(c.dir, e.Name()))
	}
	return files, nil
}

func (c *Collection) path(uid string) (string, error) {
	if uid == "" || strings.ContainsAny(uid, `/\`) || uid == "." || uid == ".." {
		return "", fmt.Errorf("invalid reminder uid: %q", uid)
	}
	return filepath.Join(c.dir, uid+".ics"), nil
}

func readCalendar(path string) (*ical.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ical.NewDecoder(f).Decode()
}

func (c *Collection) fill(todo *ical.Component, r domain.Reminder) {
	for _, name := range []string{ical.PropDue, ical.PropDateTimeStart, ical.PropURL, ical.PropCompleted} {
		todo.Props.Del(name)
	}

	todo.Props.SetText(ical.PropUID, r.UID)
	todo.Props.SetText(ical.PropSummary, r.Title)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, c.Now().UTC())
	if r.AllDay {
		todo.Props.SetDate(ical.PropDue, r.Due)
		todo.Props.SetDate(ical.PropDateTimeStart, r.Start())
	} else {
		todo.Props.SetDateTime(ical.PropDue, r.Due.UTC())
		todo.Props.SetDateTime(ical.PropDateTimeStart, r.Start().UTC())
	}
	if r.URL != "" {
		url := ical.NewProp(ical.PropURL)
		url.Value = r.URL
		todo.Props.Set(url)
	}

	status := statusNeedsAction
	if r.Completed {
		status = statusCompleted
		todo.Props.SetDateTime(ical.PropCompleted, c.Now().UTC())
	}
	todo.Props.SetText(ical.PropStatus, status)
	pushed := statusNeedsAction
	if r.PushedCompleted {
		pushed = statusCompleted
	}
	todo.Props.SetText(propPushedStatus, pushed)

	var children []*ical.Component
	for _, child := range todo.Children {
		if child.Name != ical.CompAlarm {
			children = append(children, child)
		}
	}
	if r.Alarm != nil {
		alarm := ical.NewComponent(ical.CompAlarm)
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, r.Title)
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = formatTrigger(*r.Alarm)
		alarm.Props.Set(trigger)
		children = append(children, alarm)
	}
	todo.Children = children
}

func (c *Collection) reminder(todo *ical.Component) (domain.Reminder, error) {
	var r domain.Reminder
	uid, err := todo.Props.Text(ical.PropUID)
	if err != nil || uid == "" {
		return r, errors.New("missing UID")
	}
	r.UID = uid
	r.Title, _ = todo.Props.Text(ical.PropSummary)

	due := todo.Props.Get(ical.PropDue)
	if due == nil {
		return r, fmt.Errorf("todo %s has no DUE", uid)
	}
	r.AllDay = due.ValueType() == ical.ValueDate
	if r.Due, err = due.DateTime(c.Location); err != nil {
		return r, fmt.Errorf("todo %s: %w", uid, err)
	}

	if url := todo.Props.Get(ical.PropURL); url != nil {
		r.URL = url.Value
	}
	status, _ := todo.Props.Text(ical.PropStatus)
	r.Completed = strings.EqualFold(status, statusCompleted)
	pushed, _ := todo.Props.Text(propPushedStatus)
	r.PushedCompleted = strings.EqualFold(pushed, statusCompleted)

	for _, child := range todo.Children {
		if child.Name != ical.CompAlarm {
			continue
		}
		trigger := child.Props.Get(ical.PropTrigger)
		if trigger == nil {
			continue
		}
		if d, ok := parseTrigger(trigger.Value); ok {
			r.Alarm = &d
			break
		}
	}
	return r, nil
}

// formatTrigger renders an offset before the due time as a negative
// RFC 5545 duration, e.g. -PT15M
func formatTrigger(before time.Duration) string {
	minutes := int(before / time.Minute)
	if minutes <= 0 {
		return "PT0S"
	}
	return fmt.Sprintf("-PT%dM", minutes)
}

// parseTrigger reads the relative triggers formatTrigger writes plus the
// hour and second forms other clients use
func parseTrigger(v string) (time.Duration, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	before := strings.HasPrefix(v, "-")
	v = strings.TrimLeft(v, "+-")
	if !strings.HasPrefix(v, "PT") {
		return 0, false
	}
	d, err := time.ParseDuration(strings.ToLower(v[2:]))
	if err != nil || d < 0 {
		return 0, false
	}
	if !before && d != 0 {
		// alarms after the due time are not representable
		return 0, false
	}
	return d, true
}
