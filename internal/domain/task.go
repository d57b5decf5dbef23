package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Section identifies one of the three active task buckets
type Section string

const (
	SectionImmediate   Section = "immediate"
	SectionThisWeek    Section = "thisWeek"
	SectionUnscheduled Section = "unscheduled"
)

// Sections lists the active sections in document order
var Sections = []Section{SectionImmediate, SectionThisWeek, SectionUnscheduled}

// ParseSection converts user input into a Section (case-insensitive, accepts a few aliases)
func ParseSection(s string) (Section, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate", "now", "i":
		return SectionImmediate, nil
	case "thisweek", "this-week", "this week", "week", "w":
		return SectionThisWeek, nil
	case "unscheduled", "backlog", "later", "u":
		return SectionUnscheduled, nil
	}
	return "", fmt.Errorf("unknown section: %q", s)
}

// Title returns the heading used for the section in the focus document
func (s Section) Title() string {
	switch s {
	case SectionImmediate:
		return "Immediate"
	case SectionThisWeek:
		return "This Week"
	case SectionUnscheduled:
		return "Unscheduled"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the active sections
func (s Section) Valid() bool {
	return slices.Contains(Sections, s)
}

// RecurrenceType is the unit a recurrence interval is measured in
type RecurrenceType string

const (
	RecurDays   RecurrenceType = "days"
	RecurWeeks  RecurrenceType = "weeks"
	RecurMonths RecurrenceType = "months"
)

// Recurrence describes how a task repeats
type Recurrence struct {
	Type       RecurrenceType
	Interval   int
	DayOfWeek  *int // 0 (Sunday) - 6, weeks only
	DayOfMonth *int // 1 - 31, months only
}

// Validate checks the recurrence fields against their ranges
func (r *Recurrence) Validate() error {
	if r == nil {
		return nil
	}
	switch r.Type {
	case RecurDays, RecurWeeks, RecurMonths:
	default:
		return fmt.Errorf("unknown recurrence type: %q", r.Type)
	}
	if r.Interval < 1 {
		return fmt.Errorf("recurrence interval must be positive, got %d", r.Interval)
	}
	if r.DayOfWeek != nil && (r.Type != RecurWeeks || *r.DayOfWeek < 0 || *r.DayOfWeek > 6) {
		return fmt.Errorf("invalid day of week for %s recurrence", r.Type)
	}
	if r.DayOfMonth != nil && (r.Type != RecurMonths || *r.DayOfMonth < 1 || *r.DayOfMonth > 31) {
		return fmt.Errorf("invalid day of month for %s recurrence", r.Type)
	}
	return nil
}

// Task is a single entry on the focus board.
// Dates are carried as YYYY-MM-DD strings; an empty string means unset.
type Task struct {
	ID          string
	Title       string
	Completed   bool
	CompletedAt string
	Section     Section
	URL         string
	DoDate      string
	DoTime      string // HH:MM
	Recurrence  *Recurrence
	GoalID      string
	SourceFile  string
	SourceLine  int // advisory only, completion sync re-locates by content
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	if t.Recurrence != nil {
		r := *t.Recurrence
		if r.DayOfWeek != nil {
			v := *r.DayOfWeek
			r.DayOfWeek = &v
		}
		if r.DayOfMonth != nil {
			v := *r.DayOfMonth
			r.DayOfMonth = &v
		}
		t.Recurrence = &r
	}
	return t
}

// WeeklyGoal is an optional tag applied to tasks
type WeeklyGoal struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// DailyHabit is a small daily checklist entry
type DailyHabit struct {
	ID             string
	Title          string
	CompletedToday bool
}

// MaxHabits caps the number of daily habits
const MaxHabits = 3

// DefaultMaxImmediate is the default capacity of the immediate section
const DefaultMaxImmediate = 3

// TaskLists holds the three active sections
type TaskLists struct {
	Immediate   []Task
	ThisWeek    []Task
	Unscheduled []Task
}

// FocusData is the whole focus document
type FocusData struct {
	WeekOf         string
	Goals          []WeeklyGoal
	Habits         []DailyHabit
	HabitResetDate string
	Tasks          TaskLists
	CompletedTasks map[string][]Task // keyed by YYYY-MM
}

// NewFocusData returns an empty document for the given day
func NewFocusData(today string) *FocusData {
	return &FocusData{
		WeekOf:         today,
		HabitResetDate: today,
		CompletedTasks: map[string][]Task{},
	}
}

// List returns a pointer to the slice backing a section
func (d *FocusData) List(s Section) *[]Task {
	switch s {
	case SectionImmediate:
		return &d.Tasks.Immediate
	case SectionThisWeek:
		return &d.Tasks.ThisWeek
	default:
		return &d.Tasks.Unscheduled
	}
}

// Clone returns a deep copy of the document
func (d *FocusData) Clone() *FocusData {
	c := &FocusData{
		WeekOf:         d.WeekOf,
		HabitResetDate: d.HabitResetDate,
		Goals:          slices.Clone(d.Goals),
		Habits:         slices.Clone(d.Habits),
		CompletedTasks: make(map[string][]Task, len(d.CompletedTasks)),
	}
	for _, s := range Sections {
		src := *d.List(s)
		if src == nil {
			continue
		}
		dst := make([]Task, len(src))
		for i, t := range src {
			dst[i] = t.Clone()
		}
		*c.List(s) = dst
	}
	for k, tasks := range d.CompletedTasks {
		dst := make([]Task, len(tasks))
		for i, t := range tasks {
			dst[i] = t.Clone()
		}
		c.CompletedTasks[k] = dst
	}
	return c
}

// MonthKeys returns archive keys ordered most recent first
func (d *FocusData) MonthKeys() []string {
	keys := make([]string, 0, len(d.CompletedTasks))
	for k := range d.CompletedTasks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	slices.Reverse(keys)
	return keys
}

// TaskRef locates a task inside the document
type TaskRef struct {
	Section  Section // active section, empty when archived
	MonthKey string  // archive bucket, empty when active
	Index    int
}

// Archived reports whether the reference points into the archive
func (r TaskRef) Archived() bool {
	return r.MonthKey != ""
}

// FindTask locates a task by id in the active sections and then the archive
func (d *FocusData) FindTask(id string) (TaskRef, *Task, bool) {
	for _, s := range Sections {
		list := *d.List(s)
		for i := range list {
			if list[i].ID == id {
				return TaskRef{Section: s, Index: i}, &list[i], true
			}
		}
	}
	for _, k := range d.MonthKeys() {
		list := d.CompletedTasks[k]
		for i := range list {
			if list[i].ID == id {
				return TaskRef{MonthKey: k, Index: i}, &list[i], true
			}
		}
	}
	return TaskRef{}, nil, false
}

// AllTasks returns every task, active sections first then the archive (most recent first)
func (d *FocusData) AllTasks() []Task {
	var all []Task
	for _, s := range Sections {
		all = append(all, *d.List(s)...)
	}
	for _, k := range d.MonthKeys() {
		all = append(all, d.CompletedTasks[k]...)
	}
	return all
}

// FindGoal returns the goal with the given id
func (d *FocusData) FindGoal(id string) *WeeklyGoal {
	for i := range d.Goals {
		if d.Goals[i].ID == id {
			return &d.Goals[i]
		}
	}
	return nil
}

// FindHabit returns the habit with the given id
func (d *FocusData) FindHabit(id string) *DailyHabit {
	for i := range d.Habits {
		if d.Habits[i].ID == id {
			return &d.Habits[i]
		}
	}
	return nil
}

// NormalizeTitle collapses whitespace so a title fits on a single document line
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}
