package domain

import (
	"cmp"
	"slices"
)

// RemoteTask is one row of the remote tasks table. Active and archived tasks
// share the row shape; ArchivedMonth is empty while the task is active.
type RemoteTask struct {
	ID            string
	Title         string
	Completed     bool
	CompletedAt   string
	Section       Section
	ArchivedMonth string
	Position      int
	URL           string
	DoDate        string
	DoTime        string
	Recurrence    string
	GoalID        string
	SourceFile    string
	SourceLine    int
}

// RemoteGoal is one row of the remote goals table
type RemoteGoal struct {
	ID       string
	Title    string
	Position int
}

// RemoteHabit is one row of the remote habits table
type RemoteHabit struct {
	ID       string
	Title    string
	Position int
}

// HabitCompletion records that a habit was done on a date
type HabitCompletion struct {
	HabitID string
	Date    string
}

// RemoteSettings is the per-user settings row
type RemoteSettings struct {
	WeekOf         string
	HabitResetDate string
}

// RemoteSnapshot is the full remote state of one user
type RemoteSnapshot struct {
	Tasks       []RemoteTask
	Goals       []RemoteGoal
	Habits      []RemoteHabit
	Completions []HabitCompletion
	Settings    *RemoteSettings
}

// Empty reports whether the remote holds no tasks, active or archived
func (s RemoteSnapshot) Empty() bool {
	return len(s.Tasks) == 0
}

// IDSet is a set of entity ids
type IDSet map[string]struct{}

// Add inserts ids into the set
func (s IDSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports membership
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Minus returns the ids of s that are not in other
func (s IDSet) Minus(other IDSet) []string {
	var out []string
	for id := range s {
		if !other.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// SnapshotIDs groups the ids of a snapshot per entity kind
type SnapshotIDs struct {
	Tasks  IDSet
	Goals  IDSet
	Habits IDSet
}

// NewSnapshotIDs returns empty id sets
func NewSnapshotIDs() SnapshotIDs {
	return SnapshotIDs{Tasks: IDSet{}, Goals: IDSet{}, Habits: IDSet{}}
}

// IDs collects the ids in the snapshot
func (s RemoteSnapshot) IDs() SnapshotIDs {
	ids := NewSnapshotIDs()
	for _, t := range s.Tasks {
		ids.Tasks.Add(t.ID)
	}
	for _, g := range s.Goals {
		ids.Goals.Add(g.ID)
	}
	for _, h := range s.Habits {
		ids.Habits.Add(h.ID)
	}
	return ids
}

// Merge adds every id of other into ids
func (ids SnapshotIDs) Merge(other SnapshotIDs) {
	for id := range other.Tasks {
		ids.Tasks.Add(id)
	}
	for id := range other.Goals {
		ids.Goals.Add(id)
	}
	for id := range other.Habits {
		ids.Habits.Add(id)
	}
}

// Deletions lists the ids that were seen remotely but no longer exist locally
func (ids SnapshotIDs) Deletions(local SnapshotIDs) SnapshotIDs {
	del := NewSnapshotIDs()
	del.Tasks.Add(ids.Tasks.Minus(local.Tasks)...)
	del.Goals.Add(ids.Goals.Minus(local.Goals)...)
	del.Habits.Add(ids.Habits.Minus(local.Habits)...)
	return del
}

// Empty reports whether no ids are present
func (ids SnapshotIDs) Empty() bool {
	return len(ids.Tasks) == 0 && len(ids.Goals) == 0 && len(ids.Habits) == 0
}

// ToSnapshot maps a focus document onto remote rows. Habit completions are
// only emitted for today.
func ToSnapshot(d *FocusData, today string) RemoteSnapshot {
	var s RemoteSnapshot
	for _, sec := range Sections {
		for i, t := range *d.List(sec) {
			s.Tasks = append(s.Tasks, toRemoteTask(t, "", i))
		}
	}
	for _, key := range d.MonthKeys() {
		for i, t := range d.CompletedTasks[key] {
			s.Tasks = append(s.Tasks, toRemoteTask(t, key, i))
		}
	}
	for i, g := range d.Goals {
		s.Goals = append(s.Goals, RemoteGoal{ID: g.ID, Title: g.Title, Position: i})
	}
	for i, h := range d.Habits {
		s.Habits = append(s.Habits, RemoteHabit{ID: h.ID, Title: h.Title, Position: i})
		if h.CompletedToday {
			s.Completions = append(s.Completions, HabitCompletion{HabitID: h.ID, Date: today})
		}
	}
	s.Settings = &RemoteSettings{WeekOf: d.WeekOf, HabitResetDate: d.HabitResetDate}
	return s
}

func toRemoteTask(t Task, month string, pos int) RemoteTask {
	rt := RemoteTask{
		ID:            t.ID,
		Title:         t.Title,
		Completed:     t.Completed,
		CompletedAt:   t.CompletedAt,
		Section:       t.Section,
		ArchivedMonth: month,
		Position:      pos,
		URL:           t.URL,
		DoDate:        t.DoDate,
		DoTime:        t.DoTime,
		GoalID:        t.GoalID,
		SourceFile:    t.SourceFile,
		SourceLine:    t.SourceLine,
	}
	if t.Recurrence != nil {
		rt.Recurrence = t.Recurrence.String()
	}
	return rt
}

// FromSnapshot rebuilds a focus document from remote rows. Archived rows are
// bucketed by their archive month and habit completion is derived from
// today's completion rows.
func FromSnapshot(s RemoteSnapshot, today string) *FocusData {
	d := NewFocusData(today)
	if s.Settings != nil {
		d.WeekOf = s.Settings.WeekOf
		d.HabitResetDate = s.Settings.HabitResetDate
	}

	tasks := append([]RemoteTask(nil), s.Tasks...)
	sortByPosition(tasks, func(t RemoteTask) int { return t.Position })
	for _, rt := range tasks {
		t := fromRemoteTask(rt)
		if rt.ArchivedMonth != "" {
			t.Completed = true
			d.CompletedTasks[rt.ArchivedMonth] = append(d.CompletedTasks[rt.ArchivedMonth], t)
			continue
		}
		d.AppendTask(t)
	}

	goals := append([]RemoteGoal(nil), s.Goals...)
	sortByPosition(goals, func(g RemoteGoal) int { return g.Position })
	for _, g := range goals {
		d.Goals = append(d.Goals, WeeklyGoal{ID: g.ID, Title: g.Title})
	}

	done := IDSet{}
	for _, c := range s.Completions {
		if c.Date == today {
			done.Add(c.HabitID)
		}
	}
	habits := append([]RemoteHabit(nil), s.Habits...)
	sortByPosition(habits, func(h RemoteHabit) int { return h.Position })
	for _, h := range habits {
		d.Habits = append(d.Habits, DailyHabit{ID: h.ID, Title: h.Title, CompletedToday: done.Has(h.ID)})
	}

	d.Normalize()
	return d
}

func fromRemoteTask(rt RemoteTask) Task {
	t := Task{
		ID:          rt.ID,
		Title:       rt.Title,
		Completed:   rt.Completed,
		CompletedAt: rt.CompletedAt,
		Section:     rt.Section,
		URL:         rt.URL,
		DoDate:      rt.DoDate,
		DoTime:      rt.DoTime,
		GoalID:      rt.GoalID,
		SourceFile:  rt.SourceFile,
		SourceLine:  rt.SourceLine,
	}
	if !t.Section.Valid() {
		t.Section = SectionUnscheduled
	}
	if rt.Recurrence != "" {
		if rec, err := ParseRecurrence(rt.Recurrence); err == nil {
			t.Recurrence = rec
		}
	}
	return t
}

// sortByPosition orders rows by position; rows sharing a position keep their order.
// Section grouping is handled by AppendTask, so position only matters within a bucket.
func sortByPosition[T any](rows []T, pos func(T) int) {
	slices.SortStableFunc(rows, func(a, b T) int { return cmp.Compare(pos(a), pos(b)) })
}
