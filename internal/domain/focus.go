package domain

import (
	"reflect"
	"slices"
)

// IncompleteCount counts the incomplete tasks in a section
func (d *FocusData) IncompleteCount(s Section) int {
	n := 0
	for _, t := range *d.List(s) {
		if !t.Completed {
			n++
		}
	}
	return n
}

// HasRoom reports whether one more incomplete task fits in s.
// Only the immediate section is capped.
func (d *FocusData) HasRoom(s Section, maxImmediate int) bool {
	if s != SectionImmediate {
		return true
	}
	if maxImmediate < 1 {
		maxImmediate = DefaultMaxImmediate
	}
	return d.IncompleteCount(SectionImmediate) < maxImmediate
}

// AppendTask adds t to the end of its section
func (d *FocusData) AppendTask(t Task) {
	if !t.Section.Valid() {
		t.Section = SectionUnscheduled
	}
	list := d.List(t.Section)
	*list = append(*list, t)
}

// RemoveTask removes a task from an active section or the archive.
// An archive bucket left empty is deleted.
func (d *FocusData) RemoveTask(id string) (Task, bool) {
	ref, _, ok := d.FindTask(id)
	if !ok {
		return Task{}, false
	}
	return d.removeAt(ref), true
}

func (d *FocusData) removeAt(ref TaskRef) Task {
	if ref.Archived() {
		bucket := d.CompletedTasks[ref.MonthKey]
		t := bucket[ref.Index]
		bucket = slices.Delete(bucket, ref.Index, ref.Index+1)
		if len(bucket) == 0 {
			delete(d.CompletedTasks, ref.MonthKey)
		} else {
			d.CompletedTasks[ref.MonthKey] = bucket
		}
		return t
	}
	list := d.List(ref.Section)
	t := (*list)[ref.Index]
	*list = slices.Delete(*list, ref.Index, ref.Index+1)
	if len(*list) == 0 {
		*list = nil
	}
	return t
}

// Archive moves an active task into the archive bucket of today's month
func (d *FocusData) Archive(id, today string) (Task, bool) {
	ref, _, ok := d.FindTask(id)
	if !ok || ref.Archived() {
		return Task{}, false
	}
	t := d.removeAt(ref)
	t.Completed = true
	t.CompletedAt = today
	if d.CompletedTasks == nil {
		d.CompletedTasks = map[string][]Task{}
	}
	key := MonthKey(today)
	d.CompletedTasks[key] = append(d.CompletedTasks[key], t)
	return t, true
}

// Restore moves an archived task back to the section it was completed from
func (d *FocusData) Restore(id string) (Task, bool) {
	ref, _, ok := d.FindTask(id)
	if !ok || !ref.Archived() {
		return Task{}, false
	}
	t := d.removeAt(ref)
	t.Completed = false
	t.CompletedAt = ""
	d.AppendTask(t)
	return t, true
}

// SpawnNext builds the next occurrence of a recurring task. The copy keeps
// everything except identity and completion; its date moves forward from the
// task's own date, or from today when it had none.
func SpawnNext(t Task, today, id string) (Task, bool) {
	if t.Recurrence == nil {
		return Task{}, false
	}
	from := t.DoDate
	if from == "" {
		from = today
	}
	next, err := NextOccurrence(*t.Recurrence, from)
	if err != nil {
		return Task{}, false
	}
	n := t.Clone()
	n.ID = id
	n.Completed = false
	n.CompletedAt = ""
	n.DoDate = next
	n.SourceFile = ""
	n.SourceLine = 0
	return n, true
}

// Reopen restores an archived task and drops the occurrence its completion
// spawned, if that copy is still open and unedited. Nothing changes when the
// task's section has no room for it.
func (d *FocusData) Reopen(id string, maxImmediate int) (restored Task, dropped *Task, ok bool) {
	ref, t, found := d.FindTask(id)
	if !found || !ref.Archived() {
		return Task{}, nil, false
	}
	archived := t.Clone()

	spawned := d.spawnedIndex(archived)
	if archived.Section == SectionImmediate {
		if maxImmediate < 1 {
			maxImmediate = DefaultMaxImmediate
		}
		open := d.IncompleteCount(SectionImmediate)
		if spawned >= 0 {
			open--
		}
		if open >= maxImmediate {
			return Task{}, nil, false
		}
	}

	if spawned >= 0 {
		n := d.removeAt(TaskRef{Section: archived.Section, Index: spawned})
		dropped = &n
	}
	restored, _ = d.Restore(id)
	return restored, dropped, true
}

// spawnedIndex finds, in archived's section, the unedited copy SpawnNext
// built when archived was completed, or -1
func (d *FocusData) spawnedIndex(archived Task) int {
	want, ok := SpawnNext(archived, archived.CompletedAt, "")
	if !ok || !archived.Section.Valid() {
		return -1
	}
	for i, t := range *d.List(archived.Section) {
		if t.ID == archived.ID {
			continue
		}
		cand := t.Clone()
		cand.ID = ""
		if reflect.DeepEqual(cand, want) {
			return i
		}
	}
	return -1
}

// MoveTask moves an active task to the end of another section
func (d *FocusData) MoveTask(id string, to Section) (Task, bool) {
	ref, _, ok := d.FindTask(id)
	if !ok || ref.Archived() {
		return Task{}, false
	}
	t := d.removeAt(ref)
	t.Section = to
	d.AppendTask(t)
	return t, true
}

// Rollover carries incomplete work forward at the start of a week. The two
// passes run in order so a task can cascade from immediate to unscheduled.
func (d *FocusData) Rollover(today string, immediate, thisWeek bool) int {
	moved := 0
	if immediate {
		moved += d.demoteIncomplete(SectionImmediate, SectionThisWeek)
	}
	if thisWeek {
		moved += d.demoteIncomplete(SectionThisWeek, SectionUnscheduled)
	}
	d.WeekOf = today
	return moved
}

func (d *FocusData) demoteIncomplete(from, to Section) int {
	src := d.List(from)
	var keep, move []Task
	for _, t := range *src {
		if t.Completed {
			keep = append(keep, t)
			continue
		}
		t.Section = to
		move = append(move, t)
	}
	*src = keep
	dst := d.List(to)
	*dst = append(*dst, move...)
	return len(move)
}

// NeedsRollover reports whether weekOf belongs to an earlier ISO week than today
func (d *FocusData) NeedsRollover(today string) bool {
	if d.WeekOf == "" {
		return true
	}
	return d.WeekOf < today && !SameISOWeek(d.WeekOf, today)
}

// AutoSort promotes incomplete this-week tasks dated today into immediate
// while there is room, then sorts every section. Tasks that did not fit are
// returned as overflow and stay in this week.
func (d *FocusData) AutoSort(today string, maxImmediate int) (promoted, overflow []Task) {
	var due []string
	for _, t := range d.Tasks.ThisWeek {
		if !t.Completed && t.DoDate == today {
			due = append(due, t.ID)
		}
	}
	for _, id := range due {
		if !d.HasRoom(SectionImmediate, maxImmediate) {
			_, t, _ := d.FindTask(id)
			overflow = append(overflow, *t)
			continue
		}
		t, _ := d.MoveTask(id, SectionImmediate)
		promoted = append(promoted, t)
	}
	d.SortSections()
	return promoted, overflow
}

// SortSections stable-sorts every active section
func (d *FocusData) SortSections() {
	for _, s := range Sections {
		SortTasks(*d.List(s))
	}
}

// SortTasks orders tasks: incomplete first, dated before undated, then by
// date and time with untimed tasks after timed ones on the same day.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, compareTasks)
}

func compareTasks(a, b Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if (a.DoDate == "") != (b.DoDate == "") {
		if a.DoDate == "" {
			return 1
		}
		return -1
	}
	if a.DoDate != b.DoDate {
		if a.DoDate < b.DoDate {
			return -1
		}
		return 1
	}
	if (a.DoTime == "") != (b.DoTime == "") {
		if a.DoTime == "" {
			return 1
		}
		return -1
	}
	switch {
	case a.DoTime < b.DoTime:
		return -1
	case a.DoTime > b.DoTime:
		return 1
	}
	return 0
}

// ResolveOverflow applies a manual overflow decision: demoted immediate tasks
// go back to this week, then overflow tasks are promoted while capacity allows.
// limit is the capacity for this run only; it may exceed the configured maximum.
func (d *FocusData) ResolveOverflow(promote, demote []string, limit int) (promoted, remaining []string) {
	for _, id := range demote {
		ref, t, ok := d.FindTask(id)
		if !ok || ref.Archived() || t.Section != SectionImmediate {
			continue
		}
		d.MoveTask(id, SectionThisWeek)
	}
	for _, id := range promote {
		ref, t, ok := d.FindTask(id)
		if !ok || ref.Archived() || t.Section == SectionImmediate {
			continue
		}
		if !d.HasRoom(SectionImmediate, limit) {
			remaining = append(remaining, id)
			continue
		}
		d.MoveTask(id, SectionImmediate)
		promoted = append(promoted, id)
	}
	d.SortSections()
	return promoted, remaining
}

// AddGoal appends a goal
func (d *FocusData) AddGoal(g WeeklyGoal) {
	d.Goals = append(d.Goals, g)
}

// RenameGoal changes a goal's title
func (d *FocusData) RenameGoal(id, title string) bool {
	g := d.FindGoal(id)
	if g == nil {
		return false
	}
	g.Title = title
	return true
}

// DeleteGoal removes a goal and unlinks every task, active or archived, that referenced it
func (d *FocusData) DeleteGoal(id string) bool {
	idx := slices.IndexFunc(d.Goals, func(g WeeklyGoal) bool { return g.ID == id })
	if idx < 0 {
		return false
	}
	d.Goals = slices.Delete(d.Goals, idx, idx+1)
	if len(d.Goals) == 0 {
		d.Goals = nil
	}
	d.eachTask(func(t *Task) {
		if t.GoalID == id {
			t.GoalID = ""
		}
	})
	return true
}

// AddHabit appends a habit; false once MaxHabits is reached
func (d *FocusData) AddHabit(h DailyHabit) bool {
	if len(d.Habits) >= MaxHabits {
		return false
	}
	d.Habits = append(d.Habits, h)
	return true
}

// ToggleHabit flips today's completion of a habit
func (d *FocusData) ToggleHabit(id string) (DailyHabit, bool) {
	h := d.FindHabit(id)
	if h == nil {
		return DailyHabit{}, false
	}
	h.CompletedToday = !h.CompletedToday
	return *h, true
}

// DeleteHabit removes a habit
func (d *FocusData) DeleteHabit(id string) bool {
	idx := slices.IndexFunc(d.Habits, func(h DailyHabit) bool { return h.ID == id })
	if idx < 0 {
		return false
	}
	d.Habits = slices.Delete(d.Habits, idx, idx+1)
	if len(d.Habits) == 0 {
		d.Habits = nil
	}
	return true
}

// ResetHabits clears habit completion once today is past habitResetDate
func (d *FocusData) ResetHabits(today string) bool {
	if d.HabitResetDate != "" && today <= d.HabitResetDate {
		return false
	}
	for i := range d.Habits {
		d.Habits[i].CompletedToday = false
	}
	d.HabitResetDate = today
	return true
}

// eachTask visits every task in place, archive included
func (d *FocusData) eachTask(fn func(t *Task)) {
	for _, s := range Sections {
		list := *d.List(s)
		for i := range list {
			fn(&list[i])
		}
	}
	for _, tasks := range d.CompletedTasks {
		for i := range tasks {
			fn(&tasks[i])
		}
	}
}
