package domain

import "github.com/google/uuid"

// NewID returns a canonical task, goal or habit id
func NewID() string {
	return uuid.NewString()
}

// IsCanonicalID reports whether id is already in the canonical uuid form
func IsCanonicalID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// MigrateIDs rewrites every legacy id (tasks, goals and habits) into the
// canonical form and repoints goal references. Returns old → new for each
// id that changed.
func (d *FocusData) MigrateIDs(newID func() string) map[string]string {
	if newID == nil {
		newID = NewID
	}
	changed := map[string]string{}
	convert := func(id string) string {
		if IsCanonicalID(id) {
			return id
		}
		if n, ok := changed[id]; ok {
			return n
		}
		n := newID()
		if id != "" {
			changed[id] = n
		}
		return n
	}

	goals := map[string]string{}
	for i := range d.Goals {
		old := d.Goals[i].ID
		d.Goals[i].ID = convert(old)
		goals[old] = d.Goals[i].ID
	}
	for i := range d.Habits {
		d.Habits[i].ID = convert(d.Habits[i].ID)
	}
	d.eachTask(func(t *Task) {
		t.ID = convert(t.ID)
		if t.GoalID == "" {
			return
		}
		if g, ok := goals[t.GoalID]; ok {
			t.GoalID = g
		}
	})
	return changed
}

// AssignMissingIDs gives an id to every task, goal and habit that has none,
// e.g. lines typed into the document by hand. Returns how many were assigned.
func (d *FocusData) AssignMissingIDs(newID func() string) int {
	if newID == nil {
		newID = NewID
	}
	n := 0
	assign := func(id *string) {
		if *id == "" {
			*id = newID()
			n++
		}
	}
	for i := range d.Goals {
		assign(&d.Goals[i].ID)
	}
	for i := range d.Habits {
		assign(&d.Habits[i].ID)
	}
	d.eachTask(func(t *Task) { assign(&t.ID) })
	return n
}

// HasMissingIDs reports whether any task, goal or habit lacks an id
func (d *FocusData) HasMissingIDs() bool {
	missing := false
	for _, g := range d.Goals {
		missing = missing || g.ID == ""
	}
	for _, h := range d.Habits {
		missing = missing || h.ID == ""
	}
	d.eachTask(func(t *Task) { missing = missing || t.ID == "" })
	return missing
}
