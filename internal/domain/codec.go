package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Annotation markers, in the order the encoder writes them
const (
	markDoDate     = "📅"
	markDoTime     = "⏰"
	markRecurrence = "🔁"
	markCompleted  = "✅"
	markURL        = "🔗"
	markGoal       = "🎯"
	markSection    = "📂"
	markSource     = "📄"
)

// markerRunes keeps a source path from swallowing earlier annotations
const markerRunes = markDoDate + markDoTime + markRecurrence + markCompleted + markURL + markGoal + markSection + markSource

const (
	headingHabits      = "Habits"
	headingCompleted   = "Completed"
	frontmatterDivider = "---"
)

// annotation extracts one trailing marker from a task line
type annotation struct {
	name    string
	pattern *regexp.Regexp
	apply   func(t *Task, m []string) bool
}

var annotations = []annotation{
	{
		name:    "id",
		pattern: regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9-]+)$`),
		apply: func(t *Task, m []string) bool {
			t.ID = m[1]
			return true
		},
	},
	{
		name:    "source",
		pattern: regexp.MustCompile(`(?:^|\s)` + markSource + ` ([^` + markerRunes + `]+?):(\d+)$`),
		apply: func(t *Task, m []string) bool {
			line, err := strconv.Atoi(m[2])
			if err != nil {
				return false
			}
			t.SourceFile, t.SourceLine = m[1], line
			return true
		},
	},
	{
		name:    "section",
		pattern: regexp.MustCompile(`(?:^|\s)` + markSection + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			s := Section(m[1])
			if !s.Valid() {
				return false
			}
			t.Section = s
			return true
		},
	},
	{
		name:    "goal",
		pattern: regexp.MustCompile(`(?:^|\s)` + markGoal + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			t.GoalID = m[1]
			return true
		},
	},
	{
		name:    "url",
		pattern: regexp.MustCompile(`(?:^|\s)` + markURL + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			t.URL = m[1]
			return true
		},
	},
	{
		name:    "completed",
		pattern: regexp.MustCompile(`(?:^|\s)` + markCompleted + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			if !ValidDate(m[1]) {
				return false
			}
			t.CompletedAt = m[1]
			return true
		},
	},
	{
		name:    "recurrence",
		pattern: regexp.MustCompile(`(?:^|\s)` + markRecurrence + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			rec, err := ParseRecurrence(m[1])
			if err != nil {
				return false
			}
			t.Recurrence = rec
			return true
		},
	},
	{
		name:    "time",
		pattern: regexp.MustCompile(`(?:^|\s)` + markDoTime + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			if !ValidTime(m[1]) {
				return false
			}
			t.DoTime = m[1]
			return true
		},
	},
	{
		name:    "date",
		pattern: regexp.MustCompile(`(?:^|\s)` + markDoDate + ` (\S+)$`),
		apply: func(t *Task, m []string) bool {
			if !ValidDate(m[1]) {
				return false
			}
			t.DoDate = m[1]
			return true
		},
	},
}

// ParseTaskText splits the text after a checkbox into a title and its trailing annotations.
// Annotations are peeled off the end of the line one at a time in any order; the first
// trailing token that is not a well-formed, not-yet-seen annotation ends the scan and
// everything before it stays in the title.
func ParseTaskText(text string) Task {
	var t Task
	rest := strings.TrimRight(text, " \t")
	seen := map[string]bool{}

	for {
		matched := false
		for _, a := range annotations {
			if seen[a.name] {
				continue
			}
			loc := a.pattern.FindStringSubmatchIndex(rest)
			if loc == nil {
				continue
			}
			m := make([]string, len(loc)/2)
			for i := range m {
				if loc[2*i] >= 0 {
					m[i] = rest[loc[2*i]:loc[2*i+1]]
				}
			}
			if !a.apply(&t, m) {
				continue
			}
			seen[a.name] = true
			rest = strings.TrimRight(rest[:loc[0]], " \t")
			matched = true
			break
		}
		if !matched {
			break
		}
	}

	t.Title = strings.TrimSpace(rest)
	return t
}

// FormatTaskText renders a task's title and annotations in the fixed encoder order.
// The section marker is only written for archived tasks, whose bucket doesn't imply it.
func FormatTaskText(t Task, archived bool) string {
	var b strings.Builder
	b.WriteString(t.Title)
	add := func(mark, value string) {
		if value == "" {
			return
		}
		b.WriteString(" ")
		b.WriteString(mark)
		b.WriteString(" ")
		b.WriteString(value)
	}
	add(markDoDate, t.DoDate)
	add(markDoTime, t.DoTime)
	if t.Recurrence != nil {
		add(markRecurrence, t.Recurrence.String())
	}
	add(markCompleted, t.CompletedAt)
	add(markURL, t.URL)
	add(markGoal, t.GoalID)
	if archived {
		add(markSection, string(t.Section))
	}
	if t.SourceFile != "" {
		add(markSource, fmt.Sprintf("%s:%d", t.SourceFile, t.SourceLine))
	}
	if t.ID != "" {
		b.WriteString(" ^")
		b.WriteString(t.ID)
	}
	return b.String()
}

// String renders the recurrence as type:interval[:aux]
func (r Recurrence) String() string {
	s := fmt.Sprintf("%s:%d", r.Type, r.Interval)
	switch {
	case r.Type == RecurWeeks && r.DayOfWeek != nil:
		s += fmt.Sprintf(":%d", *r.DayOfWeek)
	case r.Type == RecurMonths && r.DayOfMonth != nil:
		s += fmt.Sprintf(":%d", *r.DayOfMonth)
	}
	return s
}

// ParseRecurrence parses type:interval[:aux]; aux is the weekday for weeks and
// the day of month for months
func ParseRecurrence(s string) (*Recurrence, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid recurrence: %q", s)
	}
	interval, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence interval: %q", parts[1])
	}
	rec := &Recurrence{Type: RecurrenceType(parts[0]), Interval: interval}
	if len(parts) == 3 {
		aux, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid recurrence day: %q", parts[2])
		}
		switch rec.Type {
		case RecurWeeks:
			rec.DayOfWeek = &aux
		case RecurMonths:
			rec.DayOfMonth = &aux
		default:
			return nil, fmt.Errorf("%s recurrence takes no day", rec.Type)
		}
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// frontmatter is the YAML metadata block at the top of the focus document
type frontmatter struct {
	WeekOf         string       `yaml:"weekOf"`
	HabitResetDate string       `yaml:"habitResetDate"`
	Goals          []WeeklyGoal `yaml:"goals"`
}

// DecodeWarning reports a line the decoder skipped or could not fully understand
type DecodeWarning struct {
	Line    int
	Message string
}

func (w DecodeWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

type decodeState int

const (
	stateNone decodeState = iota
	stateHabits
	stateActive
	stateCompleted
	stateMonth
	stateSkippedMonth
)

// Decode parses a focus document. It never fails: malformed pieces are skipped
// and reported as warnings.
func Decode(text string) (*FocusData, []DecodeWarning) {
	data := &FocusData{CompletedTasks: map[string][]Task{}}
	var warnings []DecodeWarning

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	start := 0
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == frontmatterDivider {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == frontmatterDivider {
				end = i
				break
			}
		}
		if end > 0 {
			var fm frontmatter
			if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fm); err != nil {
				warnings = append(warnings, DecodeWarning{Line: 1, Message: fmt.Sprintf("ignoring unreadable frontmatter: %v", err)})
			} else {
				data.WeekOf = fm.WeekOf
				data.HabitResetDate = fm.HabitResetDate
				data.Goals = fm.Goals
			}
			start = end + 1
		}
	}

	state := stateNone
	var section Section
	var month string

	for i := start; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if heading, ok := strings.CutPrefix(trimmed, "### "); ok {
			if state == stateCompleted || state == stateMonth || state == stateSkippedMonth {
				if key, ok := ParseMonthHeading(heading); ok {
					state, month = stateMonth, key
				} else {
					state = stateSkippedMonth
					warnings = append(warnings, DecodeWarning{Line: i + 1, Message: fmt.Sprintf("unrecognized month heading %q, its tasks are dropped", heading)})
				}
			}
			continue
		}
		if heading, ok := strings.CutPrefix(trimmed, "## "); ok {
			state, section = sectionForHeading(heading)
			continue
		}

		cb, ok := ParseCheckbox(line)
		if !ok {
			continue
		}

		switch state {
		case stateHabits:
			data.Habits = append(data.Habits, parseHabit(cb))
		case stateActive:
			t := ParseTaskText(cb.Text)
			t.Completed = cb.Checked
			t.Section = section
			list := data.List(section)
			*list = append(*list, t)
		case stateMonth:
			t := ParseTaskText(cb.Text)
			t.Completed = true
			if t.CompletedAt == "" {
				t.CompletedAt = month + "-01"
			}
			if t.Section == "" {
				t.Section = SectionUnscheduled
			}
			data.CompletedTasks[month] = append(data.CompletedTasks[month], t)
		case stateSkippedMonth:
			// dropped with the heading warning
		default:
			warnings = append(warnings, DecodeWarning{Line: i + 1, Message: "checkbox outside of a known section"})
		}
	}

	data.Normalize()
	return data, warnings
}

func sectionForHeading(heading string) (decodeState, Section) {
	switch strings.ToLower(strings.TrimSpace(heading)) {
	case "habits", "daily habits":
		return stateHabits, ""
	case "immediate":
		return stateActive, SectionImmediate
	case "this week":
		return stateActive, SectionThisWeek
	case "unscheduled", "unscheduled backlog":
		return stateActive, SectionUnscheduled
	case "completed":
		return stateCompleted, ""
	}
	return stateNone, ""
}

var habitIDPattern = regexp.MustCompile(`\s*\^([A-Za-z0-9-]+)$`)

func parseHabit(cb CheckboxLine) DailyHabit {
	h := DailyHabit{CompletedToday: cb.Checked}
	text := strings.TrimRight(cb.Text, " \t")
	if m := habitIDPattern.FindStringSubmatchIndex(text); m != nil {
		h.ID = text[m[2]:m[3]]
		text = text[:m[0]]
	}
	h.Title = strings.TrimSpace(text)
	return h
}

// Encode renders the focus document
func Encode(data *FocusData) string {
	var b strings.Builder

	fm, err := yaml.Marshal(frontmatter{
		WeekOf:         data.WeekOf,
		HabitResetDate: data.HabitResetDate,
		Goals:          data.Goals,
	})
	if err != nil {
		// only reachable with unmarshalable types, which frontmatter doesn't have
		panic(fmt.Sprintf("encode frontmatter: %v", err))
	}
	b.WriteString(frontmatterDivider + "\n")
	b.Write(fm)
	b.WriteString(frontmatterDivider + "\n")

	b.WriteString("\n## " + headingHabits + "\n")
	for _, h := range data.Habits {
		cb := CheckboxLine{Bullet: "-", Checked: h.CompletedToday, Text: h.Title}
		if h.ID != "" {
			cb.Text += " ^" + h.ID
		}
		b.WriteString(cb.String() + "\n")
	}

	for _, s := range Sections {
		b.WriteString("\n## " + s.Title() + "\n")
		for _, t := range *data.List(s) {
			cb := CheckboxLine{Bullet: "-", Checked: t.Completed, Text: FormatTaskText(t, false)}
			b.WriteString(cb.String() + "\n")
		}
	}

	b.WriteString("\n## " + headingCompleted + "\n")
	for _, key := range data.MonthKeys() {
		tasks := data.CompletedTasks[key]
		if len(tasks) == 0 {
			continue
		}
		b.WriteString("\n### " + MonthHeading(key) + "\n")
		for _, t := range tasks {
			cb := CheckboxLine{Bullet: "-", Checked: true, Text: FormatTaskText(t, true)}
			b.WriteString(cb.String() + "\n")
		}
	}

	return b.String()
}

// Normalize drops empty slices and archive buckets so equal documents compare equal
func (d *FocusData) Normalize() {
	if len(d.Goals) == 0 {
		d.Goals = nil
	}
	if len(d.Habits) == 0 {
		d.Habits = nil
	}
	for _, s := range Sections {
		if list := d.List(s); len(*list) == 0 {
			*list = nil
		}
	}
	if d.CompletedTasks == nil {
		d.CompletedTasks = map[string][]Task{}
	}
	for k, tasks := range d.CompletedTasks {
		if len(tasks) == 0 {
			delete(d.CompletedTasks, k)
		}
	}
}
