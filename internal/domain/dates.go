package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk date format
const DateLayout = "2006-01-02"

// TimeLayout is the on-disk time-of-day format
const TimeLayout = "15:04"

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	literalSpan = regexp.MustCompile(`\[[^\]]*\]`)
)

// Today returns the calendar date of now in its own location
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as a UTC midnight
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse(DateLayout, s)
}

// ValidDate reports whether s is a real YYYY-MM-DD date
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// ValidTime reports whether s is a HH:MM time of day
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// MonthKey returns the YYYY-MM archive key for a date
func MonthKey(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

// SameISOWeek reports whether two dates fall in the same ISO-8601 week
func SameISOWeek(a, b string) bool {
	ta, errA := ParseDate(a)
	tb, errB := ParseDate(b)
	if errA != nil || errB != nil {
		return false
	}
	ya, wa := ta.ISOWeek()
	yb, wb := tb.ISOWeek()
	return ya == yb && wa == wb
}

// FormatDate renders t using the tokens YYYY, MM, DD and WW (ISO week).
// Text inside square brackets is copied literally without the brackets.
func FormatDate(t time.Time, pattern string) string {
	var literals []string
	out := literalSpan.ReplaceAllStringFunc(pattern, func(span string) string {
		literals = append(literals, span[1:len(span)-1])
		return "\x00" + strconv.Itoa(len(literals)-1) + "\x00"
	})

	_, week := t.ISOWeek()
	out = strings.ReplaceAll(out, "YYYY", fmt.Sprintf("%04d", t.Year()))
	out = strings.ReplaceAll(out, "WW", fmt.Sprintf("%02d", week))
	out = strings.ReplaceAll(out, "MM", fmt.Sprintf("%02d", int(t.Month())))
	out = strings.ReplaceAll(out, "DD", fmt.Sprintf("%02d", t.Day()))

	for i, lit := range literals {
		out = strings.Replace(out, "\x00"+strconv.Itoa(i)+"\x00", lit, 1)
	}
	return out
}

// IsOverdue reports whether an incomplete task's scheduled date (and time) has passed
func IsOverdue(t Task, now time.Time) bool {
	if t.DoDate == "" || t.Completed {
		return false
	}
	today := Today(now)
	if t.DoDate < today {
		return true
	}
	if t.DoDate == today && t.DoTime != "" {
		return t.DoTime < now.Format(TimeLayout)
	}
	return false
}

// NextOccurrence computes the next date a recurring task is due after from
func NextOccurrence(rec Recurrence, from string) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	base, err := ParseDate(from)
	if err != nil {
		return "", err
	}

	var next time.Time
	switch rec.Type {
	case RecurDays:
		next = base.AddDate(0, 0, rec.Interval)
	case RecurWeeks:
		next = base.AddDate(0, 0, 7*rec.Interval)
		if rec.DayOfWeek != nil {
			shift := (*rec.DayOfWeek - int(next.Weekday()) + 7) % 7
			next = next.AddDate(0, 0, shift)
		}
	case RecurMonths:
		next = addMonthsClamped(base, rec.Interval, rec.DayOfMonth)
	}
	return next.Format(DateLayout), nil
}

// addMonthsClamped moves base forward by n months without overflowing into the next month
func addMonthsClamped(base time.Time, n int, dayOfMonth *int) time.Time {
	m := int(base.Month()) - 1 + n
	year := base.Year() + m/12
	month := time.Month(m%12 + 1)

	day := base.Day()
	if dayOfMonth != nil {
		day = *dayOfMonth
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthHeading renders a YYYY-MM key as "October 2026"
func MonthHeading(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %04d", monthNames[t.Month()-1], t.Year())
}

// ParseMonthHeading maps "october 2026" to "2026-10"; ok is false for unknown month names
func ParseMonthHeading(heading string) (string, bool) {
	fields := strings.Fields(heading)
	if len(fields) != 2 || len(fields[1]) != 4 {
		return "", false
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", false
	}
	for i, name := range monthNames {
		if strings.EqualFold(name, fields[0]) {
			return fmt.Sprintf("%04d-%02d", year, i+1), true
		}
	}
	return "", false
}
