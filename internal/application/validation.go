package application

import (
	"fmt"
	"strings"
	"unicode"

	"focuslist/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "doDate" -> "do date")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"taskID":  "task ID",
		"goalID":  "goal ID",
		"habitID": "habit ID",
		"doDate":  "do date",
		"doTime":  "do time",
		"title":   "title",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateSection checks that a section is one of the active sections
func ValidateSection(fieldName string, s domain.Section) error {
	if !s.Valid() {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("unknown section: %q", s),
		}
	}
	return nil
}

// ValidateSchedule checks optional date and time fields. A time needs a date.
func ValidateSchedule(doDate, doTime string) error {
	if doDate != "" && !domain.ValidDate(doDate) {
		return &ValidationError{Field: "doDate", Message: fmt.Sprintf("expected YYYY-MM-DD, got: %s", doDate)}
	}
	if doTime != "" {
		if !domain.ValidTime(doTime) {
			return &ValidationError{Field: "doTime", Message: fmt.Sprintf("expected HH:MM, got: %s", doTime)}
		}
		if doDate == "" {
			return &ValidationError{Field: "doTime", Message: "do time requires a do date"}
		}
	}
	return nil
}

// ValidateRecurrence parses an optional type:interval[:day] rule
func ValidateRecurrence(rule string) (*domain.Recurrence, error) {
	if rule == "" {
		return nil, nil
	}
	rec, err := domain.ParseRecurrence(rule)
	if err != nil {
		return nil, &ValidationError{Field: "recurrence", Message: err.Error()}
	}
	return rec, nil
}

// ValidateTitle checks a task title is present and survives being written
// to the focus document: a title ending in something that reads as an
// annotation would lose that tail to the annotation on reload.
func ValidateTitle(fieldName, title string) error {
	if err := ValidateRequired(fieldName, title); err != nil {
		return err
	}
	normalized := domain.NormalizeTitle(title)
	if parsed := domain.ParseTaskText(normalized); parsed.Title != normalized {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot end with an annotation marker: %q", formatFieldName(fieldName), normalized),
		}
	}
	return nil
}

// ValidateURL checks an optional link holds no whitespace
func ValidateURL(fieldName, url string) error {
	if strings.ContainsFunc(url, unicode.IsSpace) {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s cannot contain spaces", formatFieldName(fieldName)),
		}
	}
	return nil
}
