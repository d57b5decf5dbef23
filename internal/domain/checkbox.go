package domain

import "regexp"

// checkboxPattern matches "- [ ] text" style list items, with optional indentation
var checkboxPattern = regexp.MustCompile(`^(\s*)([-*+]) \[([ xX])\](?: (.*))?$`)

// CheckboxLine is a parsed markdown checkbox list item
type CheckboxLine struct {
	Indent  string
	Bullet  string
	Checked bool
	Text    string
}

// ParseCheckbox parses a checkbox line; the mark is case-insensitive
func ParseCheckbox(line string) (CheckboxLine, bool) {
	m := checkboxPattern.FindStringSubmatch(line)
	if m == nil {
		return CheckboxLine{}, false
	}
	return CheckboxLine{
		Indent:  m[1],
		Bullet:  m[2],
		Checked: m[3] != " ",
		Text:    m[4],
	}, true
}

// String renders the checkbox line
func (c CheckboxLine) String() string {
	mark := " "
	if c.Checked {
		mark = "x"
	}
	line := c.Indent + c.Bullet + " [" + mark + "]"
	if c.Text != "" {
		line += " " + c.Text
	}
	return line
}

// SetCheckboxMark rewrites the mark of a checkbox line, leaving everything else intact
func SetCheckboxMark(line string, checked bool) (string, bool) {
	cb, ok := ParseCheckbox(line)
	if !ok {
		return line, false
	}
	cb.Checked = checked
	return cb.String(), true
}
