package domain

import (
	"fmt"
	"strings"
)

// Settings holds the user-level configuration kept next to the vault
type Settings struct {
	FocusFile         string           `yaml:"focusFile"`
	MaxImmediate      int              `yaml:"maxImmediate"`
	RolloverImmediate bool             `yaml:"rolloverImmediate"`
	RolloverThisWeek  bool             `yaml:"rolloverThisWeek"`
	AutoSortMinutes   int              `yaml:"autoSortMinutes"`
	Scan              ScanSettings     `yaml:"scan"`
	CaptureFile       string           `yaml:"captureFile,omitempty"`
	CaptureSection    Section          `yaml:"captureSection"`
	Review            ReviewSettings   `yaml:"review"`
	Remote            RemoteConfig     `yaml:"remote"`
	Calendar          CalendarSettings `yaml:"calendar"`
}

// ScanSettings controls importing checkbox lines from the rest of the vault
type ScanSettings struct {
	Enabled        bool     `yaml:"enabled"`
	Tag            string   `yaml:"tag,omitempty"`
	ExcludeFolders []string `yaml:"excludeFolders,omitempty"`
}

// ReviewSettings controls the end-of-day review note
type ReviewSettings struct {
	Time        string `yaml:"time"`
	PathPattern string `yaml:"pathPattern"`
	Template    string `yaml:"template,omitempty"`
}

// RemoteConfig points at the remote store
type RemoteConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Database string `yaml:"database,omitempty"`
	Email    string `yaml:"email,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// CalendarSettings points at the calendar collection
type CalendarSettings struct {
	Enabled bool        `yaml:"enabled"`
	Dir     string      `yaml:"dir,omitempty"`
	Alert   AlertOption `yaml:"alert"`
}

// Defaults for settings that are left unset
const (
	DefaultFocusFile         = "Weekly Focus.md"
	DefaultAutoSortMinutes   = 5
	DefaultReviewTime        = "17:00"
	DefaultReviewPathPattern = "Reviews/YYYY-MM-DD"
)

// DefaultSettings returns the settings of a fresh install
func DefaultSettings() Settings {
	s := Settings{
		RolloverImmediate: true,
		RolloverThisWeek:  true,
	}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero values with their defaults
func (s *Settings) ApplyDefaults() {
	if s.FocusFile == "" {
		s.FocusFile = DefaultFocusFile
	}
	if s.MaxImmediate < 1 {
		s.MaxImmediate = DefaultMaxImmediate
	}
	if s.AutoSortMinutes < 1 {
		s.AutoSortMinutes = DefaultAutoSortMinutes
	}
	if !s.CaptureSection.Valid() {
		s.CaptureSection = SectionUnscheduled
	}
	if s.Review.Time == "" {
		s.Review.Time = DefaultReviewTime
	}
	if s.Review.PathPattern == "" {
		s.Review.PathPattern = DefaultReviewPathPattern
	}
	if s.Calendar.Alert == "" {
		s.Calendar.Alert = AlertNone
	}
}

// Validate checks the values a user may have typed by hand
func (s Settings) Validate() error {
	if !strings.HasSuffix(strings.ToLower(s.FocusFile), ".md") {
		return fmt.Errorf("focusFile must be a markdown file: %q", s.FocusFile)
	}
	if !ValidTime(s.Review.Time) {
		return fmt.Errorf("review.time must be HH:MM: %q", s.Review.Time)
	}
	if _, err := ParseAlert(string(s.Calendar.Alert)); err != nil {
		return err
	}
	if s.Remote.Enabled && s.Remote.Database == "" {
		return fmt.Errorf("remote.database is required when remote sync is enabled")
	}
	if s.Calendar.Enabled && s.Calendar.Dir == "" {
		return fmt.Errorf("calendar.dir is required when calendar sync is enabled")
	}
	return nil
}
