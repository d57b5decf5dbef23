// Package scheduler runs the background jobs: periodic auto-sort, vault
// scans after note edits, refreshes after focus document edits, the daily
// review note and the weekly rollover.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"focuslist/internal/debounce"
	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

// Debounce windows for change notifications
const (
	ScanDelay    = 2 * time.Second
	RefreshDelay = 500 * time.Millisecond
)

// Job is one unit of background work
type Job func(ctx context.Context) error

// Jobs are the callbacks the scheduler drives. Nil jobs are skipped.
type Jobs struct {
	AutoSort Job
	Scan     Job
	Refresh  Job
	Review   Job
	// Rollover runs the weekly rollover and the daily habit reset
	Rollover Job
}

// Scheduler owns the timers; Stop cancels all of them
type Scheduler struct {
	jobs     Jobs
	settings domain.Settings
	watcher  ports.ChangeWatcher
	notifier ports.Notifier

	Now          func() time.Time
	ScanDelay    time.Duration
	RefreshDelay time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	scan    *debounce.Debouncer
	refresh *debounce.Debouncer
	review  *time.Timer
}

// New creates a scheduler. watcher may be nil when nothing watches the vault.
func New(settings domain.Settings, watcher ports.ChangeWatcher, notifier ports.Notifier, jobs Jobs) *Scheduler {
	return &Scheduler{
		jobs:         jobs,
		settings:     settings,
		watcher:      watcher,
		notifier:     notifier,
		ScanDelay:    ScanDelay,
		RefreshDelay: RefreshDelay,
	}
}

func (s *Scheduler) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Start runs the startup jobs and arms every timer
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.scan = debounce.New(s.ScanDelay, func() { s.run(ctx, "scan", s.jobs.Scan) })
	s.refresh = debounce.New(s.RefreshDelay, func() { s.run(ctx, "refresh", s.jobs.Refresh) })

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx, "rollover", s.jobs.Rollover)
		s.run(ctx, "auto-sort", s.jobs.AutoSort)
		if s.jobs.Scan != nil {
			s.run(ctx, "scan", s.jobs.Scan)
		}
		s.tick(ctx)
	}()

	if s.watcher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			err := s.watcher.Watch(ctx, s.changed)
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Warn("scheduler", "watcher stopped: %v", err)
			}
		}()
	}

	s.armReview(ctx)
	logging.Debug("scheduler", "started, auto-sort every %d minutes", s.settings.AutoSortMinutes)
}

// Stop cancels every timer and waits for running loops to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.scan.Stop()
	s.refresh.Stop()
	if s.review != nil {
		s.review.Stop()
		s.review = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// tick runs auto-sort and the rollover check on every period
func (s *Scheduler) tick(ctx context.Context) {
	minutes := s.settings.AutoSortMinutes
	if minutes < 1 {
		minutes = domain.DefaultAutoSortMinutes
	}
	ticker := time.NewTicker(time.Duration(minutes) * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, "rollover", s.jobs.Rollover)
			s.run(ctx, "auto-sort", s.jobs.AutoSort)
		}
	}
}

// changed routes watcher events: focus document edits refresh, note edits scan
func (s *Scheduler) changed(paths []string) {
	focus, notes := false, false
	for _, p := range paths {
		switch {
		case p == s.settings.FocusFile:
			focus = true
		case strings.HasSuffix(p, ".md"):
			notes = true
		}
	}
	if focus {
		s.refresh.Trigger()
	}
	if notes && s.jobs.Scan != nil {
		s.scan.Trigger()
	}
}

func (s *Scheduler) armReview(ctx context.Context) {
	if s.jobs.Review == nil {
		return
	}
	at, err := NextAt(s.now(), s.settings.Review.Time)
	if err != nil {
		logging.Warn("scheduler", "review disabled: %v", err)
		return
	}
	s.review = time.AfterFunc(at.Sub(s.now()), func() {
		s.run(ctx, "review", s.jobs.Review)
		s.mu.Lock()
		defer s.mu.Unlock()
		if ctx.Err() == nil {
			s.armReview(ctx)
		}
	})
	logging.Debug("scheduler", "review at %s", at.Format(time.DateTime))
}

// run executes a job and keeps its failure local
func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	if job == nil || ctx.Err() != nil {
		return
	}
	err := job(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	logging.Warn("scheduler", "%s failed: %v", name, err)
	if s.notifier != nil {
		s.notifier.Notify(fmt.Sprintf("%s failed: %s", name, logging.Truncate(err.Error(), 80)))
	}
}

// NextAt returns the next time of day hh:mm strictly after now
func NextAt(now time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse(domain.TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
