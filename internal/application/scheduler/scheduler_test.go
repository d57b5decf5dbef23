package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

func TestNextAt(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		at   string
		want time.Time
	}{
		{"later today", time.Date(2026, 10, 15, 9, 0, 0, 0, loc), "17:00", time.Date(2026, 10, 15, 17, 0, 0, 0, loc)},
		{"already passed", time.Date(2026, 10, 15, 18, 0, 0, 0, loc), "17:00", time.Date(2026, 10, 16, 17, 0, 0, 0, loc)},
		{"exactly now", time.Date(2026, 10, 15, 17, 0, 0, 0, loc), "17:00", time.Date(2026, 10, 16, 17, 0, 0, 0, loc)},
		{"month end", time.Date(2026, 10, 31, 23, 30, 0, 0, loc), "07:15", time.Date(2026, 11, 1, 7, 15, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextAt(tt.now, tt.at)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextAt() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NextAt(time.Now(), "5pm"); err == nil {
		t.Error("expected error for malformed time")
	}
}

// fakeWatcher hands the change callback to the test
type fakeWatcher struct {
	ready chan func([]string)
}

func (w *fakeWatcher) Watch(ctx context.Context, onChange func([]string)) error {
	w.ready <- onChange
	<-ctx.Done()
	return ctx.Err()
}

var _ ports.ChangeWatcher = (*fakeWatcher)(nil)

type counter struct{ n atomic.Int32 }

func (c *counter) job(ctx context.Context) error {
	c.n.Add(1)
	return nil
}

func (c *counter) get() int { return int(c.n.Load()) }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScheduler_RoutesChanges(t *testing.T) {
	var sorts, scans, refreshes, rollovers counter
	settings := domain.DefaultSettings()
	settings.Scan.Enabled = true
	watcher := &fakeWatcher{ready: make(chan func([]string), 1)}

	s := New(settings, watcher, nil, Jobs{
		AutoSort: sorts.job,
		Scan:     scans.job,
		Refresh:  refreshes.job,
		Rollover: rollovers.job,
	})
	s.ScanDelay = 20 * time.Millisecond
	s.RefreshDelay = 10 * time.Millisecond
	s.Start(context.Background())
	defer s.Stop()

	onChange := <-watcher.ready
	waitFor(t, func() bool { return sorts.get() == 1 && rollovers.get() == 1 && scans.get() == 1 })

	onChange([]string{domain.DefaultFocusFile})
	waitFor(t, func() bool { return refreshes.get() == 1 })

	onChange([]string{"Notes/a.md"})
	onChange([]string{"Notes/b.md", "Notes/c.md"})
	waitFor(t, func() bool { return scans.get() == 2 })

	time.Sleep(50 * time.Millisecond)
	if scans.get() != 2 || refreshes.get() != 1 {
		t.Errorf("scans = %d, refreshes = %d", scans.get(), refreshes.get())
	}
}

type notices struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notices) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *notices) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func TestScheduler_FailuresStayLocal(t *testing.T) {
	n := &notices{}
	var after counter
	s := New(domain.DefaultSettings(), nil, n, Jobs{
		Rollover: func(ctx context.Context) error { return errors.New("disk full") },
		AutoSort: after.job,
	})

	s.Start(context.Background())
	waitFor(t, func() bool { return after.get() == 1 })
	s.Stop()

	if n.count() != 1 {
		t.Errorf("notices = %d, want 1", n.count())
	}
}

func TestScheduler_StopCancelsTimers(t *testing.T) {
	var scans counter
	settings := domain.DefaultSettings()
	settings.Scan.Enabled = true
	watcher := &fakeWatcher{ready: make(chan func([]string), 1)}
	s := New(settings, watcher, nil, Jobs{Scan: scans.job})
	s.ScanDelay = 20 * time.Millisecond

	s.Start(context.Background())
	onChange := <-watcher.ready
	waitFor(t, func() bool { return scans.get() == 1 })

	onChange([]string{"Notes/a.md"})
	s.Stop()
	s.Stop()
	time.Sleep(50 * time.Millisecond)

	if scans.get() != 1 {
		t.Errorf("scan ran after Stop: %d", scans.get())
	}
}
