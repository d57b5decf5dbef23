package filesystem

import (
	"context"
	"slices"
	"strings"
	"time"

	"focuslist/internal/ports"
)

// PollingWatcher reports markdown files whose modification time changed
// between two walks of the vault
type PollingWatcher struct {
	vault    *Vault
	interval time.Duration

	// Ignore filters paths out of the change set
	Ignore func(path string) bool
}

// NewPollingWatcher creates a watcher that walks the vault every interval
func NewPollingWatcher(vault *Vault, interval time.Duration) *PollingWatcher {
	return &PollingWatcher{vault: vault, interval: interval}
}

// Snapshot records the modification time of every markdown file
func (w *PollingWatcher) Snapshot() map[string]time.Time {
	mtimes := map[string]time.Time{}
	_ = w.vault.Walk(func(e ports.Entry) error {
		if e.IsFile() && strings.HasSuffix(strings.ToLower(e.Path), ".md") {
			mtimes[e.Path] = e.ModTime
		}
		return nil
	})
	return mtimes
}

// Diff lists paths added, modified or removed between two snapshots
func (w *PollingWatcher) Diff(before, after map[string]time.Time) []string {
	var changed []string
	for p, mtime := range after {
		if prev, ok := before[p]; !ok || !prev.Equal(mtime) {
			changed = append(changed, p)
		}
	}
	for p := range before {
		if _, ok := after[p]; !ok {
			changed = append(changed, p)
		}
	}
	if w.Ignore != nil {
		changed = slices.DeleteFunc(changed, w.Ignore)
	}
	slices.Sort(changed)
	return changed
}

// Watch polls until ctx is done
func (w *PollingWatcher) Watch(ctx context.Context, onChange func(paths []string)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			current := w.Snapshot()
			if changed := w.Diff(last, current); len(changed) > 0 {
				onChange(changed)
			}
			last = current
		}
	}
}

var _ ports.ChangeWatcher = (*PollingWatcher)(nil)
