// Package remotesync mirrors the focus document into the remote store and
// pulls changes made by other clients back into it.
package remotesync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"focuslist/internal/application"
	"focuslist/internal/debounce"
	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

// DefaultPullDelay coalesces bursts of remote change notifications
const DefaultPullDelay = 500 * time.Millisecond

// Engine owns at most one sync session at a time
type Engine struct {
	store    ports.RemoteStore
	local    ports.FocusRepository
	notifier ports.Notifier
	repo     *Repository

	Now       func() time.Time
	NewID     func() string
	PullDelay time.Duration

	mu      sync.Mutex
	session *session
}

// NewEngine creates an engine over the undecorated local repository
func NewEngine(store ports.RemoteStore, local ports.FocusRepository, notifier ports.Notifier) *Engine {
	e := &Engine{
		store:     store,
		local:     local,
		notifier:  notifier,
		PullDelay: DefaultPullDelay,
	}
	e.repo = &Repository{FocusRepository: local, engine: e}
	return e
}

// Repository returns the push-on-save view of the local repository.
// Every writer should go through it once sync is configured.
func (e *Engine) Repository() *Repository {
	return e.repo
}

// State reports the current session state
func (e *Engine) State() State {
	if s := e.current(); s != nil {
		return s.State()
	}
	return Disconnected
}

func (e *Engine) current() *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

func (e *Engine) today() string {
	if e.Now == nil {
		return domain.Today(time.Now())
	}
	return domain.Today(e.Now())
}

// Enable authenticates, reconciles local and remote state and starts
// listening for remote changes. Enabling a live engine is a no-op.
func (e *Engine) Enable(ctx context.Context, creds ports.Credentials) error {
	e.mu.Lock()
	if e.session != nil {
		e.mu.Unlock()
		return nil
	}
	s := newSession(context.Background())
	delay := e.PullDelay
	if delay <= 0 {
		delay = DefaultPullDelay
	}
	s.pull = debounce.New(delay, func() { e.remoteChanged(s) })
	e.session = s
	e.mu.Unlock()

	if err := e.start(ctx, s, creds); err != nil {
		close(s.done)
		s.teardown()
		e.mu.Lock()
		e.session = nil
		e.mu.Unlock()
		return e.fail("enable", err)
	}
	logging.Info("sync", "live as user %s", s.userID)
	return nil
}

func (e *Engine) start(ctx context.Context, s *session, creds ports.Credentials) error {
	userID, err := e.store.Authenticate(ctx, creds)
	if err != nil {
		return err
	}
	s.userID = userID

	s.setState(Reconciling)
	if err := e.reconcile(ctx, s); err != nil {
		return err
	}

	changes, err := e.store.Subscribe(s.ctx)
	if err != nil {
		return err
	}
	go e.listen(s, changes)

	s.setState(Live)
	return nil
}

// reconcile makes the remote authoritative when it already holds tasks,
// otherwise seeds it from the local document
func (e *Engine) reconcile(ctx context.Context, s *session) error {
	today := e.today()
	snap, err := e.store.Pull(ctx, today)
	if err != nil {
		return err
	}
	s.setSeen(snap.IDs())

	if !snap.Empty() {
		logging.Info("sync", "remote has %d tasks, replacing local document", len(snap.Tasks))
		return e.apply(ctx, snap, today)
	}

	_, err = e.local.Update(ctx, func(d *domain.FocusData) (bool, error) {
		assigned := d.AssignMissingIDs(e.NewID)
		migrated := d.MigrateIDs(e.NewID)
		if len(migrated) > 0 {
			logging.Info("sync", "migrated %d legacy ids", len(migrated))
		}
		return assigned > 0 || len(migrated) > 0, nil
	})
	if err != nil {
		return err
	}
	logging.Info("sync", "remote is empty, pushing local document")
	return e.push(ctx, s)
}

// Disable tears the session down; it is safe to call when not enabled
func (e *Engine) Disable() {
	e.mu.Lock()
	s := e.session
	e.session = nil
	e.mu.Unlock()
	if s == nil {
		return
	}
	s.teardown()
	logging.Info("sync", "disabled")
}

// SetGate closes or opens the pull gate. Pulls requested while the gate is
// closed collapse into one catch-up pull when it opens.
func (e *Engine) SetGate(open bool) {
	s := e.current()
	if s == nil {
		return
	}
	if !open {
		s.gateClosed.Store(true)
		return
	}
	s.gateClosed.Store(false)
	if s.pullDeferred.Swap(false) {
		logging.Debug("sync", "gate opened, catching up")
		s.pull.Trigger()
	}
}

// PushNow pushes the current document. Errors are reported and returned.
func (e *Engine) PushNow(ctx context.Context) error {
	s := e.current()
	if s == nil || s.State() != Live {
		return fmt.Errorf("%w: sync is not live", application.ErrInvalidOperation)
	}
	if err := e.push(ctx, s); err != nil {
		return e.fail("push", err)
	}
	return nil
}

// PullNow replaces the local document with the remote state
func (e *Engine) PullNow(ctx context.Context) error {
	s := e.current()
	if s == nil || s.State() != Live {
		return fmt.Errorf("%w: sync is not live", application.ErrInvalidOperation)
	}
	if err := e.pull(ctx, s); err != nil {
		return e.fail("pull", err)
	}
	return nil
}

func (e *Engine) listen(s *session, changes <-chan struct{}) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			s.pull.Trigger()
		}
	}
}

// remoteChanged runs on the debounce goroutine
func (e *Engine) remoteChanged(s *session) {
	if s.gateClosed.Load() {
		s.pullDeferred.Store(true)
		logging.Debug("sync", "pull deferred while gate is closed")
		return
	}
	if err := e.pull(s.ctx, s); err != nil {
		e.fail("pull", err)
	}
}

// pull holds pushMu until the pulled ids are both in the document and in
// the seen set, so a concurrent push never diffs one against the other
func (e *Engine) pull(ctx context.Context, s *session) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	today := e.today()
	snap, err := e.store.Pull(ctx, today)
	if err != nil {
		return err
	}
	if err := e.apply(ctx, snap, today); err != nil {
		return err
	}
	s.setSeen(snap.IDs())
	return nil
}

type applyingKey struct{}

// apply writes a pulled snapshot through the decorated repository. Only
// this write skips the push; saves made meanwhile by others still push.
func (e *Engine) apply(ctx context.Context, snap domain.RemoteSnapshot, today string) error {
	return e.repo.Replace(context.WithValue(ctx, applyingKey{}, true), domain.FromSnapshot(snap, today))
}

func (e *Engine) push(ctx context.Context, s *session) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	data, err := e.local.Load(ctx)
	if err != nil {
		return err
	}
	today := e.today()
	snap := domain.ToSnapshot(data, today)
	local := snap.IDs()
	deletes := s.seenIDs().Deletions(local)

	if err := e.store.Push(ctx, snap, deletes, today); err != nil {
		return err
	}
	s.setSeen(local)
	logging.Debug("sync", "pushed %d tasks, deleted %d", len(snap.Tasks), len(deletes.Tasks))
	return nil
}

// afterSave is called by the repository decorator after a local save
func (e *Engine) afterSave(ctx context.Context) {
	s := e.current()
	if s == nil || s.State() != Live || ctx.Value(applyingKey{}) != nil {
		return
	}
	if err := e.push(ctx, s); err != nil {
		e.fail("push", err)
	}
}

// fail logs and surfaces a remote failure. Conflicts are retried on the
// next cycle and only logged.
func (e *Engine) fail(op string, err error) error {
	wrapped := &application.RemoteError{Op: op, Err: err}
	if errors.Is(err, ports.ErrPrecondition) {
		logging.Info("sync", "%s conflicted, retry next cycle: %v", op, err)
		return wrapped
	}
	if errors.Is(err, context.Canceled) {
		return wrapped
	}
	logging.Warn("sync", "%s failed: %v", op, err)
	if e.notifier != nil {
		e.notifier.Notify(fmt.Sprintf("Sync %s failed: %s", op, logging.Truncate(err.Error(), 80)))
	}
	return wrapped
}
