package remotesync

import (
	"context"
	"sync"
	"sync/atomic"

	"focuslist/internal/debounce"
	"focuslist/internal/domain"
)

// State is the lifecycle stage of a sync session
type State int32

const (
	Disconnected State = iota
	Authenticating
	Reconciling
	Live
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Reconciling:
		return "reconciling"
	case Live:
		return "live"
	default:
		return "disconnected"
	}
}

// session holds everything that lives between Enable and Disable
type session struct {
	userID string
	state  atomic.Int32

	// gateClosed defers pulls while the user resolves an overflow
	gateClosed   atomic.Bool
	pullDeferred atomic.Bool

	seenMu sync.Mutex
	seen   domain.SnapshotIDs

	// pushMu serializes pushes and pulls so the seen set matches the document
	pushMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	pull   *debounce.Debouncer
	done   chan struct{}
}

func newSession(parent context.Context) *session {
	ctx, cancel := context.WithCancel(parent)
	s := &session{
		ctx:    ctx,
		cancel: cancel,
		seen:   domain.NewSnapshotIDs(),
		done:   make(chan struct{}),
	}
	s.setState(Authenticating)
	return s
}

func (s *session) State() State {
	return State(s.state.Load())
}

func (s *session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *session) seenIDs() domain.SnapshotIDs {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	ids := domain.NewSnapshotIDs()
	ids.Merge(s.seen)
	return ids
}

func (s *session) setSeen(ids domain.SnapshotIDs) {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	s.seen = ids
}

// teardown stops timers and waits for the subscription loop to exit
func (s *session) teardown() {
	s.cancel()
	s.pull.Stop()
	<-s.done
	s.setState(Disconnected)
}
