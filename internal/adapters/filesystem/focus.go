package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"focuslist/internal/config"
	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

const lockRetryDelay = 50 * time.Millisecond

// FocusRepository stores the focus document as markdown inside the vault.
// Read-modify-write cycles are serialized in-process by a mutex and across
// processes by a lock file next to the settings.
type FocusRepository struct {
	vault *Vault
	path  string

	mu   sync.Mutex
	lock *flock.Flock

	// Now is the clock used to date a brand-new document
	Now func() time.Time
}

// NewFocusRepository creates a repository for the document at the vault-relative path
func NewFocusRepository(vault *Vault, path string) *FocusRepository {
	return &FocusRepository{
		vault: vault,
		path:  path,
		lock:  flock.New(filepath.Join(vault.Root(), config.StateDir, "focus.lock")),
		Now:   time.Now,
	}
}

// Path returns the vault-relative document path
func (r *FocusRepository) Path() string {
	return r.path
}

// Load decodes the current document. Hand-written lines without an id get
// one, and the document is saved so the ids stay stable.
func (r *FocusRepository) Load(ctx context.Context) (*domain.FocusData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.read()
	if err != nil || !data.HasMissingIDs() {
		return data, err
	}

	unlock, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if data, err = r.read(); err != nil {
		return nil, err
	}
	if data.AssignMissingIDs(domain.NewID) > 0 {
		if err := r.write(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Update runs fn against the latest document and saves the result if fn changed it
func (r *FocusRepository) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.FocusData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := r.read()
	if err != nil {
		return nil, err
	}
	assigned := data.AssignMissingIDs(domain.NewID) > 0
	changed, err := fn(data)
	if err != nil {
		return nil, err
	}
	if !changed && !assigned {
		return data, nil
	}
	if err := r.write(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Replace overwrites the document
func (r *FocusRepository) Replace(ctx context.Context, d *domain.FocusData) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return r.write(d)
}

func (r *FocusRepository) acquire(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(r.lock.Path()), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock folder: %w", err)
	}
	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to lock focus document: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("focus document is locked by another process")
	}
	return func() { r.lock.Unlock() }, nil
}

func (r *FocusRepository) read() (*domain.FocusData, error) {
	text, err := r.vault.Read(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewFocusData(domain.Today(r.Now())), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read focus document: %w", err)
	}
	data, warnings := domain.Decode(text)
	for _, w := range warnings {
		logging.Warn("focus", "%s: %s", r.path, w)
	}
	return data, nil
}

func (r *FocusRepository) write(d *domain.FocusData) error {
	if err := r.vault.Write(r.path, domain.Encode(d)); err != nil {
		return fmt.Errorf("failed to save focus document: %w", err)
	}
	logging.Debug("focus", "saved %s", r.path)
	return nil
}

var _ ports.FocusRepository = (*FocusRepository)(nil)
