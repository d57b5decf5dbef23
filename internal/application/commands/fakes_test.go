package commands

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// memRepo is an in-memory ports.FocusRepository
type memRepo struct {
	data  *domain.FocusData
	saves int
}

func newMemRepo(d *domain.FocusData) *memRepo {
	if d == nil {
		d = domain.NewFocusData("2026-10-12")
	}
	return &memRepo{data: d}
}

func (r *memRepo) Load(ctx context.Context) (*domain.FocusData, error) {
	return r.data.Clone(), nil
}

func (r *memRepo) Update(ctx context.Context, fn ports.UpdateFunc) (*domain.FocusData, error) {
	d := r.data.Clone()
	changed, err := fn(d)
	if err != nil {
		return nil, err
	}
	if changed {
		r.data = d
		r.saves++
	}
	return d, nil
}

func (r *memRepo) Replace(ctx context.Context, d *domain.FocusData) error {
	r.data = d.Clone()
	r.saves++
	return nil
}

func (r *memRepo) Path() string { return domain.DefaultFocusFile }

// memVault is an in-memory ports.VaultFiles
type memVault struct {
	files map[string]string
}

func newMemVault(files map[string]string) *memVault {
	if files == nil {
		files = map[string]string{}
	}
	return &memVault{files: files}
}

func (v *memVault) Root() string { return "/vault" }

func (v *memVault) Stat(path string) (ports.Entry, error) {
	if _, ok := v.files[path]; !ok {
		return ports.Entry{}, fmt.Errorf("stat %s: %w", path, fs.ErrNotExist)
	}
	return ports.Entry{Kind: ports.EntryFile, Path: path}, nil
}

func (v *memVault) Walk(fn func(ports.Entry) error) error {
	paths := make([]string, 0, len(v.files))
	for p := range v.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := fn(ports.Entry{Kind: ports.EntryFile, Path: p}); err != nil {
			return err
		}
	}
	return nil
}

func (v *memVault) Read(path string) (string, error) {
	text, ok := v.files[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	return text, nil
}

func (v *memVault) Write(path, content string) error {
	v.files[path] = content
	return nil
}

func (v *memVault) Exists(path string) bool {
	_, ok := v.files[path]
	return ok
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
}

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func testSettings() domain.Settings {
	return domain.DefaultSettings()
}
