package ports

import (
	"context"
	"time"
)

// EntryKind tags a vault entry as a file or a folder
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryFolder
)

func (k EntryKind) String() string {
	if k == EntryFolder {
		return "folder"
	}
	return "file"
}

// Entry is a file or folder inside the vault. Paths are vault-relative and slash separated.
type Entry struct {
	Kind    EntryKind
	Path    string
	ModTime time.Time
	Size    int64
}

// IsFile reports whether the entry is a regular file
func (e Entry) IsFile() bool { return e.Kind == EntryFile }

// IsFolder reports whether the entry is a folder
func (e Entry) IsFolder() bool { return e.Kind == EntryFolder }

// VaultFiles gives path-based access to the notes vault
type VaultFiles interface {
	// Root returns the absolute vault path
	Root() string

	// Stat describes one entry; the error wraps fs.ErrNotExist when it is missing
	Stat(path string) (Entry, error)

	// Walk visits every entry below the vault root, skipping hidden folders
	Walk(fn func(Entry) error) error

	Read(path string) (string, error)

	// Write creates or replaces a file, creating parent folders as needed
	Write(path, content string) error

	Exists(path string) bool
}

// ChangeWatcher reports vault files that changed since the last poll
type ChangeWatcher interface {
	// Watch blocks until ctx is done, calling onChange with the changed paths
	Watch(ctx context.Context, onChange func(paths []string)) error
}
