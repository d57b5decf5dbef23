package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"focuslist/internal/config"
	"focuslist/internal/ports"
)

// Vault implements ports.VaultFiles on a directory tree
type Vault struct {
	root string
}

// NewVault creates a vault rooted at path; a leading ~ is expanded
func NewVault(path string) *Vault {
	return &Vault{root: config.ExpandHome(path)}
}

// Root returns the absolute vault path
func (v *Vault) Root() string {
	return v.root
}

// Abs resolves a vault-relative path
func (v *Vault) Abs(rel string) string {
	return filepath.Join(v.root, filepath.FromSlash(rel))
}

func (v *Vault) entry(rel string, info fs.FileInfo) ports.Entry {
	e := ports.Entry{
		Kind:    ports.EntryFile,
		Path:    filepath.ToSlash(rel),
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
	if info.IsDir() {
		e.Kind = ports.EntryFolder
	}
	return e
}

// Stat describes one entry
func (v *Vault) Stat(rel string) (ports.Entry, error) {
	info, err := os.Stat(v.Abs(rel))
	if err != nil {
		return ports.Entry{}, fmt.Errorf("stat %s: %w", rel, err)
	}
	return v.entry(rel, info), nil
}

// Walk visits every entry below the root. Hidden folders are skipped and
// unreadable entries are ignored.
func (v *Vault) Walk(fn func(ports.Entry) error) error {
	return filepath.Walk(v.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path == v.root {
			return nil
		}
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return nil
		}
		return fn(v.entry(rel, info))
	})
}

// Read returns the content of a file
func (v *Vault) Read(rel string) (string, error) {
	data, err := os.ReadFile(v.Abs(rel))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rel, err)
	}
	return string(data), nil
}

// Write atomically replaces a file, creating parent folders as needed
func (v *Vault) Write(rel, content string) error {
	return writeFileAtomic(v.Abs(rel), content)
}

// Exists reports whether the path exists
func (v *Vault) Exists(rel string) bool {
	_, err := os.Stat(v.Abs(rel))
	return err == nil
}

const filePerms = 0644

func writeFileAtomic(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create folder for %s: %w", path, err)
	}
	_, statErr := os.Stat(path)
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// atomic.WriteFile doesn't set permissions for new files
	if os.IsNotExist(statErr) {
		if err := os.Chmod(path, filePerms); err != nil {
			return fmt.Errorf("chmod %s: %w", path, err)
		}
	}
	return nil
}

var _ ports.VaultFiles = (*Vault)(nil)
