package obsidian

import (
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Opener implements ports.ObsidianOpener
type Opener struct {
	vaultPath string
	vaultName string

	// run starts the platform URI handler; replaced in tests
	run func(uri string) error
}

// NewOpener creates a new Obsidian opener for the given vault path
func NewOpener(vaultPath string) *Opener {
	return &Opener{
		vaultPath: vaultPath,
		vaultName: filepath.Base(vaultPath),
		run:       openURI,
	}
}

// OpenNote opens a vault-relative note in Obsidian, e.g. the note a task was imported from
func (o *Opener) OpenNote(relPath string) error {
	uri, err := o.BuildURI(relPath)
	if err != nil {
		return err
	}
	return o.run(uri)
}

// OpenURL opens a task link. Only web and obsidian links are handed to the desktop.
func (o *Opener) OpenURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid link: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "obsidian":
	default:
		return fmt.Errorf("refusing to open %q links", u.Scheme)
	}
	return o.run(u.String())
}

// BuildURI constructs the obsidian:// URI for a vault-relative note path
func (o *Opener) BuildURI(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		rel, err := filepath.Rel(o.vaultPath, relPath)
		if err != nil {
			return "", fmt.Errorf("failed to get relative path: %w", err)
		}
		relPath = rel
	}
	relPath = filepath.Clean(relPath)
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file is outside the vault: %s", relPath)
	}

	// Obsidian expects forward slashes in paths
	relPath = filepath.ToSlash(relPath)

	uri := fmt.Sprintf("obsidian://open?vault=%s&file=%s",
		url.PathEscape(o.vaultName),
		url.PathEscape(relPath),
	)

	return uri, nil
}

func openURI(uri string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux":
		cmd = exec.Command("xdg-open", uri)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Run()
}
