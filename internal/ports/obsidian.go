package ports

// ObsidianOpener hands notes and links to the desktop
type ObsidianOpener interface {
	// OpenNote opens a vault-relative note via the obsidian:// URI scheme
	OpenNote(relPath string) error

	// OpenURL opens a task link in the default handler
	OpenURL(rawURL string) error
}
