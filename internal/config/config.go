package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultVaultPath = "~/Documents/vault"

// StateDir is the vault-relative folder holding settings, locks and logs
const StateDir = ".focuslist"

// LoadEnv loads .env files into the environment without overriding variables
// that are already set. The vault's own .focuslist/.env is read after the
// working directory's .env. Missing files are not an error.
func LoadEnv() {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(VaultPath(), StateDir, ".env"))
}

// VaultPath returns the vault path from FOCUSLIST_VAULT env var,
// falling back to DefaultVaultPath. A leading ~ is expanded.
func VaultPath() string {
	if env := os.Getenv("FOCUSLIST_VAULT"); env != "" {
		return ExpandHome(env)
	}
	return ExpandHome(DefaultVaultPath)
}

// RemoteToken returns the FOCUSLIST_REMOTE_TOKEN override, if any
func RemoteToken() string {
	return os.Getenv("FOCUSLIST_REMOTE_TOKEN")
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
