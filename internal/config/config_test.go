package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVaultPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("FOCUSLIST_VAULT", "/tmp/my-vault")
		if got := VaultPath(); got != "/tmp/my-vault" {
			t.Errorf("VaultPath() = %q", got)
		}
	})

	t.Run("default expands home", func(t *testing.T) {
		t.Setenv("FOCUSLIST_VAULT", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		if got, want := VaultPath(), filepath.Join(home, "Documents/vault"); got != want {
			t.Errorf("VaultPath() = %q, want %q", got, want)
		}
	})
}

func TestLoadEnvReadsVaultFile(t *testing.T) {
	vault := t.TempDir()
	if err := os.MkdirAll(filepath.Join(vault, StateDir), 0755); err != nil {
		t.Fatal(err)
	}
	envFile := filepath.Join(vault, StateDir, ".env")
	if err := os.WriteFile(envFile, []byte("FOCUSLIST_REMOTE_TOKEN=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOCUSLIST_VAULT", vault)
	t.Setenv("FOCUSLIST_REMOTE_TOKEN", "")
	os.Unsetenv("FOCUSLIST_REMOTE_TOKEN")

	LoadEnv()

	if got := RemoteToken(); got != "from-file" {
		t.Errorf("RemoteToken() = %q, want from-file", got)
	}
}
