package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"focuslist/internal/config"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// SettingsFile is the vault-relative location of the settings
var SettingsFile = path.Join(config.StateDir, "settings.yaml")

// SettingsStore keeps settings as YAML inside the vault
type SettingsStore struct {
	vault *Vault
}

// NewSettingsStore creates a settings store for the vault
func NewSettingsStore(vault *Vault) *SettingsStore {
	return &SettingsStore{vault: vault}
}

// Load reads the settings, filling in defaults; a missing file yields the defaults
func (s *SettingsStore) Load() (domain.Settings, error) {
	text, err := s.vault.Read(SettingsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	settings := domain.DefaultSettings()
	if err := yaml.Unmarshal([]byte(text), &settings); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to parse %s: %w", SettingsFile, err)
	}
	settings.ApplyDefaults()
	return settings, nil
}

// Save validates and writes the settings
func (s *SettingsStore) Save(settings domain.Settings) error {
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return s.vault.Write(SettingsFile, string(data))
}

var _ ports.SettingsStore = (*SettingsStore)(nil)
