// Package app wires the adapters and services that the focuslist binaries share.
package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"focuslist/internal/adapters/filesystem"
	"focuslist/internal/adapters/ics"
	"focuslist/internal/adapters/sqlite"
	"focuslist/internal/application/calsync"
	"focuslist/internal/application/commands"
	"focuslist/internal/application/remotesync"
	"focuslist/internal/application/scheduler"
	"focuslist/internal/application/vaultscan"
	"focuslist/internal/config"
	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

// WatchInterval is how often the vault is polled for edits
const WatchInterval = 2 * time.Second

// App holds everything built from one vault and its settings
type App struct {
	Vault    *filesystem.Vault
	Settings domain.Settings

	// Local is the document on disk; Repo is what every writer goes through
	Local *filesystem.FocusRepository
	Repo  ports.FocusRepository

	Scanner  *vaultscan.Scanner
	Sync     *remotesync.Engine // nil unless remote sync is enabled
	Calendar *calsync.Syncer    // nil unless calendar sync is enabled

	// OnOverflow receives tasks the scheduled auto-sort could not fit into
	// Immediate. When nil the overflow is only announced.
	OnOverflow func(overflow []domain.Task)

	notifier ports.Notifier
	store    *sqlite.Store
}

// Open loads the vault settings and builds the repositories and services.
// Remote sync is configured but not started; call StartSync for that.
func Open(vaultPath string, notifier ports.Notifier) (*App, error) {
	if notifier == nil {
		notifier = ports.NotifierFunc(func(msg string) { logging.Info("app", "%s", msg) })
	}

	vault := filesystem.NewVault(vaultPath)
	settings, err := filesystem.NewSettingsStore(vault).Load()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	local := filesystem.NewFocusRepository(vault, settings.FocusFile)
	a := &App{
		Vault:    vault,
		Settings: settings,
		Local:    local,
		Repo:     local,
		notifier: notifier,
	}

	if settings.Remote.Enabled {
		store, err := sqlite.Open(a.resolve(settings.Remote.Database))
		if err != nil {
			return nil, err
		}
		a.store = store
		a.Sync = remotesync.NewEngine(store, local, notifier)
		a.Repo = a.Sync.Repository()
	}

	a.Scanner = vaultscan.NewScanner(a.Repo, vault, settings)

	if settings.Calendar.Enabled {
		collection, err := ics.NewCollection(a.resolve(settings.Calendar.Dir))
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Calendar = calsync.NewSyncer(a.Repo, collection, settings)
		a.Calendar.Reflect = a.Scanner.ReflectCompletion
	}

	return a, nil
}

// resolve makes a configured path absolute, relative paths being vault-relative
func (a *App) resolve(path string) string {
	if strings.HasPrefix(path, "~") || filepath.IsAbs(path) {
		return config.ExpandHome(path)
	}
	return a.Vault.Abs(path)
}

// Credentials returns the remote credentials, preferring the environment token
func (a *App) Credentials() ports.Credentials {
	token := a.Settings.Remote.Token
	if env := config.RemoteToken(); env != "" {
		token = env
	}
	return ports.Credentials{Email: a.Settings.Remote.Email, Token: token}
}

// StartSync signs in and reconciles with the remote store.
// It does nothing when remote sync is disabled.
func (a *App) StartSync(ctx context.Context) error {
	if a.Sync == nil {
		return nil
	}
	return a.Sync.Enable(ctx, a.Credentials())
}

// Close stops sync and releases the remote store
func (a *App) Close() error {
	if a.Sync != nil {
		a.Sync.Disable()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Jobs returns the background jobs the scheduler drives. refresh may be nil.
func (a *App) Jobs(refresh scheduler.Job) scheduler.Jobs {
	jobs := scheduler.Jobs{
		AutoSort: a.autoSort,
		Scan:     a.scan,
		Refresh:  refresh,
		Review:   a.review,
		Rollover: a.rollover,
	}
	if !a.Settings.Scan.Enabled && a.Settings.CaptureFile == "" && a.Calendar == nil {
		jobs.Scan = nil
	}
	return jobs
}

// Scheduler builds a scheduler that polls the vault for edits
func (a *App) Scheduler(refresh scheduler.Job) *scheduler.Scheduler {
	watcher := filesystem.NewPollingWatcher(a.Vault, WatchInterval)
	return scheduler.New(a.Settings, watcher, a.notifier, a.Jobs(refresh))
}

func (a *App) autoSort(ctx context.Context) error {
	res, err := commands.NewAutoSortCommand(a.Repo, a.Settings).Execute(ctx)
	if err != nil {
		return err
	}
	switch {
	case len(res.Overflow) == 0:
	case a.OnOverflow != nil:
		a.OnOverflow(res.Overflow)
	default:
		a.notifier.Notify(res.Message)
	}
	return nil
}

// scan imports the capture file and checkbox lines from the vault, then
// mirrors dated tasks to the calendar
func (a *App) scan(ctx context.Context) error {
	var errs []error
	if a.Settings.CaptureFile != "" {
		if _, err := commands.NewCaptureImportCommand(a.Repo, a.Vault, a.Settings).Execute(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Settings.Scan.Enabled {
		if _, err := a.Scanner.Scan(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.Calendar != nil {
		if _, err := a.Calendar.Sync(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) review(ctx context.Context) error {
	res, err := commands.NewCreateReviewCommand(a.Repo, a.Vault, a.Settings).Execute(ctx)
	if err != nil {
		return err
	}
	if res.Created {
		a.notifier.Notify(res.Message)
	}
	return nil
}

func (a *App) rollover(ctx context.Context) error {
	res, err := commands.NewRolloverCommand(a.Repo, a.Settings).Execute(ctx)
	if err != nil {
		return err
	}
	if res.RolledOver {
		a.notifier.Notify(res.Message)
	}
	_, err = commands.NewResetHabitsCommand(a.Repo).Execute(ctx)
	return err
}
