package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"focuslist/internal/adapters/editor"
	"focuslist/internal/adapters/obsidian"
	"focuslist/internal/adapters/tui"
	"focuslist/internal/adapters/tui/views"
	"focuslist/internal/app"
	"focuslist/internal/config"
	"focuslist/internal/domain"
	"focuslist/internal/logging"
	"focuslist/internal/ports"
)

func main() {
	config.LoadEnv()
	vaultFlag := flag.String("vault", config.VaultPath(), "path to the vault")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	vault := config.ExpandHome(*vaultFlag)
	logFile, err := openLog(vault)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logging.SetOutput(logFile)
	if *debug {
		logging.SetDebug(true)
	}

	// program is set before any background job can notify
	var program *tea.Program
	notifier := ports.NotifierFunc(func(msg string) {
		logging.Info("app", "%s", msg)
		program.Send(views.NoticeMsg{Text: msg})
	})

	a, err := app.Open(vault, notifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	svc := &views.Services{
		Repo:      a.Repo,
		Settings:  a.Settings,
		VaultRoot: a.Vault.Root(),
		Editor:    editor.NewOpener(),
		Obsidian:  obsidian.NewOpener(a.Vault.Root()),
		Reflect:   a.Scanner.ReflectCompletion,
		Copy:      clipboard.WriteAll,
	}
	if a.Sync != nil {
		svc.Gate = a.Sync
	}

	program = tea.NewProgram(tui.NewApp(svc), tea.WithAltScreen())
	a.OnOverflow = func(overflow []domain.Task) {
		program.Send(views.SwitchToOverflowMsg{Overflow: overflow})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := a.StartSync(ctx); err != nil {
			notifier.Notify(fmt.Sprintf("Sync unavailable: %v", err))
			return
		}
		program.Send(views.RefreshMsg{})
	}()

	sched := a.Scheduler(func(context.Context) error {
		program.Send(views.RefreshMsg{})
		return nil
	})
	sched.Start(ctx)
	defer sched.Stop()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openLog(vault string) (*os.File, error) {
	dir := filepath.Join(vault, config.StateDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return os.OpenFile(filepath.Join(dir, "focuslist.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
