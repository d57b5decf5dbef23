package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"focuslist/internal/app"
	"focuslist/internal/config"
)

var (
	vaultPath string
	current   *app.App
)

var rootCmd = &cobra.Command{
	Use:   "focuslist-cli",
	Short: "CLI for the weekly focus board",
	Long: `focuslist-cli manages the weekly focus document kept in an Obsidian vault.

Tasks live in three sections: Immediate (a small, capped list for today),
This Week and Unscheduled. Completed tasks are archived by month.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		a, err := app.Open(config.ExpandHome(vaultPath), nil)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		return current.Close()
	},
}

// Execute runs the root command
func Execute() {
	config.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&vaultPath, "vault", "v", config.VaultPath(), "path to the vault")
}

// GetApp returns the opened vault
func GetApp() *app.App {
	return current
}
