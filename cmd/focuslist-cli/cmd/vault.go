package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focuslist/internal/adapters/editor"
	"focuslist/internal/adapters/obsidian"
	"focuslist/internal/application/commands"
)

var openInEditor bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Import open checkboxes from the vault's notes",
	Long: `Import open checkbox lines from notes into Unscheduled, archive tasks whose
checkbox was ticked in the note and restore tasks that were unticked.
Notes are filtered by the scan tag and excluded folders in the settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := GetApp().Scanner.Scan(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Scanned %d notes: imported %d, archived %d, restored %d\n",
			result.Files, result.Imported, result.Archived, result.Restored)
		return nil
	},
}

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Import tasks from the capture file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a.Settings.CaptureFile == "" {
			return fmt.Errorf("no captureFile configured")
		}
		result, err := commands.NewCaptureImportCommand(a.Repo, a.Vault, a.Settings).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Write today's review note",
	Long: `Write the end-of-day review note listing what was completed today and what
is still open. An existing note is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		result, err := commands.NewCreateReviewCommand(a.Repo, a.Vault, a.Settings).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the focus document in Obsidian or $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if openInEditor {
			return editor.NewOpener().OpenFile(a.Vault.Abs(a.Repo.Path()), 0)
		}
		return obsidian.NewOpener(a.Vault.Root()).OpenNote(a.Repo.Path())
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(captureCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(openCmd)

	openCmd.Flags().BoolVarP(&openInEditor, "editor", "e", false, "open in $EDITOR instead of Obsidian")
}
