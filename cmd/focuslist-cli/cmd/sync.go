package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"focuslist/internal/logging"
)

var pullOnly bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the focus document with the remote store",
	Long: `Sign in to the remote store and reconcile. When the remote has data it wins;
otherwise the local document is pushed. --pull replaces the local document
with the remote state again afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a.Sync == nil {
			return fmt.Errorf("remote sync is not enabled in the settings")
		}
		ctx := context.Background()
		if err := a.StartSync(ctx); err != nil {
			return err
		}
		if pullOnly {
			if err := a.Sync.PullNow(ctx); err != nil {
				return err
			}
		}
		fmt.Printf("Sync %s\n", a.Sync.State())
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Mirror dated tasks to the calendar collection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		if a.Calendar == nil {
			return fmt.Errorf("calendar sync is not enabled in the settings")
		}
		result, err := a.Calendar.Sync(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Calendar: completed %d, reopened %d, wrote %d, deleted %d\n",
			result.Completed, result.Reopened, result.Upserted, result.Deleted)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run sync and the background jobs until interrupted",
	Long: `Run remote sync, auto-sort, rollover, scanning and the review note on their
schedules without the TUI, e.g. as a service.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.StartSync(ctx); err != nil {
			logging.Warn("watch", "sync unavailable: %v", err)
		}

		sched := a.Scheduler(nil)
		sched.Start(ctx)
		logging.Info("watch", "watching %s", a.Vault.Root())

		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(watchCmd)

	syncCmd.Flags().BoolVar(&pullOnly, "pull", false, "replace the local document with the remote state")
}
