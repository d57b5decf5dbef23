package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"focuslist/internal/application/commands"
)

var (
	resolvePromote []string
	resolveDemote  []string
	resolveRaise   bool
)

var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Start a new week and reset today's habits",
	Long: `Carry unfinished work into the new week. Does nothing when the document
already belongs to the current week. Habits are reset once per day.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		ctx := context.Background()
		result, err := commands.NewRolloverCommand(a.Repo, a.Settings).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)

		reset, err := commands.NewResetHabitsCommand(a.Repo).Execute(ctx)
		if err != nil {
			return err
		}
		if reset {
			fmt.Println("Habits reset for today")
		}
		return nil
	},
}

var sortCmd = &cobra.Command{
	Use:   "sort",
	Short: "Promote tasks due today and sort every section",
	Long: `Promote tasks due today into Immediate and sort the sections. Tasks that do
not fit stay in This Week and are listed so they can be resolved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		result, err := commands.NewAutoSortCommand(a.Repo, a.Settings).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		for _, t := range result.Overflow {
			fmt.Printf("  overflow: %s ^%s\n", t.Title, t.ID)
		}
		if len(result.Overflow) > 0 {
			fmt.Println("Run 'focuslist-cli resolve' to decide what goes into Immediate.")
		}
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Demote and promote tasks after an overflow",
	Long: `Demote Immediate tasks to This Week and promote overflow tasks into
Immediate. --raise lifts the Immediate limit for this run only.

Examples:
  focuslist-cli resolve --demote 3f2a... --promote 9c1b...
  focuslist-cli resolve --promote 9c1b... --raise`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		resolve := commands.NewResolveOverflowCommand(a.Repo, a.Settings, resolvePromote, resolveDemote, resolveRaise)
		result, err := resolve.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var migrateIDsCmd = &cobra.Command{
	Use:   "migrate-ids",
	Short: "Convert legacy ids to uuids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewMigrateIDsCommand(GetApp().Repo).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolloverCmd)
	rootCmd.AddCommand(sortCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(migrateIDsCmd)

	resolveCmd.Flags().StringSliceVar(&resolvePromote, "promote", nil, "overflow task ids to move into Immediate")
	resolveCmd.Flags().StringSliceVar(&resolveDemote, "demote", nil, "Immediate task ids to move to This Week")
	resolveCmd.Flags().BoolVar(&resolveRaise, "raise", false, "raise the Immediate limit for this run")
}
