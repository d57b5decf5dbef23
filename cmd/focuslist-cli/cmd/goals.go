package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focuslist/internal/application/commands"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage weekly goals",
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List weekly goals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := GetApp().Repo.Load(context.Background())
		if err != nil {
			return err
		}
		for _, g := range data.Goals {
			fmt.Printf("%s %s\n", g.ID, g.Title)
		}
		return nil
	},
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a weekly goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printGoal(commands.NewAddGoalCommand(GetApp().Repo, strings.Join(args, " ")).Execute(context.Background()))
	},
}

var goalRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a weekly goal",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printGoal(commands.NewRenameGoalCommand(GetApp().Repo, args[0], strings.Join(args[1:], " ")).Execute(context.Background()))
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a weekly goal and unlink its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printGoal(commands.NewDeleteGoalCommand(GetApp().Repo, args[0]).Execute(context.Background()))
	},
}

func printGoal(result *commands.GoalResult, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	return nil
}

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Manage daily habits",
}

var habitAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a daily habit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printHabit(commands.NewAddHabitCommand(GetApp().Repo, strings.Join(args, " ")).Execute(context.Background()))
	},
}

var habitToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Check or uncheck a habit for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printHabit(commands.NewToggleHabitCommand(GetApp().Repo, args[0]).Execute(context.Background()))
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a daily habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printHabit(commands.NewDeleteHabitCommand(GetApp().Repo, args[0]).Execute(context.Background()))
	},
}

func printHabit(result *commands.HabitResult, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	return nil
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalRenameCmd)
	goalCmd.AddCommand(goalDeleteCmd)

	rootCmd.AddCommand(habitCmd)
	habitCmd.AddCommand(habitAddCmd)
	habitCmd.AddCommand(habitToggleCmd)
	habitCmd.AddCommand(habitDeleteCmd)
}
