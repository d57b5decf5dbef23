package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
)

var (
	taskSection    string
	taskDate       string
	taskTime       string
	taskRepeat     string
	taskURL        string
	taskGoal       string
	listArchived   bool
	skipNote       bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Add a task to a section. Adding to a full Immediate section fails.

Examples:
  focuslist-cli add "Write report" -s immediate
  focuslist-cli add "Pay rent" --date 2026-11-01 --repeat months:1:1`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		section, err := domain.ParseSection(taskSection)
		if err != nil {
			return err
		}

		add := commands.NewAddTaskCommand(a.Repo, a.Settings, strings.Join(args, " "), section)
		add.DoDate = taskDate
		add.DoTime = taskTime
		add.Recurrence = taskRepeat
		add.URL = taskURL
		add.GoalID = taskGoal

		result, err := add.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		fmt.Println(result.Task.ID)
		return nil
	},
}

var listTasksCmd = &cobra.Command{
	Use:   "list [section]",
	Short: "List tasks",
	Long: `List habits and active tasks, optionally limited to one section.

Examples:
  focuslist-cli list
  focuslist-cli list immediate --archived`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list := commands.NewListTasksCommand(GetApp().Repo)
		list.IncludeArchived = listArchived
		if len(args) == 1 {
			section, err := domain.ParseSection(args[0])
			if err != nil {
				return err
			}
			list.Section = section
		}

		result, err := list.Execute(context.Background())
		if err != nil {
			return err
		}

		if len(args) == 0 {
			for _, h := range result.Data.Habits {
				mark := " "
				if h.CompletedToday {
					mark = "x"
				}
				fmt.Printf("[%s] %s (habit %s)\n", mark, h.Title, h.ID)
			}
		}
		var last domain.Section
		for _, t := range result.Tasks {
			if t.Section != last && !t.Archived {
				fmt.Printf("## %s\n", t.Section.Title())
				last = t.Section
			}
			fmt.Println(formatTask(t))
		}
		return nil
	},
}

func formatTask(t commands.TaskView) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %s", mark, domain.FormatTaskText(t.Task, t.Archived))
	if t.Overdue {
		line += " (overdue)"
	}
	return line
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a task, or restore a completed one",
	Long: `Toggle a task's completion. Completing archives the task under the current
month and spawns the next occurrence of a recurring task. When the task came
from a note, the note's checkbox is updated too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		done := commands.NewToggleCompleteCommand(a.Repo, a.Settings, args[0])
		if !skipNote {
			done.Reflect = a.Scanner.ReflectCompletion
		}
		result, err := done.Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)

		if result.NoteErr != nil {
			return fmt.Errorf("note not updated: %w", result.NoteErr)
		}
		if result.NoteUpdated {
			fmt.Printf("Updated %s\n", result.Task.SourceFile)
		}
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <section>",
	Short: "Move a task to another section",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		section, err := domain.ParseSection(args[1])
		if err != nil {
			return err
		}
		result, err := commands.NewMoveTaskCommand(a.Repo, a.Settings, args[0], section).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a task",
	Long: `Edit a task in place. Only the given flags change; pass an empty value to
clear a field.

Examples:
  focuslist-cli update 3f2a... --title "Call the bank"
  focuslist-cli update 3f2a... --date "" --time ""`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch commands.TaskPatch
		flags := cmd.Flags()
		set := func(name string, dst **string) {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				*dst = &v
			}
		}
		set("title", &patch.Title)
		set("date", &patch.DoDate)
		set("time", &patch.DoTime)
		set("repeat", &patch.Recurrence)
		set("url", &patch.URL)
		set("goal", &patch.GoalID)

		result, err := commands.NewUpdateTaskCommand(GetApp().Repo, args[0], patch).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewDeleteTaskCommand(GetApp().Repo, args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search task titles, active and archived",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := commands.NewSearchTasksCommand(GetApp().Repo, strings.Join(args, " ")).Execute(context.Background())
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for _, r := range results {
			fmt.Println(formatTask(commands.TaskView{Task: r.Task, Archived: r.Archived}))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listTasksCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(searchCmd)

	addCmd.Flags().StringVarP(&taskSection, "section", "s", string(domain.SectionUnscheduled), "immediate, thisWeek or unscheduled")
	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&taskDate, "date", "", "do date (YYYY-MM-DD)")
		c.Flags().StringVar(&taskTime, "time", "", "do time (HH:MM), needs a date")
		c.Flags().StringVar(&taskRepeat, "repeat", "", "recurrence type:interval[:day], e.g. weeks:1:1")
		c.Flags().StringVar(&taskURL, "url", "", "link shown with the task")
		c.Flags().StringVar(&taskGoal, "goal", "", "weekly goal id")
	}
	updateCmd.Flags().String("title", "", "new title")
	listTasksCmd.Flags().BoolVarP(&listArchived, "archived", "a", false, "include archived tasks")
	doneCmd.Flags().BoolVar(&skipNote, "no-note", false, "leave the source note untouched")
}
