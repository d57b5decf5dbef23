package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// RegisterWriteTools adds all tools that change the focus document.
// reflect may be nil when notes should not be touched.
func RegisterWriteTools(s *server.MCPServer, repo ports.FocusRepository, settings domain.Settings, reflect commands.CompletionReflector) {
	s.AddTool(addTool(), addHandler(repo, settings))
	s.AddTool(completeTool(), completeHandler(repo, settings, reflect))
	s.AddTool(moveTool(), moveHandler(repo, settings))
	s.AddTool(updateTool(), updateHandler(repo))
	s.AddTool(deleteTool(), deleteHandler(repo))
	s.AddTool(addGoalTool(), addGoalHandler(repo))
	s.AddTool(toggleHabitTool(), toggleHabitHandler(repo))
	s.AddTool(sortTool(), sortHandler(repo, settings))
}

// --- add_task ---

func addTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to the focus board. Immediate holds a limited number of open tasks; adding to a full Immediate fails."),
		mcp.WithString("title",
			mcp.Description("Task title"),
			mcp.Required(),
		),
		mcp.WithString("section",
			mcp.Description("immediate, thisWeek or unscheduled (default unscheduled)"),
		),
		mcp.WithString("do_date",
			mcp.Description("Do date as YYYY-MM-DD"),
		),
		mcp.WithString("do_time",
			mcp.Description("Do time as HH:MM, requires do_date"),
		),
		mcp.WithString("recurrence",
			mcp.Description("type:interval[:day], e.g. weeks:1:1 for every Monday or months:1:31"),
		),
		mcp.WithString("url",
			mcp.Description("Link shown with the task"),
		),
		mcp.WithString("goal_id",
			mcp.Description("Id of a weekly goal to tag the task with"),
		),
	)
}

func addHandler(repo ports.FocusRepository, settings domain.Settings) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		section, err := domain.ParseSection(req.GetString("section", string(domain.SectionUnscheduled)))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewAddTaskCommand(repo, settings, req.GetString("title", ""), section)
		cmd.DoDate = req.GetString("do_date", "")
		cmd.DoTime = req.GetString("do_time", "")
		cmd.Recurrence = req.GetString("recurrence", "")
		cmd.URL = req.GetString("url", "")
		cmd.GoalID = req.GetString("goal_id", "")
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- complete_task ---

func completeTool() mcp.Tool {
	return mcp.NewTool("complete_task",
		mcp.WithDescription("Toggle completion: an open task is archived (a recurring one spawns its next occurrence), an archived task is restored."),
		mcp.WithString("id",
			mcp.Description("Task id"),
			mcp.Required(),
		),
	)
}

func completeHandler(repo ports.FocusRepository, settings domain.Settings, reflect commands.CompletionReflector) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewToggleCompleteCommand(repo, settings, req.GetString("id", ""))
		cmd.Reflect = reflect
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- move_task ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move_task",
		mcp.WithDescription("Move an open task to the end of another section."),
		mcp.WithString("id",
			mcp.Description("Task id"),
			mcp.Required(),
		),
		mcp.WithString("section",
			mcp.Description("Destination: immediate, thisWeek or unscheduled"),
			mcp.Required(),
		),
	)
}

func moveHandler(repo ports.FocusRepository, settings domain.Settings) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		section, err := domain.ParseSection(req.GetString("section", ""))
		if err != nil {
			return toolError(err)
		}

		cmd := commands.NewMoveTaskCommand(repo, settings, req.GetString("id", ""), section)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- update_task ---

func updateTool() mcp.Tool {
	return mcp.NewTool("update_task",
		mcp.WithDescription("Edit a task. Omitted fields are left alone; an empty string clears a field."),
		mcp.WithString("id",
			mcp.Description("Task id"),
			mcp.Required(),
		),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("do_date", mcp.Description("Do date as YYYY-MM-DD")),
		mcp.WithString("do_time", mcp.Description("Do time as HH:MM")),
		mcp.WithString("recurrence", mcp.Description("type:interval[:day]")),
		mcp.WithString("url", mcp.Description("Link shown with the task")),
		mcp.WithString("goal_id", mcp.Description("Weekly goal id")),
	)
}

func updateHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		field := func(name string) *string {
			if _, ok := args[name]; !ok {
				return nil
			}
			v := req.GetString(name, "")
			return &v
		}

		patch := commands.TaskPatch{
			Title:      field("title"),
			DoDate:     field("do_date"),
			DoTime:     field("do_time"),
			Recurrence: field("recurrence"),
			URL:        field("url"),
			GoalID:     field("goal_id"),
		}
		result, err := commands.NewUpdateTaskCommand(repo, req.GetString("id", ""), patch).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- delete_task ---

func deleteTool() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task, active or archived. This cannot be undone."),
		mcp.WithString("id",
			mcp.Description("Task id"),
			mcp.Required(),
		),
	)
}

func deleteHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewDeleteTaskCommand(repo, req.GetString("id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- add_goal ---

func addGoalTool() mcp.Tool {
	return mcp.NewTool("add_goal",
		mcp.WithDescription("Add a weekly goal that tasks can be tagged with."),
		mcp.WithString("title",
			mcp.Description("Goal title"),
			mcp.Required(),
		),
	)
}

func addGoalHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewAddGoalCommand(repo, req.GetString("title", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- toggle_habit ---

func toggleHabitTool() mcp.Tool {
	return mcp.NewTool("toggle_habit",
		mcp.WithDescription("Check or uncheck a daily habit for today."),
		mcp.WithString("id",
			mcp.Description("Habit id"),
			mcp.Required(),
		),
	)
}

func toggleHabitHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewToggleHabitCommand(repo, req.GetString("id", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- auto_sort ---

func sortTool() mcp.Tool {
	return mcp.NewTool("auto_sort",
		mcp.WithDescription("Promote tasks due today into Immediate and sort every section by date."),
	)
}

func sortHandler(repo ports.FocusRepository, settings domain.Settings) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewAutoSortCommand(repo, settings).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		msg := result.Message
		if len(result.Overflow) > 0 {
			var titles []string
			for _, t := range result.Overflow {
				titles = append(titles, t.Title)
			}
			msg += "\nDid not fit: " + strings.Join(titles, ", ")
		}
		return mcp.NewToolResultText(msg), nil
	}
}
