package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"focuslist/internal/application/commands"
	"focuslist/internal/domain"
	"focuslist/internal/ports"
)

// RegisterReadTools adds all read-only focus tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, repo ports.FocusRepository) {
	s.AddTool(listTool(), listHandler(repo))
	s.AddTool(searchTool(), searchHandler(repo))
	s.AddTool(readFocusTool(), readFocusHandler(repo))
	s.AddTool(goalsTool(), goalsHandler(repo))
}

// --- list_tasks ---

func listTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks on the focus board. Without arguments lists every active section."),
		mcp.WithString("section",
			mcp.Description("Limit to one section: immediate, thisWeek or unscheduled"),
		),
		mcp.WithBoolean("include_archived",
			mcp.Description("Also list completed tasks from the archive"),
		),
	)
}

func listHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewListTasksCommand(repo)
		cmd.IncludeArchived = req.GetBool("include_archived", false)
		if s := req.GetString("section", ""); s != "" {
			section, err := domain.ParseSection(s)
			if err != nil {
				return toolError(err)
			}
			cmd.Section = section
		}

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(result.Tasks, formatTaskView)
	}
}

// --- search_tasks ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search_tasks",
		mcp.WithDescription("Search task titles, active and archived, by keyword. Best matches first."),
		mcp.WithString("query",
			mcp.Description("Search query (at least 2 characters)"),
			mcp.Required(),
		),
	)
}

func searchHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchTasksCommand(repo, query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			state := string(r.Task.Section)
			if r.Archived {
				state = "archived"
			}
			fmt.Fprintf(&sb, "%s  %-11s  %s\n", r.Task.ID, state, r.Task.Title)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- read_focus ---

func readFocusTool() mcp.Tool {
	return mcp.NewTool("read_focus",
		mcp.WithDescription("Read the focus document as markdown."),
	)
}

func readFocusHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := repo.Load(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(domain.Encode(data)), nil
	}
}

// --- list_goals ---

func goalsTool() mcp.Tool {
	return mcp.NewTool("list_goals",
		mcp.WithDescription("List this week's goals and daily habits with their ids."),
	)
}

func goalsHandler(repo ports.FocusRepository) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := repo.Load(ctx)
		if err != nil {
			return toolError(err)
		}
		var sb strings.Builder
		sb.WriteString("Goals:\n")
		for _, g := range data.Goals {
			fmt.Fprintf(&sb, "  %s  %s\n", g.ID, g.Title)
		}
		sb.WriteString("Habits:\n")
		for _, h := range data.Habits {
			mark := " "
			if h.CompletedToday {
				mark = "x"
			}
			fmt.Fprintf(&sb, "  [%s] %s  %s\n", mark, h.ID, h.Title)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatTaskView(v commands.TaskView) string {
	state := string(v.Section)
	switch {
	case v.Archived:
		state = "archived"
	case v.Overdue:
		state += " (overdue)"
	}
	line := fmt.Sprintf("%-22s %s", state, domain.FormatTaskText(v.Task, v.Archived))
	if v.Goal != "" {
		line += "  [" + v.Goal + "]"
	}
	return line
}
