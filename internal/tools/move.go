package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// MoveTool handles the ticket_move MCP tool.
type MoveTool struct {
	engine *engine.Manager
}

// NewMoveTool creates a MoveTool.
func NewMoveTool(m *engine.Manager) *MoveTool {
	return &MoveTool{engine: m}
}

// Definition returns the MCP tool definition for registration.
func (t *MoveTool) Definition() mcp.Tool {
	return mcp.NewTool("ticket_move",
		mcp.WithDescription(
			"Move a ticket to a Kanban column, optionally at a specific position. "+
				"Known columns: Unassigned, To Do, QA, Human in the Loop, "+
				"Will Not Implement; other column names are accepted and slugified.",
		),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository the ticket belongs to, as owner/name"),
		),
		mcp.WithString("ticket",
			mcp.Required(),
			mcp.Description("Ticket reference: display id or number"),
		),
		mcp.WithString("column",
			mcp.Required(),
			mcp.Description("Target column, by id (todo, qa) or display name ('To Do')"),
		),
		mcp.WithString("position",
			mcp.Description("Where in the column: 'top', 'bottom' (default), or a 0-based index"),
		),
	)
}

// Handle processes the ticket_move tool call.
func (t *MoveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := strings.TrimSpace(req.GetString("repository", ""))
	ref := req.GetString("ticket", "")
	column := req.GetString("column", "")
	position := req.GetString("position", "")

	res, err := t.engine.Move(ctx, repository, ref, column, position)
	if err != nil {
		if result, ok := errorResult(err); ok {
			return result, nil
		}
		return nil, fmt.Errorf("moving ticket: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Moved `%s` to **%s** at position %d.",
		res.DisplayID, ticket.ColumnName(res.Column), res.Position,
	)), nil
}
