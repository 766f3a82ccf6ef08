package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// PromoteTool handles the ticket_promote MCP tool — the guarded
// unassigned-to-todo move.
type PromoteTool struct {
	engine *engine.Manager
}

// NewPromoteTool creates a PromoteTool.
func NewPromoteTool(m *engine.Manager) *PromoteTool {
	return &PromoteTool{engine: m}
}

// Definition returns the MCP tool definition for registration.
func (t *PromoteTool) Definition() mcp.Tool {
	return mcp.NewTool("ticket_promote",
		mcp.WithDescription(
			"Move an Unassigned ticket into the To Do column. Fails if the ticket "+
				"has already left Unassigned. Run ticket_check_ready first — this tool "+
				"does not evaluate readiness itself.",
		),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository the ticket belongs to, as owner/name"),
		),
		mcp.WithString("ticket",
			mcp.Required(),
			mcp.Description("Ticket reference: display id or number"),
		),
		mcp.WithString("position",
			mcp.Description("Where in To Do: 'top', 'bottom' (default), or a 0-based index"),
		),
	)
}

// Handle processes the ticket_promote tool call.
func (t *PromoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := strings.TrimSpace(req.GetString("repository", ""))
	ref := req.GetString("ticket", "")
	position := req.GetString("position", "")

	res, err := t.engine.PromoteToTodo(ctx, repository, ref, position)
	if err != nil {
		if result, ok := errorResult(err); ok {
			return result, nil
		}
		return nil, fmt.Errorf("promoting ticket: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Promoted `%s` to **%s** at position %d.",
		res.DisplayID, ticket.ColumnName(res.Column), res.Position,
	)), nil
}
