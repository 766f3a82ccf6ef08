package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
)

// MigrateTool handles the ticket_migrate MCP tool.
type MigrateTool struct {
	engine *engine.Manager
}

// NewMigrateTool creates a MigrateTool.
func NewMigrateTool(m *engine.Manager) *MigrateTool {
	return &MigrateTool{engine: m}
}

// Definition returns the MCP tool definition for registration.
func (t *MigrateTool) Definition() mcp.Tool {
	return mcp.NewTool("ticket_migrate",
		mcp.WithDescription(
			"Move a ticket to a different repository. The ticket gets the next free "+
				"number there, its title line is rewritten with the new id, and it "+
				"lands at the end of the target's To Do column. The target repository "+
				"must be known (have tickets already, or exist on GitHub when the "+
				"remote probe is enabled).",
		),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository the ticket currently belongs to, as owner/name"),
		),
		mcp.WithString("ticket",
			mcp.Required(),
			mcp.Description("Ticket reference: display id or number"),
		),
		mcp.WithString("target_repository",
			mcp.Required(),
			mcp.Description("Destination repository, as owner/name"),
		),
	)
}

// Handle processes the ticket_migrate tool call.
func (t *MigrateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := strings.TrimSpace(req.GetString("repository", ""))
	ref := req.GetString("ticket", "")
	target := strings.TrimSpace(req.GetString("target_repository", ""))

	res, err := t.engine.Migrate(ctx, repository, ref, target)
	if err != nil {
		if result, ok := errorResult(err); ok {
			return result, nil
		}
		return nil, fmt.Errorf("migrating ticket: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Ticket Migrated\n\n"+
			"**From:** `%s` (%s)\n"+
			"**To:** `%s` (%s)\n"+
			"**Sequence number:** %d\n"+
			"**Column:** To Do, position %d\n",
		res.FromDisplayID, repository,
		res.DisplayID, res.Repository,
		res.SequenceNumber, res.Position,
	)), nil
}
