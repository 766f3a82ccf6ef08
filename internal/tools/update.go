package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
)

// UpdateTool handles the ticket_update MCP tool.
type UpdateTool struct {
	engine *engine.Manager
}

// NewUpdateTool creates an UpdateTool.
func NewUpdateTool(m *engine.Manager) *UpdateTool {
	return &UpdateTool{engine: m}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("ticket_update",
		mcp.WithDescription(
			"Replace a ticket's markdown body. The ticket keeps its column — use "+
				"ticket_move or ticket_promote to change placement. The new body is "+
				"normalized and re-checked against the Definition of Ready.",
		),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository the ticket belongs to, as owner/name"),
		),
		mcp.WithString("ticket",
			mcp.Required(),
			mcp.Description("Ticket reference: a display id like ACME-0012, or a bare "+
				"or zero-padded number like 12 or 0012"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Full replacement markdown body; no <...> placeholders allowed"),
		),
	)
}

// Handle processes the ticket_update tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := strings.TrimSpace(req.GetString("repository", ""))
	ref := req.GetString("ticket", "")
	body := req.GetString("body", "")

	res, err := t.engine.Update(ctx, repository, ref, body)
	if err != nil {
		if result, ok := errorResult(err); ok {
			return result, nil
		}
		return nil, fmt.Errorf("updating ticket: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Ticket Updated\n\n")
	fmt.Fprintf(&sb, "**ID:** `%s`\n", res.DisplayID)
	fmt.Fprintf(&sb, "**Ready:** %v\n", res.Ready)
	sb.WriteString(missingItemsSection(res.MissingItems))
	if res.Ready {
		sb.WriteString("\nThe ticket satisfies the Definition of Ready. " +
			"If it is still unassigned, ticket_promote moves it to To Do.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
