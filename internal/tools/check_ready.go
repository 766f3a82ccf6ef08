package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// CheckReadyTool handles the ticket_check_ready MCP tool.
type CheckReadyTool struct {
	engine *engine.Manager
}

// NewCheckReadyTool creates a CheckReadyTool.
func NewCheckReadyTool(m *engine.Manager) *CheckReadyTool {
	return &CheckReadyTool{engine: m}
}

// Definition returns the MCP tool definition for registration.
func (t *CheckReadyTool) Definition() mcp.Tool {
	return mcp.NewTool("ticket_check_ready",
		mcp.WithDescription(
			"Evaluate a ticket against the Definition of Ready without changing "+
				"anything: non-empty Goal and Human-verifiable deliverable sections, "+
				"Acceptance criteria with at least one checkbox, Constraints and "+
				"Non-goals sections, and no unresolved <...> placeholders.",
		),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository the ticket belongs to, as owner/name"),
		),
		mcp.WithString("ticket",
			mcp.Required(),
			mcp.Description("Ticket reference: display id or number"),
		),
	)
}

// Handle processes the ticket_check_ready tool call.
func (t *CheckReadyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := strings.TrimSpace(req.GetString("repository", ""))
	ref := req.GetString("ticket", "")

	rep, err := t.engine.CheckReady(ctx, repository, ref)
	if err != nil {
		if result, ok := errorResult(err); ok {
			return result, nil
		}
		return nil, fmt.Errorf("checking readiness: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Readiness Check\n\n")
	fmt.Fprintf(&sb, "**ID:** `%s`\n", rep.DisplayID)
	fmt.Fprintf(&sb, "**Column:** %s\n", ticket.ColumnName(rep.Column))
	fmt.Fprintf(&sb, "**Ready:** %v\n", rep.Ready)
	sb.WriteString(missingItemsSection(rep.Missing))
	if rep.Ready && rep.Column == ticket.ColumnUnassigned {
		sb.WriteString("\nThe ticket is ready; ticket_promote moves it to To Do.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
