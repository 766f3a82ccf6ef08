package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// CreateTool handles the ticket_create MCP tool.
type CreateTool struct {
	engine *engine.Manager
}

// NewCreateTool creates a CreateTool.
func NewCreateTool(m *engine.Manager) *CreateTool {
	return &CreateTool{engine: m}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTool) Definition() mcp.Tool {
	return mcp.NewTool("ticket_create",
		mcp.WithDescription(
			"Create a ticket in a repository's backlog. The body must follow the "+
				"ticket template (Goal, Human-verifiable deliverable, Acceptance criteria, "+
				"Constraints, Non-goals) with every <...> placeholder replaced by real "+
				"content. A ticket that already satisfies the Definition of Ready is "+
				"moved straight into the To Do column; otherwise it waits in Unassigned.",
		),
		mcp.WithString("repository",
			mcp.Required(),
			mcp.Description("Repository the ticket belongs to, as owner/name. Example: acme/web"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short ticket title. Example: 'Add login'"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Full markdown body following the ticket template "+
				"(read the kanban://template resource for the expected layout)"),
		),
	)
}

// Handle processes the ticket_create tool call.
func (t *CreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repository := strings.TrimSpace(req.GetString("repository", ""))
	title := strings.TrimSpace(req.GetString("title", ""))
	body := req.GetString("body", "")

	res, err := t.engine.Create(ctx, repository, title, body)
	if err != nil {
		if result, ok := errorResult(err); ok {
			return result, nil
		}
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Ticket Created\n\n")
	fmt.Fprintf(&sb, "**ID:** `%s`\n", res.DisplayID)
	fmt.Fprintf(&sb, "**Repository:** %s\n", repository)
	fmt.Fprintf(&sb, "**Column:** %s\n", ticket.ColumnName(res.Column))
	fmt.Fprintf(&sb, "**Ready:** %v\n", res.Ready)
	if res.AutoFixed {
		sb.WriteString("\nAcceptance-criteria bullets were rewritten as checkboxes to satisfy the Definition of Ready.\n")
	}
	sb.WriteString(missingItemsSection(res.MissingItems))
	if res.MovedToTodo {
		fmt.Fprintf(&sb, "\nThe ticket is ready and was placed at the end of the To Do column.\n")
	}
	if res.MoveError != "" {
		fmt.Fprintf(&sb, "\nThe ticket was created but the move to To Do failed: %s\n", res.MoveError)
		fmt.Fprintf(&sb, "Use ticket_promote to retry once the problem clears.\n")
	}
	if !res.Ready {
		fmt.Fprintf(&sb, "\nFill in the missing sections with ticket_update, then re-check with ticket_check_ready.\n")
	}

	return mcp.NewToolResultText(sb.String()), nil
}
