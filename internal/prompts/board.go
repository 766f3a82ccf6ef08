// Package prompts implements the MCP prompts for the ticket board.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the board-status MCP prompt.
// It instructs the AI to walk the board and summarize it.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("board-status",
		mcp.WithPromptDescription(
			"Summarize the Kanban board for a repository: what is in each "+
				"column and which unassigned tickets are ready to promote.",
		),
		mcp.WithArgument("repository",
			mcp.ArgumentDescription("Repository to report on, as owner/name"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the board-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	repository := req.Params.Arguments["repository"]
	return &mcp.GetPromptResult{
		Description: "Kanban Board Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Give me the state of the Kanban board for " + repository + ".\n\n" +
						"1. Run ticket_check_ready on each unassigned ticket you know about\n" +
						"2. Show each column with its tickets in order\n" +
						"3. Call out unassigned tickets that are ready — offer to ticket_promote them\n" +
						"4. For tickets that are not ready, list what is missing",
				),
			},
		},
	}, nil
}

// GroomPrompt handles the board-groom MCP prompt.
// It drives a backlog grooming pass over unassigned tickets.
type GroomPrompt struct{}

// NewGroomPrompt creates a GroomPrompt.
func NewGroomPrompt() *GroomPrompt {
	return &GroomPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *GroomPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("board-groom",
		mcp.WithPromptDescription(
			"Groom the backlog: fix up unassigned tickets until they satisfy "+
				"the Definition of Ready, then promote them to To Do.",
		),
		mcp.WithArgument("repository",
			mcp.ArgumentDescription("Repository to groom, as owner/name"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the board-groom prompt request.
func (p *GroomPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	repository := req.Params.Arguments["repository"]
	return &mcp.GetPromptResult{
		Description: "Backlog Grooming",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Groom the unassigned tickets in " + repository + ", one at a time:\n\n" +
						"1. ticket_check_ready to see what is missing\n" +
						"2. Draft the missing sections with me, then ticket_update with the full body\n" +
						"3. When a ticket becomes ready, ticket_promote it to To Do\n" +
						"4. If a ticket belongs in another repository, suggest ticket_migrate\n\n" +
						"Ask me before promoting or migrating anything.",
				),
			},
		},
	}, nil
}
