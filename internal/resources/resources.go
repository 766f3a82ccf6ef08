// Package resources implements the MCP resources for the ticket
// board: the column layout and the canonical ticket template.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/ticket"
)

// Handler serves the board's read-only resources.
type Handler struct{}

// NewHandler creates a resource Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// ColumnsResource returns the MCP resource definition for the column
// layout.
func (h *Handler) ColumnsResource() mcp.Resource {
	return mcp.NewResource(
		"kanban://columns",
		"Kanban Columns",
		mcp.WithResourceDescription("The board's columns in rendering order, with ids and display names"),
		mcp.WithMIMEType("application/json"),
	)
}

type columnInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HandleColumns returns the column layout as JSON.
func (h *Handler) HandleColumns(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	columns := make([]columnInfo, len(ticket.Columns))
	for i, c := range ticket.Columns {
		columns[i] = columnInfo{ID: string(c), Name: ticket.ColumnName(c)}
	}
	data, err := json.MarshalIndent(columns, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling columns: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// TemplateResource returns the MCP resource definition for the ticket
// body template.
func (h *Handler) TemplateResource() mcp.Resource {
	return mcp.NewResource(
		"kanban://template",
		"Ticket Template",
		mcp.WithResourceDescription("The canonical ticket body; replace every <...> token before ticket_create"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleTemplate returns the canonical ticket body template.
func (h *Handler) HandleTemplate(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     ticket.BodyTemplate,
		},
	}, nil
}
