// Package tools implements the MCP tool handlers for the ticket
// board.
//
// Each file holds one tool. A tool is a struct carrying its
// dependencies, a Definition() for registration, and a Handle method
// compatible with mcp-go's CallToolRequest signature. Input problems
// the model can correct come back as tool error results; everything
// else is a real error.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/boardwalklabs/boardwalk/internal/engine"
)

// errorResult translates engine failures the caller can act on into
// MCP error results. Validation failures enumerate the offending
// placeholder tokens so the model can fix the body without guessing.
// The second return is false for fatal errors, which must surface as
// protocol errors instead.
func errorResult(err error) (*mcp.CallToolResult, bool) {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		msg := verr.Message
		if len(verr.Placeholders) > 0 {
			msg += "\n\nDetected placeholders: " + strings.Join(verr.Placeholders, ", ") +
				"\nReplace every <...> token with real content and retry."
		}
		return mcp.NewToolResultError(msg), true
	}
	var perr *engine.PreconditionError
	if errors.As(err, &perr) {
		return mcp.NewToolResultError(perr.Message), true
	}
	return nil, false
}

// missingItemsSection renders the Definition of Ready gaps as a
// markdown list, or an empty string when there are none.
func missingItemsSection(items []string) string {
	if len(items) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n## Missing for Definition of Ready\n\n")
	for _, item := range items {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	return sb.String()
}
