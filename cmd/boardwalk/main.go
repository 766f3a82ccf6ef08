// Boardwalk: Kanban Ticket MCP Server
//
// An MCP server that lets AI coding tools manage repository-scoped
// ticket backlogs: create tickets from a template, evaluate them
// against a Definition of Ready, and move them across a Kanban board.
//
// Usage:
//
//	boardwalk serve    # Start MCP server (stdio transport)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	boardserver "github.com/boardwalklabs/boardwalk/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("boardwalk v%s\n", boardserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := boardserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Stdout belongs to the MCP stdio transport; everything else goes
	// to stderr.
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Boardwalk v%s — Kanban Ticket MCP Server

Usage:
  boardwalk serve    Start the MCP server (stdio transport)

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "boardwalk": {
        "command": "boardwalk",
        "args": ["serve"]
      }
    }
  }

Environment:
  BOARDWALK_DATA_DIR       Ticket database directory (default ~/.boardwalk)
  BOARDWALK_OP_TIMEOUT     Per-operation timeout (default 20s)
  BOARDWALK_REMOTE_PROBE   Set to true to verify migration targets on GitHub
  BOARDWALK_GITHUB_TOKEN   Token for the remote probe (falls back to GITHUB_TOKEN)
`, boardserver.Version)
}
