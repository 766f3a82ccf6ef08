// Package server wires the ticket engine, store, and probes into an
// MCP server instance. No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/boardwalklabs/boardwalk/internal/config"
	"github.com/boardwalklabs/boardwalk/internal/engine"
	"github.com/boardwalklabs/boardwalk/internal/probe"
	"github.com/boardwalklabs/boardwalk/internal/prompts"
	"github.com/boardwalklabs/boardwalk/internal/resources"
	"github.com/boardwalklabs/boardwalk/internal/store"
	"github.com/boardwalklabs/boardwalk/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function closes the ticket database and must be
// called on shutdown (typically via defer). It is always non-nil.
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, noop, err
	}

	st, err := store.New(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, noop, fmt.Errorf("opening ticket store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			log.Printf("WARNING: ticket store close: %v", err)
		}
	}

	// The local store vouches for repositories that already hold
	// tickets; the GitHub probe, when enabled, vouches for everything
	// else a migration may target.
	probes := probe.Multi{probe.StoreBacked(st)}
	if cfg.RemoteProbe {
		probes = append(probes, probe.NewGitHub(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.ProbeTimeout))
	}

	mgr := engine.New(st, engine.Options{
		Probe:   probes,
		Timeout: cfg.OperationTimeout,
	})

	s := server.NewMCPServer(
		"boardwalk",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	createTool := tools.NewCreateTool(mgr)
	s.AddTool(createTool.Definition(), createTool.Handle)

	updateTool := tools.NewUpdateTool(mgr)
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	checkReadyTool := tools.NewCheckReadyTool(mgr)
	s.AddTool(checkReadyTool.Definition(), checkReadyTool.Handle)

	moveTool := tools.NewMoveTool(mgr)
	s.AddTool(moveTool.Definition(), moveTool.Handle)

	promoteTool := tools.NewPromoteTool(mgr)
	s.AddTool(promoteTool.Definition(), promoteTool.Handle)

	migrateTool := tools.NewMigrateTool(mgr)
	s.AddTool(migrateTool.Definition(), migrateTool.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	groomPrompt := prompts.NewGroomPrompt()
	s.AddPrompt(groomPrompt.Definition(), groomPrompt.Handle)

	resourceHandler := resources.NewHandler()
	s.AddResource(resourceHandler.ColumnsResource(), resourceHandler.HandleColumns)
	s.AddResource(resourceHandler.TemplateResource(), resourceHandler.HandleTemplate)

	return s, cleanup, nil
}

// noop is the default cleanup when initialization fails early.
func noop() {}

func serverInstructions() string {
	return `Boardwalk manages tickets on a Kanban board, one backlog per repository.

Workflow:
1. Read kanban://template and fill in every <...> placeholder, then ticket_create.
   A ticket that already satisfies the Definition of Ready lands in To Do;
   otherwise it waits in Unassigned.
2. ticket_check_ready shows what an unassigned ticket is missing; fix the body
   with ticket_update (send the complete body, not a diff).
3. ticket_promote moves a ready unassigned ticket to To Do. ticket_move handles
   every other column change, with optional 'top'/'bottom'/index placement.
4. ticket_migrate moves a ticket to another repository's To Do column under a
   fresh number.

Ticket references accept a display id (ACME-0012) or a bare number (12).
Never leave <...> placeholders in a body — writes are rejected while any remain.`
}
