// Package mcp exposes the workout log to MCP clients over stdio: workouts,
// snoozes, period summaries, and the current weekly status.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/gymbot/internal/storage"
)

// New creates an MCP server with all tools registered.
func New(st storage.Store, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymBot", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("Gym supervisor data server. Query logged workouts, snooze events, period summaries, and the weekly 3-workout goal status."),
	)

	h := &handlers{st: st, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetSummary, Handler: h.getSummary},
		server.ServerTool{Tool: toolGetStatus, Handler: h.getStatus},
		server.ServerTool{Tool: toolGetSnoozes, Handler: h.getSnoozes},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	st  storage.Store
	log *slog.Logger
}
