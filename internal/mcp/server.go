package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MWood1988/TrainingLog/internal/ingest/csvlog"
	"github.com/MWood1988/TrainingLog/internal/store"
)

// New creates an MCP server with all tools and resources registered.
func New(st *store.Store, csvProvider *csvlog.Provider, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("TrainingLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("TrainingLog workout server. Query workout templates, logged sessions, and per-exercise progress, or import a CSV export of historical workout data."),
	)

	h := &handlers{store: st, csv: csvProvider, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolImportCSV, Handler: h.importCSV},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resExerciseLibrary, Handler: h.exerciseLibrary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	store *store.Store
	csv   *csvlog.Provider
	log   *slog.Logger
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"traininglog://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Workout sessions from the last 30 days with exercises and sets"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseLibrary = mcp.NewResource(
	"traininglog://exercise_library",
	"Exercise Library",
	mcp.WithResourceDescription("All known exercises with their instruction notes"),
	mcp.WithMIMEType("application/json"),
)
