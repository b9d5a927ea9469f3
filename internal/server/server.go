package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MWood1988/TrainingLog/internal/ingest/csvlog"
	"github.com/MWood1988/TrainingLog/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  *store.Store
	csv    *csvlog.Provider
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(st *store.Store, csvProvider *csvlog.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  st,
		csv:    csvProvider,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount attaches an extra handler (e.g. the MCP endpoint) under a path
// prefix.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read-only queries
	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Get("/api/v1/templates/{id}/sessions", s.handleTemplateSessions)
	s.router.Get("/api/v1/sessions", s.handleListSessions)
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Get("/api/v1/progress", s.handleExerciseProgress)
	s.router.Get("/api/v1/export", s.handleExport)
	s.router.Get("/api/v1/imports", s.handleImportLogs)

	// Mutations (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/import", s.handleImport)
		r.Post("/api/v1/templates", s.handleCreateTemplate)
		r.Post("/api/v1/sessions", s.handleCreateSession)
		r.Put("/api/v1/exercises/{id}/notes", s.handleUpdateNotes)
		r.Delete("/api/v1/exercises/{id}", s.handleDeleteExercise)
		r.Delete("/api/v1/sessions/{id}", s.handleDeleteSession)
	})
}
