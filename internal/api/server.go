package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jdrodriguez/document-summarizer/internal/config"
	"github.com/jdrodriguez/document-summarizer/internal/engine"
)

// Server is the HTTP wrapper around the chunking engine. The CLI is the
// primary interface; this exists for callers that prefer a service.
type Server struct {
	router chi.Router
	engine *engine.Engine
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(eng *engine.Engine, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		engine: eng,
		log:    log,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		r.Post("/api/chunk", s.handleChunk)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
