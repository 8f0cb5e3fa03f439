package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/gongwen/internal/config"
	"github.com/dgallion1/gongwen/internal/layout"
	"github.com/dgallion1/gongwen/internal/pathstore"
	"github.com/dgallion1/gongwen/internal/pipeline"
)

// DocumentStore reads and removes stored documents. *pathstore.Client
// implements it.
type DocumentStore interface {
	LoadDocument(ctx context.Context, id string) (*pathstore.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, limit int) ([]pathstore.DocumentSummary, error)
}

// Server is the HTTP API server for gongwen.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	docs         DocumentStore
	engine       *layout.Engine
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, docs DocumentStore, engine *layout.Engine, log *slog.Logger, cfg config.Config) *Server {
	if engine == nil {
		engine = &layout.Engine{}
	}
	s := &Server{
		orchestrator: orch,
		docs:         docs,
		engine:       engine,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.GongwenAPIKey, s.log))

		r.Post("/api/layout", s.handleLayout)
		r.Post("/api/style/resolve", s.handleResolveStyle)
		r.Post("/api/preview", s.handlePreview)
		r.Post("/api/export", s.handleExport)
		r.Post("/api/check", s.handleCheck)
		r.Post("/api/docno/normalize", s.handleNormalizeDocNo)

		r.Post("/api/import", s.handleImport)
		r.Post("/api/import/batch", s.handleBatchImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
		r.Get("/api/stats/import", s.handleImportStats)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
