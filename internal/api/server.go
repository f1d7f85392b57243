package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/underwriterhq/underwriter/internal/config"
	"github.com/underwriterhq/underwriter/internal/grader"
	"github.com/underwriterhq/underwriter/internal/llm"
	"github.com/underwriterhq/underwriter/internal/pipeline"
	"github.com/underwriterhq/underwriter/internal/store"
)

// Server is the HTTP API server for underwriter.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	flow         *pipeline.FlowService
	extractor    *grader.Extractor
	store        *store.Store
	llm          *llm.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, flow *pipeline.FlowService, ext *grader.Extractor, st *store.Store, client *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		flow:         flow,
		extractor:    ext,
		store:        st,
		llm:          client,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/writings", s.handleSubmitWriting)
		r.Get("/api/writings", s.handleListWritings)
		r.Get("/api/writings/{writingID}", s.handleGetWriting)
		r.Post("/api/writings/upload", s.handleUpload)
		r.Get("/api/writings/upload/{jobID}/status", s.handleUploadStatus)

		r.Get("/api/profile", s.handleGetProfile)

		r.Post("/api/flow/sessions", s.handleCreateFlowSession)
		r.Post("/api/flow/attempts", s.handleFlowAttempt)
		r.Get("/api/flow/baseline", s.handleFlowBaseline)

		r.Post("/api/grader/rubrics", s.handleExtractRubric)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
