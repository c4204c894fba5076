package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/docmap/internal/billing"
	"github.com/dgallion1/docmap/internal/config"
	"github.com/dgallion1/docmap/internal/extract"
	"github.com/dgallion1/docmap/internal/pipeline"
	"github.com/dgallion1/docmap/internal/session"
)

// freeMindmapLevels caps the prompted depth for sessions that have not paid.
const freeMindmapLevels = 3

// Billing is the payment boundary. *billing.Client implements it.
type Billing interface {
	CreateCheckout(ctx context.Context, userID, email string) (*billing.Checkout, error)
	VerifySession(ctx context.Context, checkoutID string) (*billing.Verification, error)
}

// Server is the HTTP API server for docmap.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	sessions     *session.Store
	billing      Billing
	gen          *extract.Timed
	validate     *validator.Validate
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. bill and gen may be nil;
// the billing and stats endpoints then answer 503.
func NewServer(orch *pipeline.Orchestrator, sessions *session.Store, bill Billing, gen *extract.Timed, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		sessions:     sessions,
		billing:      bill,
		gen:          gen,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
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
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Post("/api/session", s.handleSessionInit)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(s.sessions, s.log))

		r.Delete("/api/session", s.handleSessionTeardown)

		r.Post("/api/summary", s.handleSummaryUpload)
		r.Get("/api/summary", s.handleGetSummary)
		r.Get("/api/summary/html", s.handleSummaryHTML)

		r.Post("/api/mindmap", s.handleMindmapGenerate)
		r.Get("/api/mindmap", s.handleGetMindmap)
		r.Post("/api/mindmap/view/gestures", s.handleGestures)
		r.Post("/api/mindmap/view/{op}", s.handleViewOp)
		r.Get("/api/mindmap/export.html", s.handleExportHTML)
		r.Get("/api/mindmap/export.pdf", s.handleExportPDF)

		r.Post("/api/flashcards", s.handleFlashcardsGenerate)
		r.Get("/api/flashcards", s.handleGetFlashcards)
		r.Post("/api/flashcards/{op}", s.handleFlashcardOp)
		r.Get("/api/flashcards/export.pdf", s.handleExportDeckPDF)

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Post("/api/billing/checkout", s.handleCheckout)
		r.Get("/api/billing/verify", s.handleVerify)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
