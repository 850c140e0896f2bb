package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"ecgdx/adapters/ingest"
	"ecgdx/app"
	"ecgdx/domain/diagnosis"
	"ecgdx/internal"
	"ecgdx/ports"
)

// maxConcurrentFiles bounds how many batch uploads are processed at once.
const maxConcurrentFiles = 4

// Server is the HTTP boundary of the diagnosis service. It owns transport
// concerns only: uploads, temp-file lifecycle, status-code mapping.
type Server struct {
	router      *chi.Mux
	service     *app.DiagnosisService
	reader      *ingest.RecordingReader
	labels      diagnosis.ClassLabelMap
	history     ports.DiagnosisRepository // nil when history is disabled
	batchSem    *semaphore.Weighted
	maxUploadMB int64
	logger      *internal.Logger
}

// Config holds server wiring
type Config struct {
	Service     *app.DiagnosisService
	Reader      *ingest.RecordingReader
	Labels      diagnosis.ClassLabelMap
	History     ports.DiagnosisRepository
	MaxUploadMB int64
	Logger      *internal.Logger
}

// NewServer creates the HTTP server and its routes
func NewServer(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		service:     cfg.Service,
		reader:      cfg.Reader,
		labels:      cfg.Labels,
		history:     cfg.History,
		batchSem:    semaphore.NewWeighted(maxConcurrentFiles),
		maxUploadMB: cfg.MaxUploadMB,
		logger:      cfg.Logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/api/classes", s.handleClasses)
	s.router.Post("/api/predict", s.handlePredict)
	s.router.Post("/api/predict/batch", s.handlePredictBatch)
	s.router.Get("/api/history", s.handleHistory)
}

// Handler exposes the router, also used by httptest in the handler tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server on the given port
func (s *Server) ListenAndServe(port string) error {
	s.logger.Info("ECG diagnosis server listening on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}
