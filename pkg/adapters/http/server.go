package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/internal/logging"
	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/query"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodySize bounds request bodies. Imports carry whole documents.
const MaxBodySize = 10 << 20

// Engine defines the workshop operations the REST API exposes.
type Engine interface {
	CreateWorkshop(ctx context.Context, in eventstorm.CreateWorkshopInput) (*domain.Document, error)
	ListWorkshops(ctx context.Context) ([]domain.Summary, error)
	LoadWorkshop(ctx context.Context, id string) (*domain.Document, error)
	DeleteWorkshop(ctx context.Context, id string) error
	AddElement(ctx context.Context, workshopID string, in graph.ElementInput) (domain.Element, error)
	UpdateElement(ctx context.Context, workshopID, elementID string, patch graph.ElementPatch) (domain.Element, []string, error)
	DeleteElement(ctx context.Context, workshopID, elementID string) (domain.Element, error)
	CreateContext(ctx context.Context, workshopID string, in graph.ContextInput) (domain.BoundedContext, error)
	DeleteContext(ctx context.Context, workshopID, contextID string) (domain.BoundedContext, error)
	AssignToContext(ctx context.Context, workshopID, contextID string, elementIDs []string) (graph.AssignmentResult, error)
	Search(ctx context.Context, workshopID, term string, f query.Filter) ([]domain.Element, error)
	Timeline(ctx context.Context, workshopID string, f query.Filter) ([]domain.Element, error)
	Statistics(ctx context.Context, workshopID string) (query.Statistics, error)
	ContextOverview(ctx context.Context, workshopID, contextID string) (query.Overview, error)
	VisualizeFlow(ctx context.Context, workshopID string, opts flow.Options) (flow.Report, error)
	Export(ctx context.Context, workshopID string, includeMetadata bool) (codec.Export, error)
	Import(ctx context.Context, data []byte, format codec.Format, opts codec.ImportOptions) (*domain.Document, error)
}

// Server serves the workshop Engine over REST.
type Server struct {
	engine   Engine
	logger   *slog.Logger
	metrics  http.Handler
	pageSize int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithPageSize sets the page size used when a request does not pass one.
func WithPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{
		engine:   engine,
		logger:   logging.NewNop(),
		pageSize: query.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return enableCORS(s.routes())
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.getHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Post("/import", s.importWorkshop)

	r.Route("/workshops", func(r chi.Router) {
		r.Get("/", s.listWorkshops)
		r.Post("/", s.createWorkshop)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getWorkshop)
			r.Delete("/", s.deleteWorkshop)

			r.Post("/elements", s.addElement)
			r.Patch("/elements/{elementID}", s.updateElement)
			r.Delete("/elements/{elementID}", s.deleteElement)

			r.Get("/contexts", s.contextOverview)
			r.Post("/contexts", s.createContext)
			r.Delete("/contexts/{contextID}", s.deleteContext)
			r.Post("/contexts/{contextID}/assign", s.assign)

			r.Get("/search", s.search)
			r.Get("/timeline", s.timeline)
			r.Get("/statistics", s.statistics)
			r.Get("/flow", s.getFlow)
			r.Get("/mermaid", s.getMermaid)
			r.Get("/export", s.exportWorkshop)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		}, ", "))
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// getHealth handles GET /health.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": eventstorm.Version,
	})
}
