package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/eventstorm"
	"github.com/aretw0/eventstorm/internal/logging"
	"github.com/aretw0/eventstorm/internal/presentation/markdown"
	"github.com/aretw0/eventstorm/pkg/codec"
	"github.com/aretw0/eventstorm/pkg/domain"
	"github.com/aretw0/eventstorm/pkg/flow"
	"github.com/aretw0/eventstorm/pkg/graph"
	"github.com/aretw0/eventstorm/pkg/query"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WorkshopsURI is the resource listing every stored workshop.
const WorkshopsURI = "eventstorm://workshops"

// Engine defines the operations the MCP server exposes as tools.
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
	Inspect(ctx context.Context, workshopID string) (*graph.Graph, error)
	Export(ctx context.Context, workshopID string, includeMetadata bool) (codec.Export, error)
	Import(ctx context.Context, data []byte, format codec.Format, opts codec.ImportOptions) (*domain.Document, error)
}

// Server wraps the workshop Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
	charLimit int
	pageSize  int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCharacterLimit caps markdown responses at limit characters.
func WithCharacterLimit(limit int) Option {
	return func(s *Server) {
		if limit > 0 {
			s.charLimit = limit
		}
	}
}

// WithPageSize sets the page size used when a call does not pass one.
func WithPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		charLimit: markdown.DefaultCharacterLimit,
		pageSize:  query.DefaultPageSize,
		mcpServer: server.NewMCPServer("eventstorming_mcp", eventstorm.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithRecovery(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(WorkshopsURI, "Event Storming Workshops",
		mcp.WithResourceDescription("Summaries of every stored workshop, most recently updated first"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.engine.ListWorkshops(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list workshops: %w", err)
		}
		jsonBytes, err := json.MarshalIndent(workshopList(list), "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      WorkshopsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
