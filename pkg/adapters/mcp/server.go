package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
	"github.com/aretw0/reportflow/pkg/i18n"
	"github.com/aretw0/reportflow/pkg/ports"
	"github.com/aretw0/reportflow/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI addresses the reason table resource.
const CatalogURI = "reportflow://catalog"

// ViewResult is the structured output of every step tool.
type ViewResult struct {
	SessionID string            `json:"session_id" jsonschema_description:"Dialog the view belongs to"`
	View      *domain.View      `json:"view,omitempty" jsonschema_description:"Current step of the dialog; absent once closed"`
	Text      map[string]string `json:"text,omitempty" jsonschema_description:"Message ids of the view resolved to English text"`
	Closed    bool              `json:"closed" jsonschema_description:"True once the dialog has been closed"`
	Error     string            `json:"error,omitempty" jsonschema_description:"Inline validation message, if the last input was rejected"`
}

// Server exposes a ports.FlowEngine as MCP tools.
type Server struct {
	engine    ports.FlowEngine
	bundle    *i18n.Bundle
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

type Option func(*Server)

func WithBundle(b *i18n.Bundle) Option {
	return func(s *Server) {
		s.bundle = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server with the report tools and the catalog
// resource registered.
func NewServer(engine ports.FlowEngine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("reportflow-mcp", reportflow.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bundle == nil {
		s.bundle = i18n.Default()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on stdin and stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sse.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sse.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	sessionArg := mcp.WithString("session_id", mcp.Required(), mcp.Description("Dialog id returned by start_report"))

	s.mcpServer.AddTool(mcp.NewTool("start_report",
		mcp.WithDescription("Open a report dialog. Returns the category step; see reportflow://catalog for the reasons."),
		mcp.WithString("type", mcp.Description("What is being reported: project, comment or studio (default project)")),
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("select_category",
		mcp.WithDescription("Choose the report reason on the category step."),
		sessionArg,
		mcp.WithString("value", mcp.Required(), mcp.Description("Category value from the catalog")),
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleSelectCategory))

	s.mcpServer.AddTool(mcp.NewTool("select_subcategory",
		mcp.WithDescription("Refine the reason on the subcategory step."),
		sessionArg,
		mcp.WithString("value", mcp.Required(), mcp.Description("Subcategory value of the chosen category")),
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleSelectSubcategory))

	s.mcpServer.AddTool(mcp.NewTool("submit_notes",
		mcp.WithDescription(fmt.Sprintf("Describe the problem and send the report. Notes must be %d to %d characters.", form.NotesMinLength, form.NotesMaxLength)),
		sessionArg,
		mcp.WithString("notes", mcp.Required(), mcp.Description("Free-text description")),
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmitNotes))

	s.mcpServer.AddTool(mcp.NewTool("acknowledge",
		mcp.WithDescription("Press close on the confirmation or dead-end panel, ending the dialog."),
		sessionArg,
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleAcknowledge))

	s.mcpServer.AddTool(mcp.NewTool("close_report",
		mcp.WithDescription("Dismiss the dialog from any step without sending anything."),
		sessionArg,
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleClose))

	s.mcpServer.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Render the current step of a dialog, e.g. to poll a pending submission."),
		sessionArg,
		mcp.WithOutputSchema[ViewResult](),
	), mcp.NewStructuredToolHandler(s.handleGetView))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Report reasons",
		mcp.WithResourceDescription("Categories and subcategories a report can be filed under"),
		mcp.WithMIMEType("application/json"),
	), s.handleCatalog)
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	reportType, _ := args["type"].(string)
	sess, view, err := s.engine.Open(ctx, reportType)
	if err != nil {
		return ViewResult{}, fmt.Errorf("start failed: %w", err)
	}
	return s.result(sess.ID, view), nil
}

func (s *Server) handleSelectCategory(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	id, value := stringArg(args, "session_id"), stringArg(args, "value")
	view, err := s.engine.SelectCategory(ctx, id, value)
	return s.stepResult(id, view, err)
}

func (s *Server) handleSelectSubcategory(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	id, value := stringArg(args, "session_id"), stringArg(args, "value")
	view, err := s.engine.SelectSubcategory(ctx, id, value)
	return s.stepResult(id, view, err)
}

func (s *Server) handleSubmitNotes(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	id := stringArg(args, "session_id")
	notes, err := runner.SanitizeInput(stringArg(args, "notes"))
	if err != nil {
		s.logger.Warn("mcp submit_notes: input rejected", "session_id", id, "err", err)
		return ViewResult{}, fmt.Errorf("input rejected: %w", err)
	}
	view, err := s.engine.SubmitNotes(ctx, id, notes)
	return s.stepResult(id, view, err)
}

func (s *Server) handleAcknowledge(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	id := stringArg(args, "session_id")
	if err := s.engine.Acknowledge(ctx, id); err != nil {
		return ViewResult{}, fmt.Errorf("acknowledge failed: %w", err)
	}
	return ViewResult{SessionID: id, Closed: true}, nil
}

func (s *Server) handleClose(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	id := stringArg(args, "session_id")
	if err := s.engine.Close(ctx, id); err != nil {
		return ViewResult{}, fmt.Errorf("close failed: %w", err)
	}
	return ViewResult{SessionID: id, Closed: true}, nil
}

func (s *Server) handleGetView(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ViewResult, error) {
	id := stringArg(args, "session_id")
	view, err := s.engine.View(ctx, id)
	if err != nil {
		return ViewResult{}, fmt.Errorf("get_view failed: %w", err)
	}
	return s.result(id, view), nil
}

func (s *Server) handleCatalog(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.engine.Catalog())
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// stepResult turns a field validation failure into a normal result with
// the inline message, so the agent can correct its input.
func (s *Server) stepResult(id string, view domain.View, err error) (ViewResult, error) {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		res := s.result(id, view)
		res.Error = s.bundle.Text(verr.Message)
		return res, nil
	}
	if err != nil {
		return ViewResult{}, err
	}
	return s.result(id, view), nil
}

func (s *Server) result(id string, view domain.View) ViewResult {
	return ViewResult{
		SessionID: id,
		View:      &view,
		Text:      s.bundle.Resolve(view),
	}
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}
