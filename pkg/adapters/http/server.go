package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
	"github.com/aretw0/reportflow/pkg/i18n"
	"github.com/aretw0/reportflow/pkg/ports"
	"github.com/aretw0/reportflow/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodySize caps JSON request bodies. Notes are further bounded by
// runner.SanitizeInput.
const maxBodySize = 64 << 10

// Server exposes a ports.FlowEngine as a JSON API.
type Server struct {
	Engine  ports.FlowEngine
	Streams *StreamManager

	bundle  *i18n.Bundle
	metrics http.Handler
	logger  *slog.Logger
}

type Option func(*Server)

// WithStreams shares a StreamManager, typically one also registered with
// reportflow.WithObserver so diffs reach SSE subscribers.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithBundle resolves view messages with b instead of the English default.
func WithBundle(b *i18n.Bundle) Option {
	return func(s *Server) {
		s.bundle = b
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(engine ports.FlowEngine, opts ...Option) *Server {
	s := &Server{Engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.bundle == nil {
		s.bundle = i18n.Default()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// Router builds the chi routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/catalog", s.GetCatalog)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(RawSpec())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.OpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.CloseSession)
			r.Post("/category", s.SelectCategory)
			r.Post("/subcategory", s.SelectSubcategory)
			r.Post("/notes", s.SubmitNotes)
			r.Put("/status", s.SetStatus)
			r.Post("/acknowledge", s.Acknowledge)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine ports.FlowEngine, opts ...Option) http.Handler {
	return enableCORS(NewServer(engine, opts...).Router())
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ViewResponse is the body of every call that returns a step.
type ViewResponse struct {
	SessionID string            `json:"session_id"`
	View      domain.View       `json:"view"`
	Text      map[string]string `json:"text"`
	Error     *ErrorBody        `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type valueRequest struct {
	Value *string `json:"value"`
}

type notesRequest struct {
	Notes *string `json:"notes"`
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

type openRequest struct {
	Type string `json:"type"`
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := LoadSpec(r.Context()); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "reportflow-http",
		"version":     reportflow.Version,
		"api_version": apiVersion,
	})
}

func (s *Server) GetCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Catalog())
}

func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var body openRequest
	if r.ContentLength != 0 {
		if err := s.decode(w, r, &body); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	sess, view, err := s.Engine.Open(r.Context(), strings.TrimSpace(body.Type))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session opened", "session_id", sess.ID, "type", sess.Type)
	s.writeView(w, http.StatusCreated, view, nil)
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Engine.View(r.Context(), chi.URLParam(r, "id"))
	s.respond(w, r, view, err)
}

func (s *Server) SelectCategory(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Value == nil {
		s.writeError(w, r, badRequest("value is required"))
		return
	}
	view, err := s.Engine.SelectCategory(r.Context(), chi.URLParam(r, "id"), *body.Value)
	s.respond(w, r, view, err)
}

func (s *Server) SelectSubcategory(w http.ResponseWriter, r *http.Request) {
	var body valueRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Value == nil {
		s.writeError(w, r, badRequest("value is required"))
		return
	}
	view, err := s.Engine.SelectSubcategory(r.Context(), chi.URLParam(r, "id"), *body.Value)
	s.respond(w, r, view, err)
}

func (s *Server) SubmitNotes(w http.ResponseWriter, r *http.Request) {
	var body notesRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.Notes == nil {
		s.writeError(w, r, badRequest("notes is required"))
		return
	}
	notes, err := runner.SanitizeInput(*body.Notes)
	if err != nil {
		s.writeError(w, r, badRequest(err.Error()))
		return
	}
	view, err := s.Engine.SubmitNotes(r.Context(), chi.URLParam(r, "id"), notes)
	s.respond(w, r, view, err)
}

func (s *Server) SetStatus(w http.ResponseWriter, r *http.Request) {
	var body statusRequest
	if err := s.decode(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.Engine.SetStatus(r.Context(), id, body.Status); err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.Engine.View(r.Context(), id)
	s.respond(w, r, view, err)
}

func (s *Server) Acknowledge(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Acknowledge(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeEvents streams session diffs as server-sent events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if _, err := s.Engine.View(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var watch []string
	if raw := r.URL.Query().Get("watch"); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				watch = append(watch, f)
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprint(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	s.logger.Debug("sse subscribed", "session_id", sessionID, "watch", watch)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("sse client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 {
				var diff domain.SessionDiff
				if err := json.Unmarshal([]byte(msg), &diff); err == nil && !matchesWatch(diff, watch) {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// -- Helpers --

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// respond writes the view, or the error mapped to a status code. A field
// validation error still carries the view with its inline message.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, view domain.View, err error) {
	if err == nil {
		s.writeView(w, http.StatusOK, view, nil)
		return
	}
	var verr *form.ValidationError
	if errors.As(err, &verr) && view.SessionID != "" {
		s.writeView(w, http.StatusUnprocessableEntity, view, &ErrorBody{Code: "validation", Message: s.bundle.Text(verr.Message)})
		return
	}
	s.writeError(w, r, err)
}

func (s *Server) writeView(w http.ResponseWriter, status int, view domain.View, e *ErrorBody) {
	s.writeJSON(w, status, ViewResponse{
		SessionID: view.SessionID,
		View:      view,
		Text:      s.bundle.Resolve(view),
		Error:     e,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	s.writeJSON(w, status, ErrorBody{Code: code, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// StatusFor maps engine errors to an HTTP status and a short code.
func StatusFor(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, form.ErrValidation):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownSubcategory),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSubmissionPrevented),
		errors.Is(err, domain.ErrSubmissionPending),
		errors.Is(err, domain.ErrSessionClosed):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal"
}
