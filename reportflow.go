package reportflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/internal/runtime"
	"github.com/aretw0/reportflow/pkg/adapters/memory"
	"github.com/aretw0/reportflow/pkg/catalog"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
	"github.com/aretw0/reportflow/pkg/ports"
	"github.com/aretw0/reportflow/pkg/session"
	"github.com/aretw0/reportflow/pkg/submission"
	"github.com/google/uuid"
)

// ChangeFunc receives the difference a call made to a stored session.
// It is called after the change is saved, outside the session lock.
type ChangeFunc func(ctx context.Context, diff *domain.SessionDiff)

// Engine is the high-level entry point of the report flow.
// It binds the step controller to a session store and to the submit
// callback, and implements ports.FlowEngine.
type Engine struct {
	runtime   *runtime.Engine
	catalog   *domain.Catalog
	sessions  *session.Manager
	store     ports.StateStore
	submitter ports.Submitter
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	newID     func() string

	mu        sync.RWMutex
	observers []ChangeFunc
}

var _ ports.FlowEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCatalog replaces the built-in reason table.
func WithCatalog(c *domain.Catalog) Option {
	return func(e *Engine) {
		e.catalog = c
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSubmitter injects the submit callback. Without it reports are only
// logged.
func WithSubmitter(s ports.Submitter) Option {
	return func(e *Engine) {
		e.submitter = s
	}
}

// WithStore persists sessions in s. Ignored when WithSessionManager is set.
func WithStore(s ports.StateStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithSessionManager shares a manager, e.g. one configured with a
// distributed locker.
func WithSessionManager(m *session.Manager) Option {
	return func(e *Engine) {
		e.sessions = m
	}
}

// WithObserver subscribes fn to every saved session change.
func WithObserver(fn ChangeFunc) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, fn)
	}
}

// WithIDGenerator overrides the random session ids.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newID = fn
	}
}

// New creates an Engine. Defaults: built-in catalog, in-memory store,
// logging submitter, random UUID session ids.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.catalog == nil {
		e.catalog = catalog.Default()
	}
	if e.catalog.Len() == 0 {
		return nil, fmt.Errorf("invalid catalog: %w", domain.ErrEmptyCatalog)
	}
	if e.sessions == nil {
		if e.store == nil {
			e.store = memory.NewStore()
		}
		e.sessions = session.NewManager(e.store, session.WithLogger(e.logger))
	}
	if e.submitter == nil {
		e.submitter = submission.NewLogSubmitter(e.logger)
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}

	e.runtime = runtime.NewEngine(e.catalog,
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	)
	return e, nil
}

// Catalog returns the reason table in use.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Sessions exposes the session manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Observe subscribes fn to saved session changes after construction.
func (e *Engine) Observe(fn ChangeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Open starts a new dialog of the given report type ("" selects
// domain.DefaultReportType).
func (e *Engine) Open(ctx context.Context, reportType string) (*domain.Session, domain.View, error) {
	s := e.runtime.Start(ctx, e.newID(), reportType)
	if err := e.sessions.Create(ctx, s); err != nil {
		return nil, domain.View{}, fmt.Errorf("failed to open session: %w", err)
	}
	view, err := e.runtime.Render(s)
	return s, view, err
}

// Session returns the stored session.
func (e *Engine) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	return e.sessions.Load(ctx, sessionID)
}

// View renders the current step of the session.
func (e *Engine) View(ctx context.Context, sessionID string) (domain.View, error) {
	s, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		return domain.View{}, err
	}
	return e.runtime.Render(s)
}

// SelectCategory picks a root reason on the category step.
func (e *Engine) SelectCategory(ctx context.Context, sessionID, value string) (domain.View, error) {
	view, _, err := e.step(ctx, sessionID, runtime.SelectCategory{Value: value})
	return view, err
}

// SelectSubcategory picks a refinement on the subcategory step.
func (e *Engine) SelectSubcategory(ctx context.Context, sessionID, value string) (domain.View, error) {
	view, _, err := e.step(ctx, sessionID, runtime.SelectSubcategory{Value: value})
	return view, err
}

// SubmitNotes validates the notes and, when they pass, hands the report to
// the submitter. The session is marked waiting under the same lock that
// accepted the notes, so concurrent calls deliver at most one report.
// The view returned reflects whatever status the submitter pushed before
// returning.
func (e *Engine) SubmitNotes(ctx context.Context, sessionID, notes string) (domain.View, error) {
	view, p, err := e.step(ctx, sessionID, runtime.SubmitNotes{Notes: notes})
	if err != nil || p == nil {
		return view, err
	}

	notify := func(ctx context.Context, status domain.Status) error {
		return e.SetStatus(ctx, sessionID, status)
	}
	subErr := e.submitter.Submit(ctx, p.report, notify)
	e.runtime.NotifySubmit(ctx, sessionID, p.report, subErr)
	if subErr != nil {
		e.logger.Warn("submit callback failed", "session_id", sessionID, "err", subErr)
		if err := e.release(ctx, sessionID, p.prior); err != nil {
			e.logger.Warn("failed to clear waiting status", "session_id", sessionID, "err", err)
		}
	}

	if refreshed, err := e.View(ctx, sessionID); err == nil {
		view = refreshed
	}
	if subErr != nil {
		return view, fmt.Errorf("submit report: %w", subErr)
	}
	return view, nil
}

// Acknowledge presses the close button of the confirmation or dead-end
// panel, ending the session.
func (e *Engine) Acknowledge(ctx context.Context, sessionID string) error {
	_, _, err := e.step(ctx, sessionID, runtime.Acknowledge{})
	if err != nil {
		return err
	}
	return e.discard(ctx, sessionID)
}

// Close dismisses the dialog from any step and forgets the session.
func (e *Engine) Close(ctx context.Context, sessionID string) error {
	_, _, err := e.step(ctx, sessionID, runtime.Close{})
	if err != nil {
		return err
	}
	return e.discard(ctx, sessionID)
}

// SetStatus records the submission status pushed by the external pipeline.
func (e *Engine) SetStatus(ctx context.Context, sessionID string, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	var before *domain.Session
	after, err := e.sessions.Update(ctx, sessionID, func(s *domain.Session) (*domain.Session, error) {
		if s.Closed {
			return nil, domain.ErrSessionClosed
		}
		before = s
		return e.runtime.SetStatus(ctx, s, status), nil
	})
	if err != nil {
		return err
	}
	e.publish(ctx, before, after)
	return nil
}

// pending is a report accepted by the controller and not yet handed over.
type pending struct {
	report domain.Report
	prior  domain.Status
}

// step applies ev under the session lock. A validation failure returns the
// unchanged view with the inline message set, together with the error.
// An accepted report leaves the session waiting before the lock is released.
func (e *Engine) step(ctx context.Context, sessionID string, ev runtime.Event) (domain.View, *pending, error) {
	var before *domain.Session
	var p *pending
	after, err := e.sessions.Update(ctx, sessionID, func(s *domain.Session) (*domain.Session, error) {
		before = s
		next, r, err := e.runtime.Apply(ctx, s, ev)
		if err != nil || r == nil {
			return next, err
		}
		p = &pending{report: *r, prior: s.Status}
		return e.runtime.SetStatus(ctx, next, domain.StatusWaiting), nil
	})

	var verr *form.ValidationError
	if errors.As(err, &verr) && before != nil {
		view, rerr := e.runtime.Render(before)
		if rerr != nil {
			return domain.View{}, nil, rerr
		}
		view.Errors = map[string]domain.MessageRef{verr.Field: verr.Message}
		return view, nil, err
	}
	if err != nil {
		return domain.View{}, nil, err
	}

	e.publish(ctx, before, after)
	if after.Closed {
		return domain.View{}, nil, nil
	}
	view, err := e.runtime.Render(after)
	return view, p, err
}

// release undoes the waiting mark of a submission whose callback failed,
// unless the submitter already pushed a status of its own.
func (e *Engine) release(ctx context.Context, sessionID string, prior domain.Status) error {
	var before *domain.Session
	after, err := e.sessions.Update(ctx, sessionID, func(s *domain.Session) (*domain.Session, error) {
		if s.Closed || s.Status != domain.StatusWaiting {
			return nil, nil
		}
		before = s
		return e.runtime.SetStatus(ctx, s, prior), nil
	})
	if err != nil || before == nil {
		return err
	}
	e.publish(ctx, before, after)
	return nil
}

func (e *Engine) discard(ctx context.Context, sessionID string) error {
	if err := e.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete closed session: %w", err)
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, before, after *domain.Session) {
	diff := domain.Diff(before, after)
	if diff == nil {
		return
	}
	e.mu.RLock()
	observers := append([]ChangeFunc(nil), e.observers...)
	e.mu.RUnlock()
	for _, fn := range observers {
		fn(ctx, diff)
	}
}
