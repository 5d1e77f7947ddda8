package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
)

// Engine is the step controller bound to a catalog.
// It applies events to sessions and fires lifecycle hooks; it does not
// persist sessions nor submit reports.
type Engine struct {
	catalog *domain.Catalog
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a controller over the given catalog.
func NewEngine(catalog *domain.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the table the engine runs on.
func (e *Engine) Catalog() *domain.Catalog {
	return e.catalog
}

// Start opens a new session at the category step.
func (e *Engine) Start(ctx context.Context, sessionID, reportType string) *domain.Session {
	s := domain.NewSession(sessionID, reportType)
	e.logger.Debug("session started", "session_id", sessionID, "type", s.Type)
	e.enter(ctx, s)
	return s
}

// Render builds the view of the session.
func (e *Engine) Render(s *domain.Session) (domain.View, error) {
	return Render(e.catalog, s)
}

// Apply runs ev against a copy of s and returns the updated session.
// On error the returned session is nil and s is untouched.
func (e *Engine) Apply(ctx context.Context, s *domain.Session, ev Event) (*domain.Session, *domain.Report, error) {
	if s.Closed {
		return nil, nil, domain.ErrSessionClosed
	}

	out, err := Transition(e.catalog, s.Flow, s.Status, ev)
	if err != nil {
		if errors.Is(err, form.ErrValidation) {
			e.logger.Debug("field rejected", "session_id", s.ID, "err", err)
		} else {
			e.logger.Warn("transition rejected", "session_id", s.ID, "step", s.Flow.Step, "err", err)
		}
		return nil, nil, err
	}

	next := s.Snapshot()
	next.Flow = out.State
	next.Touch()

	if out.Close {
		next.Closed = true
		e.logger.Debug("session closed", "session_id", s.ID, "step", EffectiveStep(s.Flow, s.Status))
		if e.hooks.OnClose != nil {
			e.hooks.OnClose(ctx, &domain.CloseEvent{
				EventBase: e.base(domain.EventClose, s.ID),
				Step:      EffectiveStep(s.Flow, s.Status),
			})
		}
		return next, nil, nil
	}

	if next.Flow.Step != s.Flow.Step {
		e.logger.Debug("step changed", "session_id", s.ID, "from", s.Flow.Step, "to", next.Flow.Step)
		e.enter(ctx, next)
	}
	return next, out.Submit, nil
}

// SetStatus records an externally pushed submission status.
func (e *Engine) SetStatus(ctx context.Context, s *domain.Session, status domain.Status) *domain.Session {
	next := s.Snapshot()
	if s.Status == status {
		return next
	}
	next.Status = status
	next.Touch()

	e.logger.Debug("status changed", "session_id", s.ID, "from", s.Status, "to", status)
	if e.hooks.OnStatusChange != nil {
		e.hooks.OnStatusChange(ctx, &domain.StatusEvent{
			EventBase: e.base(domain.EventStatusChange, s.ID),
			From:      s.Status,
			To:        status,
		})
	}
	if EffectiveStep(s.Flow, s.Status) != EffectiveStep(next.Flow, next.Status) {
		e.enter(ctx, next)
	}
	return next
}

// NotifySubmit fires the submit hook. The facade calls it once the
// submit callback returned.
func (e *Engine) NotifySubmit(ctx context.Context, sessionID string, report domain.Report, err error) {
	if e.hooks.OnSubmit != nil {
		e.hooks.OnSubmit(ctx, &domain.SubmitEvent{
			EventBase: e.base(domain.EventSubmit, sessionID),
			Report:    report,
			Err:       err,
		})
	}
}

func (e *Engine) enter(ctx context.Context, s *domain.Session) {
	evt := &domain.StepEvent{
		EventBase:        e.base(domain.EventStepEnter, s.ID),
		Step:             EffectiveStep(s.Flow, s.Status),
		CategoryValue:    s.Flow.CategoryValue,
		SubcategoryValue: s.Flow.SubcategoryValue,
	}
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, evt)
	}
	if evt.Step == domain.StepTextInput && IsDeadEnd(e.catalog, s.Flow) && e.hooks.OnDeadEnd != nil {
		dead := *evt
		dead.Type = domain.EventDeadEnd
		e.hooks.OnDeadEnd(ctx, &dead)
	}
}

func (e *Engine) base(t domain.EventType, sessionID string) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: sessionID,
	}
}
