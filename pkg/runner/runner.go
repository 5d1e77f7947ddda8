package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/form"
	"github.com/aretw0/reportflow/pkg/ports"
)

// Runner walks one report session over an IOHandler.
type Runner struct {
	Handler      IOHandler
	Logger       *slog.Logger
	ReportType   string
	PollInterval time.Duration
	Signals      bool
}

// New creates a Runner reading Stdin and writing Stdout by default.
func New(opts ...Option) *Runner {
	r := &Runner{
		Logger:       logging.NewNop(),
		ReportType:   domain.DefaultReportType,
		PollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout, nil)
	}
	return r
}

// Run opens a session and drives it until it is acknowledged, closed, or
// the input ends. An ended or interrupted input closes the session.
func (r *Runner) Run(ctx context.Context, engine ports.FlowEngine) error {
	var signals *SignalManager
	if r.Signals {
		signals = NewSignalManager(ctx)
		defer signals.Stop()
		ctx = signals.Context()
	}

	s, view, err := engine.Open(ctx, r.ReportType)
	if err != nil {
		return err
	}
	id := s.ID
	r.Logger.Debug("session opened", "session_id", id, "type", s.Type)

	for {
		if err := r.Handler.Output(ctx, view); err != nil {
			return fmt.Errorf("output error: %w", err)
		}

		input, err := r.Handler.Input(ctx)
		if errors.Is(err, ErrInputTooLarge) || errors.Is(err, ErrInvalidUTF8) {
			_ = r.Handler.SystemOutput(ctx, err.Error())
			continue
		}
		if err != nil {
			if signals != nil {
				signals.CheckRace()
			}
			r.abandon(engine, id)
			if ctx.Err() != nil {
				r.Logger.Debug("runner interrupted", "session_id", id, "err", ctx.Err())
				return fmt.Errorf("interrupted: %w", ctx.Err())
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if input == "exit" || input == "quit" {
			return engine.Close(ctx, id)
		}

		next, done, err := r.advance(ctx, engine, id, view, input)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		view = next
	}
}

// advance feeds input to the step the view shows. done is true once the
// session has ended.
func (r *Runner) advance(ctx context.Context, engine ports.FlowEngine, id string, view domain.View, input string) (domain.View, bool, error) {
	var next domain.View
	var err error

	switch view.Panel {
	case domain.PanelSelect:
		if view.Step == domain.StepCategory {
			next, err = engine.SelectCategory(ctx, id, input)
		} else {
			next, err = engine.SelectSubcategory(ctx, id, input)
		}

	case domain.PanelForm:
		next, err = engine.SubmitNotes(ctx, id, input)
		if err != nil && !errors.Is(err, form.ErrValidation) && next.SessionID != "" {
			r.Logger.Warn("submit failed", "session_id", id, "err", err)
			_ = r.Handler.SystemOutput(ctx, err.Error())
			err = nil
		}
		if err == nil && next.Waiting {
			next, err = r.await(ctx, engine, id)
		}

	case domain.PanelDeadEnd, domain.PanelConfirmation:
		return view, true, engine.Acknowledge(ctx, id)

	default:
		return view, false, fmt.Errorf("unknown panel %q", view.Panel)
	}

	if errors.Is(err, form.ErrValidation) {
		return next, false, nil
	}
	if err != nil {
		return view, false, err
	}
	return next, false, nil
}

// await polls the view until the submission leaves the waiting status.
func (r *Runner) await(ctx context.Context, engine ports.FlowEngine, id string) (domain.View, error) {
	ticker := time.NewTicker(r.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return domain.View{}, ctx.Err()
		case <-ticker.C:
			view, err := engine.View(ctx, id)
			if err != nil {
				return view, err
			}
			if !view.Waiting {
				return view, nil
			}
		}
	}
}

func (r *Runner) abandon(engine ports.FlowEngine, id string) {
	if err := engine.Close(context.Background(), id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		r.Logger.Warn("failed to close session", "session_id", id, "err", err)
	}
}
