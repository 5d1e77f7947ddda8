package runner

import (
	"context"

	"github.com/aretw0/reportflow/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the current step.
	Output(ctx context.Context, view domain.View) error

	// Input reads one response. It returns io.EOF when the stream ends and
	// ctx.Err() when ctx is cancelled first.
	Input(ctx context.Context) (string, error)

	// SystemOutput reports a message that is not part of the view.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written out.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
