package runner

import (
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the runner re-reads a view while a
// submission is in flight.
const DefaultPollInterval = 100 * time.Millisecond

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithHandler configures the IOHandler.
func WithHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithReportType selects the copy of the dialog ("project", "comment", "studio").
func WithReportType(reportType string) Option {
	return func(r *Runner) {
		r.ReportType = reportType
	}
}

// WithPollInterval overrides DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.PollInterval = d
		}
	}
}

// WithSignals makes Run close the session on SIGINT or SIGTERM.
func WithSignals(enabled bool) Option {
	return func(r *Runner) {
		r.Signals = enabled
	}
}
