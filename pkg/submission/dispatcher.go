package submission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/ports"
)

// Dispatcher turns a blocking ports.Submitter into the asynchronous
// waiting/confirmed/error pipeline. It is itself a ports.Submitter.
type Dispatcher struct {
	backend ports.Submitter
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each background delivery. Zero means no bound.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(p *Dispatcher) {
		p.timeout = d
	}
}

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(p *Dispatcher) {
		p.logger = logger
	}
}

func NewDispatcher(backend ports.Submitter, opts ...DispatcherOption) *Dispatcher {
	p := &Dispatcher{
		backend: backend,
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit reports waiting, then hands the report to the backend in a new
// goroutine and returns. Waiting is a no-op for sessions the engine already
// marked, and fails for sessions that are gone. The goroutine outlives ctx
// cancellation so a closed request does not abort a delivery under way.
func (p *Dispatcher) Submit(ctx context.Context, report domain.Report, notify ports.StatusFunc) error {
	if notify == nil {
		notify = func(context.Context, domain.Status) error { return nil }
	}
	if err := notify(ctx, domain.StatusWaiting); err != nil {
		return fmt.Errorf("mark waiting: %w", err)
	}

	bg := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.deliver(bg, report, notify)
	}()
	return nil
}

func (p *Dispatcher) deliver(ctx context.Context, report domain.Report, notify ports.StatusFunc) {
	sendCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	status := domain.StatusConfirmed
	if err := p.backend.Submit(sendCtx, report, nil); err != nil {
		status = domain.StatusError
		p.logger.Warn("report delivery failed", "report_category", report.ReportCategory, "err", err)
	} else {
		p.logger.Debug("report delivered", "report_category", report.ReportCategory)
	}

	if err := notify(ctx, status); err != nil {
		p.logger.Warn("failed to record submission status", "status", status, "err", err)
	}
}

// Wait blocks until every delivery started so far has reported back.
func (p *Dispatcher) Wait() {
	p.wg.Wait()
}
