package ports

import (
	"context"

	"github.com/aretw0/reportflow/pkg/domain"
)

// StatusFunc pushes a submission status back into the session that
// produced the report. It plays the part of the externally tracked
// waiting/error/confirmed flags.
type StatusFunc func(ctx context.Context, status domain.Status) error

// Submitter is the injected submit callback.
// The engine marks the session waiting before Submit is called.
// Implementations own all I/O and report confirmed or error through notify.
// A returned error only clears the waiting mark.
type Submitter interface {
	Submit(ctx context.Context, report domain.Report, notify StatusFunc) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, report domain.Report, notify StatusFunc) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, report domain.Report, notify StatusFunc) error {
	return f(ctx, report, notify)
}

// CatalogLoader produces a report-reason table from an external source.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (*domain.Catalog, error)
}
