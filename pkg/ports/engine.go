package ports

import (
	"context"

	"github.com/aretw0/reportflow/pkg/domain"
)

// FlowEngine is the session-level API the hosts drive.
// Every method returning a View returns the view of the session after the
// call; on a field validation error the view carries the inline message.
type FlowEngine interface {
	Open(ctx context.Context, reportType string) (*domain.Session, domain.View, error)
	View(ctx context.Context, sessionID string) (domain.View, error)
	SelectCategory(ctx context.Context, sessionID, value string) (domain.View, error)
	SelectSubcategory(ctx context.Context, sessionID, value string) (domain.View, error)
	SubmitNotes(ctx context.Context, sessionID, notes string) (domain.View, error)
	Acknowledge(ctx context.Context, sessionID string) error
	Close(ctx context.Context, sessionID string) error
	SetStatus(ctx context.Context, sessionID string, status domain.Status) error
	Catalog() *domain.Catalog
}
