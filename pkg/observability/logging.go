package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/reportflow/pkg/domain"
)

// LogHooks logs every lifecycle event at info level, or warn for failed
// submissions.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter",
				"session_id", e.SessionID,
				"step", e.Step,
				"category", e.CategoryValue,
			)
		},
		OnDeadEnd: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "dead_end",
				"session_id", e.SessionID,
				"category", e.CategoryValue,
				"subcategory", e.SubcategoryValue,
			)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "submit",
					"session_id", e.SessionID,
					"report_category", e.Report.ReportCategory,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "submit",
				"session_id", e.SessionID,
				"report_category", e.Report.ReportCategory,
			)
		},
		OnStatusChange: func(ctx context.Context, e *domain.StatusEvent) {
			logger.InfoContext(ctx, "status_change",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
			)
		},
		OnClose: func(ctx context.Context, e *domain.CloseEvent) {
			logger.InfoContext(ctx, "close", "session_id", e.SessionID, "step", e.Step)
		},
	}
}
