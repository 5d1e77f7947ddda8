package submission

import (
	"context"
	"log/slog"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/ports"
)

// LogSubmitter records reports in the log instead of sending them, then
// confirms them. It backs the CLI when no backend URL is configured.
type LogSubmitter struct {
	logger *slog.Logger
}

func NewLogSubmitter(logger *slog.Logger) *LogSubmitter {
	return &LogSubmitter{logger: logger}
}

func (s *LogSubmitter) Submit(ctx context.Context, report domain.Report, notify ports.StatusFunc) error {
	s.logger.InfoContext(ctx, "report submitted (dry run)",
		"report_category", report.ReportCategory,
		"notes_length", len([]rune(report.Notes)),
	)
	if notify == nil {
		return nil
	}
	return notify(ctx, domain.StatusConfirmed)
}
