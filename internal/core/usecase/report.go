package usecase

import (
	"context"
	"log/slog"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
)

// ReportUseCase exports the relational sink into a workbook.
type ReportUseCase struct {
	records  ports.RecordStore
	writer   ports.ReportWriter
	rowLimit int
	log      *slog.Logger
}

func NewReportUseCase(records ports.RecordStore, writer ports.ReportWriter, rowLimit int, log *slog.Logger) *ReportUseCase {
	if rowLimit <= 0 {
		rowLimit = 1000
	}
	return &ReportUseCase{records: records, writer: writer, rowLimit: rowLimit, log: log}
}

// Export reads up to rowLimit rows per table and writes the workbook to path.
func (r *ReportUseCase) Export(ctx context.Context, path string) (string, error) {
	tasks, err := r.records.ListScheduleTasks(ctx, r.rowLimit)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "list schedule tasks", err)
	}
	items, err := r.records.ListCostItems(ctx, r.rowLimit)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "list cost items", err)
	}
	rules, err := r.records.ListRegulatoryRules(ctx, r.rowLimit)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "list regulatory rules", err)
	}

	if err := r.writer.Write(path, tasks, items, rules); err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "write report", err)
	}

	r.log.Info("report exported", "path", path, "tasks", len(tasks), "cost_items", len(items), "rules", len(rules))
	return path, nil
}
