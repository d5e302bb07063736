package usecase

import (
	"context"
	"log/slog"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
)

// AdminUseCase wipes both sinks. Intended for re-runs over the same corpus.
type AdminUseCase struct {
	records ports.RecordStore
	vectors ports.VectorStore
	log     *slog.Logger
}

func NewAdminUseCase(records ports.RecordStore, vectors ports.VectorStore, log *slog.Logger) *AdminUseCase {
	return &AdminUseCase{records: records, vectors: vectors, log: log}
}

// ClearAll truncates every record table and resets the vector collection.
// The chunk count is read before the reset so the caller sees what was lost.
func (a *AdminUseCase) ClearAll(ctx context.Context) (domain.ClearCounts, error) {
	counts, err := a.records.ClearAll(ctx)
	if err != nil {
		return domain.ClearCounts{}, domain.WrapError(domain.ErrTemporary, "clear record store", err)
	}

	chunks, err := a.vectors.Count(ctx)
	if err != nil {
		return counts, domain.WrapError(domain.ErrTemporary, "count collection before reset", err)
	}
	if err := a.vectors.Reset(ctx); err != nil {
		return counts, domain.WrapError(domain.ErrTemporary, "reset collection", err)
	}
	counts.ChunksDeleted = chunks

	a.log.Info("cleared all sinks",
		"tasks", counts.TasksDeleted,
		"cost_items", counts.CostItemsDeleted,
		"rules", counts.RulesDeleted,
		"chunks", counts.ChunksDeleted,
	)
	return counts, nil
}
