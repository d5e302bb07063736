package ports

import (
	"context"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

// PipelineRunner is the inbound contract for document processing.
// ProcessDocument never returns an error: every outcome, including parse
// failure, is folded into the result.
type PipelineRunner interface {
	ProcessDocument(ctx context.Context, path string, docType domain.DocumentType) domain.DocumentResult
	ProcessDirectory(ctx context.Context, dir string, types map[string]domain.DocumentType) (domain.RunSummary, error)
}

// SearchService is the inbound contract for semantic search.
type SearchService interface {
	Search(ctx context.Context, query string, limit int, filter domain.ChunkFilter) ([]domain.SearchResult, error)
	Stats(ctx context.Context) (domain.CollectionStats, error)
}

// SinkAdmin wipes both sinks.
type SinkAdmin interface {
	ClearAll(ctx context.Context) (domain.ClearCounts, error)
}

// ReportExporter writes a workbook of stored records and returns its path.
type ReportExporter interface {
	Export(ctx context.Context, path string) (string, error)
}
