package ports

import (
	"context"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

// DocumentParser is the document-partitioning collaborator: path in, plain
// text plus structural counts out. A non-success result is a parse failure,
// not an error; errors are reserved for infrastructure faults.
type DocumentParser interface {
	Parse(ctx context.Context, path string) (domain.ParseResult, error)
}

// TextGenerator is the LLM collaborator.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Embedder builds vectors for chunk texts and queries, order-preserving.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Chunker splits document text into overlapping windows.
type Chunker interface {
	Chunk(documentName, text string) []domain.DocumentChunk
}

// RecordStore persists validated records in the relational sink.
//
// The Upsert*/Insert* methods write the whole batch in one transaction and
// roll back on any row failure. The *Direct variants are the per-row fallback
// path: no surrounding transaction, rows written before a failure stay
// written, and the count of written rows is returned alongside the error.
type RecordStore interface {
	UpsertScheduleTasks(ctx context.Context, tasks []domain.ScheduleTask) (int, error)
	InsertCostItems(ctx context.Context, items []domain.CostItem) (int, error)
	UpsertRegulatoryRules(ctx context.Context, rules []domain.RegulatoryRule) (int, error)

	UpsertScheduleTasksDirect(ctx context.Context, tasks []domain.ScheduleTask) (int, error)
	InsertCostItemsDirect(ctx context.Context, items []domain.CostItem) (int, error)
	UpsertRegulatoryRulesDirect(ctx context.Context, rules []domain.RegulatoryRule) (int, error)

	ListScheduleTasks(ctx context.Context, limit int) ([]domain.ScheduleTask, error)
	ListCostItems(ctx context.Context, limit int) ([]domain.CostItem, error)
	ListRegulatoryRules(ctx context.Context, limit int) ([]domain.RegulatoryRule, error)

	ClearAll(ctx context.Context) (domain.ClearCounts, error)
}

// VectorStore indexes chunks and performs semantic search.
type VectorStore interface {
	UpsertChunks(ctx context.Context, chunks []domain.DocumentChunk, vectors [][]float32) (int, error)
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.ChunkFilter) ([]domain.SearchResult, error)
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// MessageQueue moves per-document jobs from the API to the worker.
type MessageQueue interface {
	PublishDocumentJob(ctx context.Context, job domain.DocumentJob) error
	SubscribeDocumentJobs(ctx context.Context, handler func(context.Context, domain.DocumentJob) error) error
}

// ReportWriter renders record-store contents into a workbook on disk.
type ReportWriter interface {
	Write(path string, tasks []domain.ScheduleTask, items []domain.CostItem, rules []domain.RegulatoryRule) error
}
