package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
)

// PipelineOptions tune the per-document flow. Only the parse stage retries;
// every other stage succeeds, degrades, or fails the document once.
type PipelineOptions struct {
	ParseRetries    int
	ParseRetryDelay time.Duration
}

func (o PipelineOptions) normalize() PipelineOptions {
	if o.ParseRetries < 0 {
		o.ParseRetries = 0
	}
	if o.ParseRetryDelay <= 0 {
		o.ParseRetryDelay = 5 * time.Second
	}
	return o
}

// Pipeline runs the per-document sequence
// parse -> extract -> load records -> chunk -> load vectors
// and the directory-level driver over a flat set of PDFs. All collaborators
// are injected; the pipeline owns no global state.
type Pipeline struct {
	parser    ports.DocumentParser
	extractor *Extractor
	records   ports.RecordStore
	chunker   ports.Chunker
	embedder  ports.Embedder
	vectors   ports.VectorStore
	opts      PipelineOptions
	log       *slog.Logger
}

func NewPipeline(
	parser ports.DocumentParser,
	extractor *Extractor,
	records ports.RecordStore,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectors ports.VectorStore,
	opts PipelineOptions,
	log *slog.Logger,
) *Pipeline {
	return &Pipeline{
		parser:    parser,
		extractor: extractor,
		records:   records,
		chunker:   chunker,
		embedder:  embedder,
		vectors:   vectors,
		opts:      opts.normalize(),
		log:       log,
	}
}

// ProcessDocument runs the full flow for one document. It never returns an
// error: parse failure (after retries) produces a failed result; extraction,
// record-store and vector-store failures degrade to zero counts. Success
// means parse and extract completed.
func (p *Pipeline) ProcessDocument(ctx context.Context, path string, docType domain.DocumentType) (result domain.DocumentResult) {
	name := filepath.Base(path)
	result = domain.DocumentResult{Path: path, DocumentName: name, DocumentType: docType}

	// A misbehaving collaborator must not take down the directory loop.
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("document processing panicked", "document", name, "panic", r)
			result.Success = false
			result.Error = fmt.Sprintf("panic while processing %s: %v", name, r)
		}
	}()

	p.log.Info("processing document", "document", name, "document_type", docType)

	parsed, err := p.parseWithRetry(ctx, path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	extraction := p.extractor.Extract(ctx, parsed.FullText, docType)
	result.ExtractionErrors = extraction.Errors
	if !extraction.Success {
		p.log.Warn("extraction had validation errors", "document", name, "errors", len(extraction.Errors))
	}

	if extraction.Records.Count() > 0 {
		result.RecordCount = p.loadRecords(ctx, extraction.Records)
	}

	if parsed.FullText != "" {
		result.ChunkCount = p.loadChunks(ctx, name, parsed.FullText)
	}

	result.Success = true
	p.log.Info("document processed",
		"document", name,
		"records", result.RecordCount,
		"chunks", result.ChunkCount,
	)
	return result
}

// ProcessDirectory is the top-level entry point: it processes every PDF in
// dir, fully isolating documents from each other. When types is nil the
// built-in filename mapping applies; unmapped files run as TypeGeneral.
func (p *Pipeline) ProcessDirectory(ctx context.Context, dir string, types map[string]domain.DocumentType) (domain.RunSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.RunSummary{}, domain.WrapError(domain.ErrInvalidInput, "read document directory", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if types == nil {
		types = domain.DefaultDocumentTypes()
	}

	summary := domain.RunSummary{Results: make([]domain.DocumentResult, 0, len(paths))}
	for _, path := range paths {
		docType, ok := types[filepath.Base(path)]
		if !ok {
			docType = domain.TypeGeneral
		}
		res := p.ProcessDocument(ctx, path, docType)
		if res.Success {
			summary.Successful++
		}
		summary.Results = append(summary.Results, res)
	}

	p.log.Info("directory run complete", "documents", len(summary.Results), "successful", summary.Successful)
	return summary, nil
}

// parseWithRetry calls the partitioning collaborator with a bounded,
// fixed-delay retry. A non-success parse result counts as a failed attempt.
func (p *Pipeline) parseWithRetry(ctx context.Context, path string) (domain.ParseResult, error) {
	attempts := p.opts.ParseRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ParseResult{}, err
		}

		parsed, err := p.parser.Parse(ctx, path)
		if err == nil && parsed.Success {
			return parsed, nil
		}
		if err == nil {
			err = fmt.Errorf("parse document %s: %s", filepath.Base(path), parsed.Error)
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		p.log.Warn("parse attempt failed, retrying",
			"document", filepath.Base(path),
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)

		timer := time.NewTimer(p.opts.ParseRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.ParseResult{}, lastErr
		case <-timer.C:
		}
	}
	return domain.ParseResult{}, lastErr
}

// loadRecords writes validated records through the batched (transactional)
// path, falling back to the direct per-row path on failure. Total failure
// degrades to a zero count; it never aborts the document.
func (p *Pipeline) loadRecords(ctx context.Context, records domain.ExtractedRecords) int {
	written, err := p.writeBatch(ctx, records)
	if err == nil {
		return written
	}
	p.log.Error("batched record load failed, falling back to direct insert", "error", err)

	written, err = p.writeDirect(ctx, records)
	if err != nil {
		p.log.Error("direct record load failed", "written", written, "error", err)
	}
	return written
}

func (p *Pipeline) writeBatch(ctx context.Context, records domain.ExtractedRecords) (int, error) {
	total := 0
	if len(records.Tasks) > 0 {
		n, err := p.records.UpsertScheduleTasks(ctx, records.Tasks)
		if err != nil {
			return total, err
		}
		total += n
	}
	if len(records.CostItems) > 0 {
		n, err := p.records.InsertCostItems(ctx, records.CostItems)
		if err != nil {
			return total, err
		}
		total += n
	}
	if len(records.Rules) > 0 {
		n, err := p.records.UpsertRegulatoryRules(ctx, records.Rules)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *Pipeline) writeDirect(ctx context.Context, records domain.ExtractedRecords) (int, error) {
	total := 0
	if len(records.Tasks) > 0 {
		n, err := p.records.UpsertScheduleTasksDirect(ctx, records.Tasks)
		total += n
		if err != nil {
			return total, err
		}
	}
	if len(records.CostItems) > 0 {
		n, err := p.records.InsertCostItemsDirect(ctx, records.CostItems)
		total += n
		if err != nil {
			return total, err
		}
	}
	if len(records.Rules) > 0 {
		n, err := p.records.UpsertRegulatoryRulesDirect(ctx, records.Rules)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// loadChunks chunks the text, embeds every chunk in order, and upserts the
// vectors. Any failure here degrades to a zero chunk count: the vector sink
// is hardened the same way the record sink is.
func (p *Pipeline) loadChunks(ctx context.Context, documentName, text string) int {
	chunks := p.chunker.Chunk(documentName, text)
	if len(chunks) == 0 {
		return 0
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ChunkText
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		p.log.Error("embedding chunks failed", "document", documentName, "error", err)
		return 0
	}
	if len(vectors) != len(chunks) {
		p.log.Error("embedding count mismatch",
			"document", documentName,
			"chunks", len(chunks),
			"vectors", len(vectors),
		)
		return 0
	}

	written, err := p.vectors.UpsertChunks(ctx, chunks, vectors)
	if err != nil {
		p.log.Error("vector store load failed", "document", documentName, "error", err)
		return 0
	}
	return written
}
