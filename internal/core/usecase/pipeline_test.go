package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

type fakeParser struct {
	failFor  map[string]int // path -> failing attempts remaining
	failAll  map[string]bool
	text     string
	attempts int
}

func (f *fakeParser) Parse(_ context.Context, path string) (domain.ParseResult, error) {
	f.attempts++
	if f.failAll[path] {
		return domain.ParseResult{}, errors.New("unreadable pdf")
	}
	if n := f.failFor[path]; n > 0 {
		f.failFor[path] = n - 1
		return domain.ParseResult{Success: false, Error: "transient parse failure"}, nil
	}
	text := f.text
	if text == "" {
		text = "parsed document text"
	}
	return domain.ParseResult{Success: true, FullText: text, TotalElements: 1, TextLength: len(text)}, nil
}

type stubRecordStore struct {
	batchErr  error
	directErr error
	batched   int
	direct    int
}

func (s *stubRecordStore) UpsertScheduleTasks(_ context.Context, tasks []domain.ScheduleTask) (int, error) {
	if s.batchErr != nil {
		return 0, s.batchErr
	}
	s.batched += len(tasks)
	return len(tasks), nil
}

func (s *stubRecordStore) InsertCostItems(_ context.Context, items []domain.CostItem) (int, error) {
	if s.batchErr != nil {
		return 0, s.batchErr
	}
	s.batched += len(items)
	return len(items), nil
}

func (s *stubRecordStore) UpsertRegulatoryRules(_ context.Context, rules []domain.RegulatoryRule) (int, error) {
	if s.batchErr != nil {
		return 0, s.batchErr
	}
	s.batched += len(rules)
	return len(rules), nil
}

func (s *stubRecordStore) UpsertScheduleTasksDirect(_ context.Context, tasks []domain.ScheduleTask) (int, error) {
	if s.directErr != nil {
		return 0, s.directErr
	}
	s.direct += len(tasks)
	return len(tasks), nil
}

func (s *stubRecordStore) InsertCostItemsDirect(_ context.Context, items []domain.CostItem) (int, error) {
	if s.directErr != nil {
		return 0, s.directErr
	}
	s.direct += len(items)
	return len(items), nil
}

func (s *stubRecordStore) UpsertRegulatoryRulesDirect(_ context.Context, rules []domain.RegulatoryRule) (int, error) {
	if s.directErr != nil {
		return 0, s.directErr
	}
	s.direct += len(rules)
	return len(rules), nil
}

func (s *stubRecordStore) ListScheduleTasks(context.Context, int) ([]domain.ScheduleTask, error) {
	return nil, nil
}

func (s *stubRecordStore) ListCostItems(context.Context, int) ([]domain.CostItem, error) {
	return nil, nil
}

func (s *stubRecordStore) ListRegulatoryRules(context.Context, int) ([]domain.RegulatoryRule, error) {
	return nil, nil
}

func (s *stubRecordStore) ClearAll(context.Context) (domain.ClearCounts, error) {
	return domain.ClearCounts{}, nil
}

type fakeChunker struct {
	panics bool
}

func (f *fakeChunker) Chunk(documentName, text string) []domain.DocumentChunk {
	if f.panics {
		panic("chunker blew up")
	}
	return []domain.DocumentChunk{
		{ChunkID: documentName + "_chunk_0", DocumentName: documentName, ChunkText: text, ChunkIndex: 0},
	}
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

type fakeVectors struct {
	err      error
	upserted int
}

func (f *fakeVectors) UpsertChunks(_ context.Context, chunks []domain.DocumentChunk, _ [][]float32) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.upserted += len(chunks)
	return len(chunks), nil
}

func (f *fakeVectors) Search(context.Context, []float32, int, domain.ChunkFilter) ([]domain.SearchResult, error) {
	return nil, nil
}

func (f *fakeVectors) Count(context.Context) (int, error) { return f.upserted, nil }

func (f *fakeVectors) Reset(context.Context) error { return nil }

const scheduleResponse = `[{"task_id": 1, "task_name": "Excavation", "duration_days": 14, "start_date": "2024-03-01", "finish_date": "2024-03-15"}]`

func newTestPipeline(parser *fakeParser, store *stubRecordStore, chunker *fakeChunker, embedder *fakeEmbedder, vectors *fakeVectors, llm *fakeLLM) *Pipeline {
	log := discardLogger()
	return NewPipeline(
		parser,
		NewExtractor(llm, log),
		store,
		chunker,
		embedder,
		vectors,
		PipelineOptions{ParseRetries: 2, ParseRetryDelay: time.Millisecond},
		log,
	)
}

func TestProcessDocumentHappyPath(t *testing.T) {
	parser := &fakeParser{}
	store := &stubRecordStore{}
	vectors := &fakeVectors{}
	p := newTestPipeline(parser, store, &fakeChunker{}, &fakeEmbedder{}, vectors, &fakeLLM{response: scheduleResponse})

	res := p.ProcessDocument(context.Background(), "/docs/schedule.pdf", domain.TypeSchedule)
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	if res.RecordCount != 1 {
		t.Fatalf("expected 1 record, got %d", res.RecordCount)
	}
	if res.ChunkCount != 1 {
		t.Fatalf("expected 1 chunk, got %d", res.ChunkCount)
	}
	if store.batched != 1 || store.direct != 0 {
		t.Fatalf("expected batched write only, batched=%d direct=%d", store.batched, store.direct)
	}
	if res.DocumentName != "schedule.pdf" {
		t.Fatalf("unexpected document name: %s", res.DocumentName)
	}
}

func TestProcessDocumentParseRetrySucceeds(t *testing.T) {
	parser := &fakeParser{failFor: map[string]int{"/docs/a.pdf": 2}}
	p := newTestPipeline(parser, &stubRecordStore{}, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{response: scheduleResponse})

	res := p.ProcessDocument(context.Background(), "/docs/a.pdf", domain.TypeSchedule)
	if !res.Success {
		t.Fatalf("expected success after retries: %+v", res)
	}
	if parser.attempts != 3 {
		t.Fatalf("expected 3 parse attempts, got %d", parser.attempts)
	}
}

func TestProcessDocumentParseExhaustion(t *testing.T) {
	parser := &fakeParser{failAll: map[string]bool{"/docs/a.pdf": true}}
	p := newTestPipeline(parser, &stubRecordStore{}, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{})

	res := p.ProcessDocument(context.Background(), "/docs/a.pdf", domain.TypeSchedule)
	if res.Success {
		t.Fatal("expected failure when every parse attempt fails")
	}
	if parser.attempts != 3 {
		t.Fatalf("expected 3 parse attempts, got %d", parser.attempts)
	}
	if res.Error == "" {
		t.Fatal("failed result must carry the error")
	}
	if res.RecordCount != 0 || res.ChunkCount != 0 {
		t.Fatalf("no loading after parse failure: %+v", res)
	}
}

func TestProcessDocumentBatchFallsBackToDirect(t *testing.T) {
	store := &stubRecordStore{batchErr: errors.New("tx aborted")}
	p := newTestPipeline(&fakeParser{}, store, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{response: scheduleResponse})

	res := p.ProcessDocument(context.Background(), "/docs/a.pdf", domain.TypeSchedule)
	if !res.Success {
		t.Fatalf("expected success: %+v", res)
	}
	if res.RecordCount != 1 || store.direct != 1 {
		t.Fatalf("expected direct fallback to write 1 row, got count=%d direct=%d", res.RecordCount, store.direct)
	}
}

func TestProcessDocumentBothLoadPathsFail(t *testing.T) {
	store := &stubRecordStore{batchErr: errors.New("tx aborted"), directErr: errors.New("down")}
	p := newTestPipeline(&fakeParser{}, store, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{response: scheduleResponse})

	res := p.ProcessDocument(context.Background(), "/docs/a.pdf", domain.TypeSchedule)
	if !res.Success {
		t.Fatal("record sink failure must not fail the document")
	}
	if res.RecordCount != 0 {
		t.Fatalf("expected 0 records written, got %d", res.RecordCount)
	}
}

func TestProcessDocumentVectorFailureDegrades(t *testing.T) {
	vectors := &fakeVectors{err: errors.New("collection unavailable")}
	p := newTestPipeline(&fakeParser{}, &stubRecordStore{}, &fakeChunker{}, &fakeEmbedder{}, vectors, &fakeLLM{response: scheduleResponse})

	res := p.ProcessDocument(context.Background(), "/docs/a.pdf", domain.TypeSchedule)
	if !res.Success {
		t.Fatal("vector sink failure must not fail the document")
	}
	if res.ChunkCount != 0 {
		t.Fatalf("expected 0 chunks, got %d", res.ChunkCount)
	}
	if res.RecordCount != 1 {
		t.Fatalf("record sink must be unaffected, got %d", res.RecordCount)
	}
}

func TestProcessDocumentPanicIsolated(t *testing.T) {
	p := newTestPipeline(&fakeParser{}, &stubRecordStore{}, &fakeChunker{panics: true}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{response: scheduleResponse})

	res := p.ProcessDocument(context.Background(), "/docs/a.pdf", domain.TypeSchedule)
	if res.Success {
		t.Fatal("a panic must produce a failed result")
	}
	if !strings.Contains(res.Error, "panic") {
		t.Fatalf("unexpected error: %s", res.Error)
	}
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	parser := &fakeParser{failAll: map[string]bool{filepath.Join(dir, "b.pdf"): true}}
	p := newTestPipeline(parser, &stubRecordStore{}, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{response: scheduleResponse})

	summary, err := p.ProcessDirectory(context.Background(), dir, map[string]domain.DocumentType{
		"a.pdf": domain.TypeSchedule,
		"b.pdf": domain.TypeSchedule,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Results) != 3 {
		t.Fatalf("expected 3 results (txt skipped), got %d", len(summary.Results))
	}
	if summary.Successful != 2 {
		t.Fatalf("expected 2 successful, got %d", summary.Successful)
	}
	for i, want := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if summary.Results[i].DocumentName != want {
			t.Fatalf("results not sorted: got %s at %d", summary.Results[i].DocumentName, i)
		}
	}
	// c.pdf has no mapping and runs as the general type.
	if summary.Results[2].DocumentType != domain.TypeGeneral {
		t.Fatalf("unmapped file must run as general, got %s", summary.Results[2].DocumentType)
	}
}

func TestProcessDirectoryMissing(t *testing.T) {
	p := newTestPipeline(&fakeParser{}, &stubRecordStore{}, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{})

	_, err := p.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestProcessDirectoryEmpty(t *testing.T) {
	p := newTestPipeline(&fakeParser{}, &stubRecordStore{}, &fakeChunker{}, &fakeEmbedder{}, &fakeVectors{}, &fakeLLM{})

	summary, err := p.ProcessDirectory(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Results) != 0 || summary.Successful != 0 {
		t.Fatalf("expected an empty summary, got %+v", summary)
	}
}
