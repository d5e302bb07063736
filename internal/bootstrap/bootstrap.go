package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sgpropdata/docpipe/internal/config"
	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
	"github.com/sgpropdata/docpipe/internal/core/usecase"
	"github.com/sgpropdata/docpipe/internal/infrastructure/chunking"
	"github.com/sgpropdata/docpipe/internal/infrastructure/llm/ollama"
	"github.com/sgpropdata/docpipe/internal/infrastructure/parser/pdfparse"
	"github.com/sgpropdata/docpipe/internal/infrastructure/queue/nats"
	"github.com/sgpropdata/docpipe/internal/infrastructure/report/excel"
	"github.com/sgpropdata/docpipe/internal/infrastructure/repository/postgres"
	"github.com/sgpropdata/docpipe/internal/infrastructure/resilience"
	"github.com/sgpropdata/docpipe/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue    ports.MessageQueue
	Records  ports.RecordStore
	Pipeline ports.PipelineRunner
	Search   ports.SearchService
	Admin    ports.SinkAdmin
	Reports  ports.ReportExporter

	// DocTypes maps source filenames to document types: the built-in
	// defaults overlaid with entries from DOC_TYPES_FILE.
	DocTypes map[string]domain.DocumentType

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	records := postgres.NewRecordStore(db)
	if err := records.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), log)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, log, nats.Options{
		Executor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	llmClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.LLMRateRPS)
	vectors := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.QdrantVectorSize)

	chunker, err := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("init chunker: %w", err)
	}

	parser := pdfparse.NewParser(log)
	extractor := usecase.NewExtractor(llmClient, log)

	pipeline := usecase.NewPipeline(
		parser,
		extractor,
		records,
		chunker,
		llmClient,
		vectors,
		usecase.PipelineOptions{
			ParseRetries:    cfg.ParseRetries,
			ParseRetryDelay: time.Duration(cfg.ParseRetryDelaySeconds) * time.Second,
		},
		log,
	)

	search := usecase.NewSearchUseCase(llmClient, vectors, cfg.QdrantCollection, log)
	admin := usecase.NewAdminUseCase(records, vectors, log)
	reports := usecase.NewReportUseCase(records, excel.NewWriter(), cfg.ReportRowLimit, log)

	docTypes, err := loadDocTypes(cfg.DocTypesFile)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Queue:    queue,
		Records:  records,
		Pipeline: pipeline,
		Search:   search,
		Admin:    admin,
		Reports:  reports,
		DocTypes: docTypes,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// loadDocTypes overlays the optional YAML mapping on the built-in defaults.
func loadDocTypes(path string) (map[string]domain.DocumentType, error) {
	types := domain.DefaultDocumentTypes()

	extra, err := config.LoadDocumentTypes(path)
	if err != nil {
		return nil, fmt.Errorf("load document types: %w", err)
	}
	for filename, label := range extra {
		types[filename] = domain.ClassifyDocumentType(label)
	}
	return types, nil
}
