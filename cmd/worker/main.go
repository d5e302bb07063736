package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sgpropdata/docpipe/internal/bootstrap"
	"github.com/sgpropdata/docpipe/internal/config"
	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/observability/logging"
	"github.com/sgpropdata/docpipe/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	pipelineMetrics := metrics.NewPipelineMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: pipelineMetrics.Handler(),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentJobs(ctx, func(handlerCtx context.Context, job domain.DocumentJob) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 15*time.Minute)
		defer cancel()

		pipelineMetrics.StartDocument()
		start := time.Now()
		result := app.Pipeline.ProcessDocument(processCtx, job.Path, job.DocumentType)
		pipelineMetrics.FinishDocument("worker", time.Since(start), result.Success)
		pipelineMetrics.AddRecordsWritten("worker", string(result.DocumentType), result.RecordCount)
		pipelineMetrics.AddChunksIndexed("worker", result.ChunkCount)

		if !result.Success {
			logger.Error("document processing failed", "path", job.Path, "error", result.Error)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
