package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/sgpropdata/docpipe/internal/adapters/http"
	"github.com/sgpropdata/docpipe/internal/bootstrap"
	"github.com/sgpropdata/docpipe/internal/config"
	"github.com/sgpropdata/docpipe/internal/observability/logging"
	"github.com/sgpropdata/docpipe/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(httpadapter.RouterDeps{
		Pipeline:          app.Pipeline,
		Search:            app.Search,
		Admin:             app.Admin,
		Reports:           app.Reports,
		Records:           app.Records,
		Queue:             app.Queue,
		Metrics:           metrics.NewHTTPServerMetrics("api"),
		Log:               logger,
		DefaultPDFDir:     cfg.PDFDirectory,
		DefaultReportPath: cfg.ReportPath,
		DefaultTypes:      app.DocTypes,
	})

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router.Handler(),
		// Directory runs are synchronous and can take minutes with a
		// local model, so the write timeout is generous.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
