package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics covers the worker side: documents moving through the
// parse/extract/load stages and rows landing in each sink.
type PipelineMetrics struct {
	registry *prometheus.Registry

	documentsTotal  *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	recordsWritten  *prometheus.CounterVec
	chunksIndexed   *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipe",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docpipe",
			Subsystem: "pipeline",
			Name:      "document_duration_seconds",
			Help:      "Per-document processing duration in seconds by status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docpipe",
			Subsystem: "pipeline",
			Name:      "documents_in_flight",
			Help:      "Number of documents currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	recordsWritten := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipe",
			Subsystem: "pipeline",
			Name:      "records_written_total",
			Help:      "Validated records written to the relational sink.",
		},
		[]string{"service", "document_type"},
	)
	chunksIndexed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docpipe",
			Subsystem: "pipeline",
			Name:      "chunks_indexed_total",
			Help:      "Chunks written to the vector sink.",
		},
		[]string{"service"},
	)

	registry.MustRegister(documentsTotal, processDuration, processInFlight, recordsWritten, chunksIndexed)

	return &PipelineMetrics{
		registry:        registry,
		documentsTotal:  documentsTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		recordsWritten:  recordsWritten,
		chunksIndexed:   chunksIndexed,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *PipelineMetrics) FinishDocument(service string, duration time.Duration, success bool) {
	m.processInFlight.Dec()

	status := "success"
	if !success {
		status = "error"
	}
	m.documentsTotal.WithLabelValues(service, status).Inc()
	m.processDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) AddRecordsWritten(service, documentType string, n int) {
	if n <= 0 {
		return
	}
	m.recordsWritten.WithLabelValues(service, documentType).Add(float64(n))
}

func (m *PipelineMetrics) AddChunksIndexed(service string, n int) {
	if n <= 0 {
		return
	}
	m.chunksIndexed.WithLabelValues(service).Add(float64(n))
}
