package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
	"github.com/sgpropdata/docpipe/internal/observability/metrics"
)

const serviceName = "api"

// Router exposes the pipeline over HTTP. Directory runs are synchronous;
// single documents can also be queued for the worker.
type Router struct {
	pipeline ports.PipelineRunner
	search   ports.SearchService
	admin    ports.SinkAdmin
	reports  ports.ReportExporter
	records  ports.RecordStore
	queue    ports.MessageQueue
	metrics  *metrics.HTTPServerMetrics
	log      *slog.Logger

	defaultPDFDir     string
	defaultReportPath string
	defaultTypes      map[string]domain.DocumentType
}

type RouterDeps struct {
	Pipeline ports.PipelineRunner
	Search   ports.SearchService
	Admin    ports.SinkAdmin
	Reports  ports.ReportExporter
	Records  ports.RecordStore
	Queue    ports.MessageQueue
	Metrics  *metrics.HTTPServerMetrics
	Log      *slog.Logger

	DefaultPDFDir     string
	DefaultReportPath string
	DefaultTypes      map[string]domain.DocumentType
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		pipeline:          deps.Pipeline,
		search:            deps.Search,
		admin:             deps.Admin,
		reports:           deps.Reports,
		records:           deps.Records,
		queue:             deps.Queue,
		metrics:           deps.Metrics,
		log:               deps.Log,
		defaultPDFDir:     deps.DefaultPDFDir,
		defaultReportPath: deps.DefaultReportPath,
		defaultTypes:      deps.DefaultTypes,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/runs", rt.runDirectory)
	mux.HandleFunc("/v1/documents", rt.enqueueDocument)
	mux.HandleFunc("/v1/search", rt.semanticSearch)
	mux.HandleFunc("/v1/records/", rt.listRecords)
	mux.HandleFunc("/v1/stats", rt.stats)
	mux.HandleFunc("/v1/data", rt.clearData)
	mux.HandleFunc("/v1/reports", rt.exportReport)
	mux.Handle("/metrics", rt.metrics.Handler())

	return rt.metrics.Middleware(serviceName, loggingMiddleware(rt.log, mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// runDirectory processes every PDF in a directory synchronously and returns
// the per-document results. Free-text type labels are classified here, once.
func (rt *Router) runDirectory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Directory     string            `json:"directory"`
		DocumentTypes map[string]string `json:"document_types"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	dir := req.Directory
	if dir == "" {
		dir = rt.defaultPDFDir
	}

	types := rt.defaultTypes
	if len(req.DocumentTypes) > 0 {
		types = make(map[string]domain.DocumentType, len(req.DocumentTypes))
		for filename, label := range req.DocumentTypes {
			types[filename] = domain.ClassifyDocumentType(label)
		}
	}

	summary, err := rt.pipeline.ProcessDirectory(r.Context(), dir, types)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// enqueueDocument publishes one document job for asynchronous processing.
func (rt *Router) enqueueDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Path         string `json:"path"`
		DocumentType string `json:"document_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	job := domain.DocumentJob{
		Path:         req.Path,
		DocumentType: domain.ClassifyDocumentType(req.DocumentType),
	}
	if err := rt.queue.PublishDocumentJob(r.Context(), job); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) semanticSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Query        string `json:"query"`
		Limit        int    `json:"limit"`
		DocumentName string `json:"document_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	results, err := rt.search.Search(r.Context(), req.Query, req.Limit, domain.ChunkFilter{
		DocumentName: req.DocumentName,
	})
	rt.metrics.RecordSearch(serviceName, len(results), err)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (rt *Router) listRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	table := strings.TrimPrefix(r.URL.Path, "/v1/records/")
	switch table {
	case "tasks":
		tasks, err := rt.records.ListScheduleTasks(r.Context(), limit)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": emptyIfNil(tasks)})
	case "cost-items":
		items, err := rt.records.ListCostItems(r.Context(), limit)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cost_items": emptyIfNil(items)})
	case "rules":
		rules, err := rt.records.ListRegulatoryRules(r.Context(), limit)
		if err != nil {
			writeError(w, mapErrorToHTTPStatus(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rules": emptyIfNil(rules)})
	default:
		writeError(w, http.StatusNotFound, "unknown record table: "+table)
	}
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := rt.search.Stats(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) clearData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	counts, err := rt.admin.ClearAll(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (rt *Router) exportReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Path string `json:"path"`
	}
	if r.Body != nil {
		// Body is optional; an empty or absent body uses the default path.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Path == "" {
		req.Path = rt.defaultReportPath
	}

	path, err := rt.reports.Export(r.Context(), req.Path)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
