package domain

// ParseResult is the output of the document-partitioning collaborator.
// A failed parse carries Success=false and the reason in Error.
type ParseResult struct {
	Success       bool   `json:"success"`
	FullText      string `json:"full_text"`
	TotalElements int    `json:"total_elements"`
	TextLength    int    `json:"text_length"`
	Error         string `json:"error,omitempty"`
}

// ExtractedRecords holds validated records by kind. A single document
// populates at most one slice.
type ExtractedRecords struct {
	Tasks     []ScheduleTask   `json:"tasks,omitempty"`
	CostItems []CostItem       `json:"cost_items,omitempty"`
	Rules     []RegulatoryRule `json:"rules,omitempty"`
}

func (e ExtractedRecords) Count() int {
	return len(e.Tasks) + len(e.CostItems) + len(e.Rules)
}

// ExtractionResult is the always-returned outcome of one extraction call.
// Success reflects validation errors only: an LLM failure that yielded zero
// candidates is recorded in Errors but still counts as success.
type ExtractionResult struct {
	Records ExtractedRecords `json:"extracted_data"`
	Errors  []string         `json:"errors,omitempty"`
	Success bool             `json:"success"`
}

// DocumentResult is the per-document outcome of a pipeline run. Success means
// parse and extract completed; zero record or chunk counts are valid outcomes.
type DocumentResult struct {
	Path             string       `json:"path"`
	DocumentName     string       `json:"document_name"`
	DocumentType     DocumentType `json:"document_type"`
	Success          bool         `json:"success"`
	Error            string       `json:"error,omitempty"`
	RecordCount      int          `json:"record_count"`
	ChunkCount       int          `json:"chunk_count"`
	ExtractionErrors []string     `json:"extraction_errors,omitempty"`
}

// RunSummary aggregates a directory run: one result per document.
type RunSummary struct {
	Results    []DocumentResult `json:"results"`
	Successful int              `json:"successful"`
}

// ClearCounts reports what a full-sink wipe deleted.
type ClearCounts struct {
	TasksDeleted     int `json:"tasks_deleted"`
	CostItemsDeleted int `json:"cost_items_deleted"`
	RulesDeleted     int `json:"rules_deleted"`
	ChunksDeleted    int `json:"chunks_deleted"`
}

// DocumentJob is the queue payload handed from the API to the worker.
type DocumentJob struct {
	Path         string       `json:"path"`
	DocumentType DocumentType `json:"document_type"`
}
