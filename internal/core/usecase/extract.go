package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sgpropdata/docpipe/internal/core/domain"
	"github.com/sgpropdata/docpipe/internal/core/ports"
)

// Extractor turns raw document text into validated records via the LLM.
// Extract never fails: every failure mode degrades to a structured result.
type Extractor struct {
	llm ports.TextGenerator
	log *slog.Logger
}

func NewExtractor(llm ports.TextGenerator, log *slog.Logger) *Extractor {
	return &Extractor{llm: llm, log: log}
}

// Extract invokes the LLM exactly once (retries, if any, belong to the
// caller), parses and validates the response, and reports the outcome.
// Success is defined by validation errors alone: a failed LLM call yields
// zero candidates, an entry in Errors, and Success=true, because nothing
// failed validation. Unmatched document types return an empty success.
func (e *Extractor) Extract(ctx context.Context, documentText string, docType domain.DocumentType) domain.ExtractionResult {
	prompt, system, ok := extractionPrompt(docType, documentText)
	if !ok {
		e.log.Warn("no extraction prompt for document type", "document_type", docType)
		return domain.ExtractionResult{Success: true}
	}

	var stepErrors []string
	var items []any

	response, err := e.llm.Generate(ctx, prompt, system)
	switch {
	case err != nil:
		e.log.Error("llm generation failed", "document_type", docType, "error", err)
		stepErrors = append(stepErrors, fmt.Sprintf("llm generation failed: %v", err))
	case strings.TrimSpace(response) == "":
		e.log.Error("llm returned empty response", "document_type", docType)
		stepErrors = append(stepErrors, "llm returned empty response")
	default:
		items = parseResponseItems(response, e.log)
	}

	records, validationErrors := validateCandidates(items, docType, e.log)

	return domain.ExtractionResult{
		Records: records,
		Errors:  append(stepErrors, validationErrors...),
		Success: len(validationErrors) == 0,
	}
}
