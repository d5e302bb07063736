package usecase

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// parseResponseItems recovers candidate records from a free-form LLM reply.
// The reply is expected to contain a JSON array, but models routinely wrap it
// in prose or return a bare object, so recovery runs in order:
//
//  1. the widest `[` ... `]` slice parsed as a JSON array;
//  2. the whole trimmed reply parsed as JSON;
//  3. the widest `{` ... `}` slice parsed as a single object.
//
// A single object is wrapped into a one-element slice. Total failure returns
// nil and logs a truncated preview; this function never fails.
func parseResponseItems(raw string, log *slog.Logger) []any {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if items, ok := decodeItems(text[start : end+1]); ok {
			return items
		}
	}

	if items, ok := decodeItems(text); ok {
		return items
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if items, ok := decodeItems(text[start : end+1]); ok {
			return items
		}
	}

	log.Error("failed to parse JSON from llm response", "preview", responsePreview(text, 200))
	return nil
}

// decodeItems parses s as JSON and normalizes the result to a slice of
// candidate items. Scalars are rejected so later strategies get a chance.
func decodeItems(s string) ([]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch typed := v.(type) {
	case []any:
		return typed, true
	case map[string]any:
		return []any{typed}, true
	default:
		return nil, false
	}
}

func responsePreview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
