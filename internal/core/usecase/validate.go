package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

type validator interface {
	Validate() error
}

// validateCandidates turns raw candidate items into typed records for the
// given document type. Failures are strictly per item: a malformed candidate
// adds one error string and the batch continues. Unmatched document types
// produce zero output and zero errors.
func validateCandidates(items []any, docType domain.DocumentType, log *slog.Logger) (domain.ExtractedRecords, []string) {
	var records domain.ExtractedRecords
	var errs []string

	switch docType {
	case domain.TypeSchedule:
		for _, item := range items {
			task, err := decodeRecord[domain.ScheduleTask](item)
			if err != nil {
				errs = append(errs, validationError("task", item, "task_id", err))
				continue
			}
			records.Tasks = append(records.Tasks, task)
		}
	case domain.TypeCost:
		for _, item := range items {
			costItem, err := decodeRecord[domain.CostItem](item)
			if err != nil {
				errs = append(errs, validationError("cost item", item, "item_name", err))
				continue
			}
			records.CostItems = append(records.CostItems, costItem)
		}
	case domain.TypeRegulatory:
		for _, item := range items {
			rule, err := decodeRecord[domain.RegulatoryRule](item)
			if err != nil {
				errs = append(errs, validationError("rule", item, "rule_id", err))
				continue
			}
			records.Rules = append(records.Rules, rule)
		}
	default:
		return records, nil
	}

	log.Info("validated extracted items",
		"document_type", docType,
		"valid", records.Count(),
		"errors", len(errs),
	)
	return records, errs
}

// decodeRecord round-trips a candidate through JSON into a typed record and
// checks its invariants. Type mismatches, bad dates and invariant violations
// all surface as one validation error.
func decodeRecord[T validator](item any) (T, error) {
	var out T
	if _, ok := item.(map[string]any); !ok {
		return out, errors.New("item is not a JSON object")
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

func validationError(kind string, item any, keyField string, err error) string {
	return fmt.Sprintf("validation error for %s %s: %v", kind, naturalKey(item, keyField), err)
}

// naturalKey extracts the item's identifying field for error messages,
// falling back to "unknown" when the item is not an object or lacks the field.
func naturalKey(item any, field string) string {
	obj, ok := item.(map[string]any)
	if !ok {
		return "unknown"
	}
	v, ok := obj[field]
	if !ok {
		return "unknown"
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}
