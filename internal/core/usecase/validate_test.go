package usecase

import (
	"strings"
	"testing"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

func TestValidateCandidatesScheduleMixedBatch(t *testing.T) {
	items := []any{
		map[string]any{
			"task_id":       float64(1),
			"task_name":     "Install CMU Block Walls",
			"duration_days": float64(30),
			"start_date":    "2024-01-01",
			"finish_date":   "2024-01-31",
		},
		map[string]any{
			"task_id":       float64(2),
			"task_name":     "Roofing",
			"duration_days": float64(10),
			"start_date":    "2024-02-10",
			"finish_date":   "2024-02-01",
		},
	}

	records, errs := validateCandidates(items, domain.TypeSchedule, discardLogger())
	if len(records.Tasks) != 1 {
		t.Fatalf("expected 1 valid task, got %d", len(records.Tasks))
	}
	if records.Tasks[0].TaskID != 1 {
		t.Fatalf("unexpected task id: %d", records.Tasks[0].TaskID)
	}
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0], "validation error for task 2:") {
		t.Fatalf("error should carry the natural key: %s", errs[0])
	}
}

func TestValidateCandidatesCostItem(t *testing.T) {
	items := []any{
		map[string]any{
			"item_name":      "Bearing Pile",
			"quantity":       736.2,
			"unit_price_yen": float64(79000),
			"total_cost_yen": float64(58159800),
			"cost_type":      "foreign COST",
		},
		map[string]any{
			"item_name":      "Rebar",
			"quantity":       float64(10),
			"unit_price_yen": float64(500),
			"total_cost_yen": float64(5000),
			"cost_type":      "Overseas cost",
		},
	}

	records, errs := validateCandidates(items, domain.TypeCost, discardLogger())
	if len(records.CostItems) != 1 {
		t.Fatalf("expected 1 valid item, got %d", len(records.CostItems))
	}
	if records.CostItems[0].CostType != "foreign COST" {
		t.Fatalf("cost type must be stored as provided, got %q", records.CostItems[0].CostType)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "Rebar") {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateCandidatesNonObjectItem(t *testing.T) {
	records, errs := validateCandidates([]any{"just a string"}, domain.TypeRegulatory, discardLogger())
	if records.Count() != 0 {
		t.Fatalf("expected no records, got %d", records.Count())
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "unknown") {
		t.Fatalf("non-object items must report key 'unknown': %v", errs)
	}
}

func TestValidateCandidatesUnmatchedType(t *testing.T) {
	items := []any{map[string]any{"task_id": float64(1)}}
	records, errs := validateCandidates(items, domain.TypeGeneral, discardLogger())
	if records.Count() != 0 || errs != nil {
		t.Fatalf("general type must produce nothing, got %d records %v", records.Count(), errs)
	}
}

func TestValidateCandidatesRegulatory(t *testing.T) {
	items := []any{
		map[string]any{
			"rule_id":           "Q17",
			"rule_summary":      "Covered walkways count toward GFA",
			"measurement_basis": "edge of the covered area",
		},
	}
	records, errs := validateCandidates(items, domain.TypeRegulatory, discardLogger())
	if len(records.Rules) != 1 || len(errs) != 0 {
		t.Fatalf("expected 1 rule and no errors, got %d rules %v", len(records.Rules), errs)
	}
	if records.Rules[0].RuleID != "Q17" {
		t.Fatalf("unexpected rule id: %s", records.Rules[0].RuleID)
	}
}
