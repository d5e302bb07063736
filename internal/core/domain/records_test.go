package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestScheduleTaskRejectsFinishBeforeStart(t *testing.T) {
	task := ScheduleTask{
		TaskID:       1,
		TaskName:     "Install CMU Block Walls",
		DurationDays: 30,
		StartDate:    NewDate(2024, time.January, 31),
		FinishDate:   NewDate(2024, time.January, 1),
	}
	if err := task.Validate(); err == nil {
		t.Fatalf("expected validation error for finish before start")
	}
}

func TestScheduleTaskAcceptsSameDayFinish(t *testing.T) {
	task := ScheduleTask{
		TaskID:       2,
		TaskName:     "Mobilization",
		DurationDays: 0,
		StartDate:    NewDate(2024, time.March, 5),
		FinishDate:   NewDate(2024, time.March, 5),
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestDateUnmarshalRejectsBadFormat(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"01/31/2024"`), &d); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
	if err := json.Unmarshal([]byte(`"2024-01-31"`), &d); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if d.String() != "2024-01-31" {
		t.Fatalf("expected 2024-01-31, got %s", d)
	}
}

func TestCostItemCostTypeIsCaseInsensitive(t *testing.T) {
	item := CostItem{
		ItemName:     "Bearing Pile",
		Quantity:     736.2,
		UnitPriceYen: 79000,
		TotalCostYen: 58159800,
		CostType:     "foreign cost",
	}
	if err := item.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	item.CostType = "overseas cost"
	err := item.Validate()
	if err == nil {
		t.Fatalf("expected error for unknown cost type")
	}
	if !strings.Contains(err.Error(), "cost_type") {
		t.Fatalf("expected cost_type error, got %v", err)
	}
}

func TestRegulatoryRuleRequiresAllFields(t *testing.T) {
	rule := RegulatoryRule{RuleID: "Q1", RuleSummary: "GFA definition", MeasurementBasis: ""}
	if err := rule.Validate(); err == nil {
		t.Fatalf("expected error for empty measurement_basis")
	}
}

func TestClassifyDocumentType(t *testing.T) {
	cases := map[string]DocumentType{
		"schedule":               TypeSchedule,
		"Project Schedule":       TypeSchedule,
		"costing":                TypeCost,
		"cost":                   TypeCost,
		"URA circular":           TypeRegulatory,
		"gfa definitions":        TypeRegulatory,
		"regulatory":             TypeRegulatory,
		"general":                TypeGeneral,
		"meeting minutes":        TypeGeneral,
	}
	for label, want := range cases {
		if got := ClassifyDocumentType(label); got != want {
			t.Fatalf("ClassifyDocumentType(%q) = %s, want %s", label, got, want)
		}
	}
}
