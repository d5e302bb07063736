package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date carried as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return errors.New("date is required")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %q", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// ScheduleTask is one row of a construction project schedule.
// TaskID is the natural key used for upserts.
type ScheduleTask struct {
	TaskID       int    `json:"task_id"`
	TaskName     string `json:"task_name"`
	DurationDays int    `json:"duration_days"`
	StartDate    Date   `json:"start_date"`
	FinishDate   Date   `json:"finish_date"`
}

func (t ScheduleTask) Validate() error {
	if t.TaskID <= 0 {
		return errors.New("task_id must be a positive integer")
	}
	if strings.TrimSpace(t.TaskName) == "" {
		return errors.New("task_name must not be empty")
	}
	if t.DurationDays < 0 {
		return errors.New("duration_days must not be negative")
	}
	if t.StartDate.IsZero() || t.FinishDate.IsZero() {
		return errors.New("start_date and finish_date are required")
	}
	if t.FinishDate.Before(t.StartDate.Time) {
		return errors.New("finish_date must not be before start_date")
	}
	return nil
}

// CostItem is one line of a construction cost breakdown. It has no natural
// key; ingestion is insert-only.
type CostItem struct {
	ItemName     string  `json:"item_name"`
	Quantity     float64 `json:"quantity"`
	UnitPriceYen float64 `json:"unit_price_yen"`
	TotalCostYen float64 `json:"total_cost_yen"`
	CostType     string  `json:"cost_type"`
}

func (c CostItem) Validate() error {
	if strings.TrimSpace(c.ItemName) == "" {
		return errors.New("item_name must not be empty")
	}
	if c.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if c.UnitPriceYen < 0 {
		return errors.New("unit_price_yen must not be negative")
	}
	if c.TotalCostYen < 0 {
		return errors.New("total_cost_yen must not be negative")
	}
	switch strings.ToLower(c.CostType) {
	case "foreign cost", "local cost":
		return nil
	default:
		return fmt.Errorf("cost_type must be one of [Foreign cost, Local cost], got %q", c.CostType)
	}
}

// RegulatoryRule is one clarification from a regulatory circular.
// RuleID (e.g. "Q1") is the natural key used for upserts.
type RegulatoryRule struct {
	RuleID           string `json:"rule_id"`
	RuleSummary      string `json:"rule_summary"`
	MeasurementBasis string `json:"measurement_basis"`
}

func (r RegulatoryRule) Validate() error {
	if strings.TrimSpace(r.RuleID) == "" {
		return errors.New("rule_id must not be empty")
	}
	if strings.TrimSpace(r.RuleSummary) == "" {
		return errors.New("rule_summary must not be empty")
	}
	if strings.TrimSpace(r.MeasurementBasis) == "" {
		return errors.New("measurement_basis must not be empty")
	}
	return nil
}
