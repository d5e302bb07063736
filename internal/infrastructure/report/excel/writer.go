package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sgpropdata/docpipe/internal/core/domain"
)

const (
	sheetTasks = "Schedule Tasks"
	sheetCosts = "Cost Items"
	sheetRules = "Regulatory Rules"
)

// Writer renders stored records into a three-sheet xlsx workbook.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Write(path string, tasks []domain.ScheduleTask, items []domain.CostItem, rules []domain.RegulatoryRule) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", sheetTasks); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{sheetCosts, sheetRules} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, sheetTasks,
		[]any{"Task ID", "Task Name", "Duration (days)", "Start Date", "Finish Date"},
		len(tasks),
		func(i int) []any {
			t := tasks[i]
			return []any{t.TaskID, t.TaskName, t.DurationDays, t.StartDate.String(), t.FinishDate.String()}
		},
	); err != nil {
		return err
	}

	if err := writeRows(f, sheetCosts,
		[]any{"Item Name", "Quantity", "Unit Price (JPY)", "Total Cost (JPY)", "Cost Type"},
		len(items),
		func(i int) []any {
			it := items[i]
			return []any{it.ItemName, it.Quantity, it.UnitPriceYen, it.TotalCostYen, it.CostType}
		},
	); err != nil {
		return err
	}

	if err := writeRows(f, sheetRules,
		[]any{"Rule ID", "Rule Summary", "Measurement Basis"},
		len(rules),
		func(i int) []any {
			r := rules[i]
			return []any{r.RuleID, r.RuleSummary, r.MeasurementBasis}
		},
	); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []any, n int, row func(i int) []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := setRow(f, sheet, i+2, row(i)); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d on %s: %w", rowNum, sheet, err)
	}
	return nil
}
