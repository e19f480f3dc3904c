package planner

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Sample Diet Plan"

// WriteCSV writes the plan with a "Meal,Monday,...,Sunday" header and one row
// per meal slot.
func WriteCSV(w io.Writer, plan WeeklyPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range plan.Rows() {
		if err := cw.Write(append([]string{row.Meal}, row.Cells...)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", row.Meal, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the plan serialized by WriteCSV.
func CSV(plan WeeklyPlan) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX returns the plan as a single-sheet workbook with the same layout as
// the CSV export.
func XLSX(plan WeeklyPlan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := Header()
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range plan.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := append([]string{row.Meal}, row.Cells...)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %s: %w", row.Meal, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheetName, 1, 1, bold)
	}
	_ = f.SetColWidth(sheetName, "A", "H", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTable writes an aligned plain-text table, used by the CLI and chat replies.
func WriteTable(w io.Writer, plan WeeklyPlan) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := Header()
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range plan.Rows() {
		fmt.Fprint(tw, row.Meal)
		for _, c := range row.Cells {
			fmt.Fprint(tw, "\t", c)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// DaySummary writes the plan one slot per line, which reads better than the
// full table on narrow screens since every day is the same.
func DaySummary(w io.Writer, plan WeeklyPlan) error {
	for _, row := range plan.Rows() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", row.Meal, row.Cells[0]); err != nil {
			return err
		}
	}
	return nil
}
