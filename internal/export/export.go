// Package export writes generated test cases to an Excel workbook laid out
// for manual execution: one sheet, a styled header row, and empty Actual
// Result and Notes columns for the tester to fill in.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"autotestcase/internal/logging"
	"autotestcase/internal/testcase"
)

// ErrNoTestCases is returned when there is nothing to export.
var ErrNoTestCases = errors.New("no test cases to export")

// Columns is the fixed header row.
var Columns = []string{
	"Test ID",
	"Feature",
	"Test Case Title",
	"Test Steps",
	"Expected Result",
	"Priority",
	"Status",
	"Actual Result",
	"Notes",
}

// Column indexes (1-based) of the cells that hold multi-line text.
const (
	stepsColumn    = 4
	expectedColumn = 5
)

const (
	rowHeight   = 20
	headerFill  = "CCCCCC"
	creatorName = "autotestcase"

	slowSaveThreshold = 5 * time.Second
)

// Options controls workbook layout.
type Options struct {
	SheetName       string
	DefaultPriority string
	DefaultStatus   string
	MaxColumnWidth  int
	// RunID is stamped into the document properties.
	RunID string
}

// DefaultOptions returns the standard layout.
func DefaultOptions() Options {
	return Options{
		SheetName:       "Test Cases",
		DefaultPriority: testcase.PriorityMedium,
		DefaultStatus:   "Not Executed",
		MaxColumnWidth:  50,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.SheetName == "" {
		o.SheetName = def.SheetName
	}
	if o.DefaultPriority == "" {
		o.DefaultPriority = def.DefaultPriority
	}
	if o.DefaultStatus == "" {
		o.DefaultStatus = def.DefaultStatus
	}
	if o.MaxColumnWidth <= 0 {
		o.MaxColumnWidth = def.MaxColumnWidth
	}
	return o
}

// ToRows projects test cases onto spreadsheet rows, header first.
func ToRows(cases []testcase.TestCase, opts Options) [][]string {
	opts = opts.withDefaults()

	rows := make([][]string, 0, len(cases)+1)
	rows = append(rows, append([]string(nil), Columns...))
	for _, tc := range cases {
		priority := tc.Priority
		if priority == "" {
			priority = opts.DefaultPriority
		}
		rows = append(rows, []string{
			tc.TestID,
			tc.Feature,
			tc.Title,
			tc.Steps.Format(),
			tc.ExpectedResult,
			priority,
			opts.DefaultStatus,
			"",
			"",
		})
	}
	return rows
}

// columnWidths returns min(longest cell + 2, max) for every column.
func columnWidths(rows [][]string, max int) []float64 {
	widths := make([]float64, len(Columns))
	for col := range Columns {
		longest := 0
		for _, row := range rows {
			if n := utf8.RuneCountInString(row[col]); n > longest {
				longest = n
			}
		}
		w := longest + 2
		if w > max {
			w = max
		}
		widths[col] = float64(w)
	}
	return widths
}

// SaveWorkbook writes cases to an .xlsx file at path, creating parent
// directories as needed.
func SaveWorkbook(cases []testcase.TestCase, path string, opts Options) error {
	if len(cases) == 0 {
		return ErrNoTestCases
	}
	opts = opts.withDefaults()
	timer := logging.StartTimer(logging.CategoryExport, "save workbook")
	defer timer.StopWithThreshold(slowSaveThreshold)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := opts.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := ToRows(cases, opts)
	logging.ExportDebug("writing %d rows to sheet %q", len(rows), sheet)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		if err := f.SetRowHeight(sheet, i+1, rowHeight); err != nil {
			return fmt.Errorf("failed to set row height: %w", err)
		}
	}

	if err := applyColumnWidths(f, sheet, columnWidths(rows, opts.MaxColumnWidth)); err != nil {
		return err
	}
	if err := applyStyles(f, sheet, len(rows)); err != nil {
		return err
	}

	props := &excelize.DocProperties{
		Creator:     creatorName,
		Title:       "Manual Test Cases",
		Identifier:  opts.RunID,
		Description: fmt.Sprintf("%d test cases", len(cases)),
		Created:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := f.SetDocProps(props); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logging.Export("saved %d test cases to %s", len(cases), path)
	return nil
}

func applyColumnWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}
	return nil
}

func applyStyles(f *excelize.File, sheet string, rowCount int) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if rowCount < 2 {
		return nil
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("failed to create wrap style: %w", err)
	}

	for _, col := range []int{stepsColumn, expectedColumn} {
		top, err := excelize.CoordinatesToCellName(col, 2)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(col, rowCount)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, top, bottom, wrapStyle); err != nil {
			return fmt.Errorf("failed to style column %d: %w", col, err)
		}
	}
	return nil
}
