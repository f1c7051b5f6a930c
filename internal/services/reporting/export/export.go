// Package export writes report tables to XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cbta/cbta-mcp/internal/services/reporting/report"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Sheet is one report placed on its own worksheet.
type Sheet struct {
	Name  string
	Table report.Table
}

// Collect runs the named reports in order. With no names it runs the whole
// catalog.
func Collect(ctx context.Context, reports *report.Service, names []string) ([]Sheet, error) {
	if len(names) == 0 {
		for _, entry := range report.Catalog() {
			names = append(names, entry.Name)
		}
	}
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		table, err := reports.Run(ctx, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{Name: name, Table: table})
	}
	return sheets, nil
}

// WriteXLSX writes one worksheet per sheet: the column headers in bold on the
// first row and the cells below. Cells holding plain integers are stored as
// numbers.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no reports to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	names := sheetNames(sheets)
	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %q: %w", name, err)
		}
		if err := writeTable(f, name, sheet.Table, headerStyle); err != nil {
			return fmt.Errorf("write sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, table report.Table, headerStyle int) error {
	for i, column := range table.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, column); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, columnWidth(table, i)); err != nil {
			return err
		}
	}

	for r, row := range table.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellValue(value string) any {
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return value
}

func columnWidth(table report.Table, col int) float64 {
	width := len(table.Columns[col])
	for _, row := range table.Rows {
		if col < len(row) {
			width = max(width, len(row[col]))
		}
	}
	return float64(min(max(width+2, 10), 60))
}

// sheetNames derives unique Excel-safe sheet names from report names. The
// common "fetch_" prefix is dropped and long names are truncated.
func sheetNames(sheets []Sheet) []string {
	names := make([]string, len(sheets))
	seen := make(map[string]bool, len(sheets))
	for i, sheet := range sheets {
		base := sanitizeSheetName(sheet.Name)
		name := base
		for n := 2; seen[strings.ToLower(name)]; n++ {
			suffix := "~" + strconv.Itoa(n)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		seen[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sanitizeSheetName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "fetch_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "report"
	}
	return truncate(name, maxSheetName)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
