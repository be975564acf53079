package services

import (
	"io"

	"github.com/xuri/excelize/v2"
)

const reportSheet = "Report"

// ExportXLSX writes the report as a single-sheet workbook.
func ExportXLSX(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(reportSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	columns := report.Kind.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(reportSheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(reportSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range report.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := report.Kind.Cells(row)
		if err := f.SetSheetRow(reportSheet, cell, &cells); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetColWidth(reportSheet, "A", lastCol, 14); err != nil {
		return err
	}

	return f.Write(w)
}
