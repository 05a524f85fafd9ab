package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Report"

// WriteXLSX writes res as a workbook with a header row followed by one row
// per result row.
func WriteXLSX(w io.Writer, res *Result) error {
	xl := excelize.NewFile()
	defer xl.Close()

	if err := xl.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(res.Columns))
	for i, col := range res.Columns {
		header[i] = col
	}
	if err := xl.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	if len(res.Columns) > 0 {
		style, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(res.Columns), 1)
		if err != nil {
			return err
		}
		if err := xl.SetCellStyle(exportSheet, "A1", last, style); err != nil {
			return err
		}
	}

	for i, row := range res.Rows {
		values := make([]interface{}, len(res.Columns))
		for j, col := range res.Columns {
			values[j] = cellValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := xl.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	if err := xl.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return t
	}
}
