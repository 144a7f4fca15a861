package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readCSVRows decodes CSV content into raw rows. Fields-per-record checks
// are disabled so ragged exports still load; padding happens downstream.
func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse failed: %w", err)
	}
	return rows, nil
}

// readExcelRows decodes the first sheet of an XLSX workbook into raw rows
func readExcelRows(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx open failed: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx workbook has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx read failed: %w", err)
	}
	return rows, nil
}
