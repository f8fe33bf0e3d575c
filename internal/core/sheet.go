package core

// sheet.go reads expected-inventory files and writes the reconciliation
// report. Only the first worksheet of an .xlsx file is read, and its first
// row is the header.

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// knownColumns canonicalizes header spelling so "styles no" or "COLOR"
// still map onto the expected columns.
var knownColumns = func() map[string]string {
	m := map[string]string{
		strings.ToLower(ColumnStyleNo): ColumnStyleNo,
		strings.ToLower(ColumnColor):   ColumnColor,
	}
	for _, size := range SizeColumns {
		m[strings.ToLower(size)] = size
	}
	return m
}()

// ReadRows parses an uploaded file into rows. The format is chosen by the
// file extension (.xlsx or .csv).
func ReadRows(fileName string, r io.Reader) ([]Row, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".xlsx":
		return readXLSX(r)
	case ".csv":
		return readCSV(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrParseFailure, ext)
	}
}

func readXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrParseFailure, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrParseFailure)
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrParseFailure, sheets[0], err)
	}
	return recordsToRows(records)
}

func readCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(WrapCSVInput(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid csv: %v", ErrParseFailure, err)
	}
	return recordsToRows(records)
}

// recordsToRows keys every data row by the header row. Blank rows are
// dropped; short rows leave the missing columns empty.
func recordsToRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrParseFailure)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = CleanCell(h)
		if canon, ok := knownColumns[strings.ToLower(h)]; ok {
			h = canon
		}
		header[i] = h
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		blank := true
		for i, name := range header {
			if name == "" || i >= len(rec) {
				continue
			}
			row[name] = rec[i]
			if strings.TrimSpace(rec[i]) != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// WriteReport renders report rows as an .xlsx workbook with a single sheet.
func WriteReport(w io.Writer, sheet string, rows []ReportRow) error {
	if sheet == "" {
		sheet = ReportSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(ReportHeaders))
	for i, h := range ReportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.StyleNo,
			r.Color,
			r.Size,
			r.ExpectedQuantity,
			r.ActualQuantity,
			r.Progress,
			r.Result.Korean(),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
