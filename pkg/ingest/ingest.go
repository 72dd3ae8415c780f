// Package ingest turns uploaded contact sheets (CSV or XLSX) into a
// domain.ContactTable. The first row is the header row; fully blank rows are
// dropped and short rows are kept short.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/onurcolak/contact-dispatch-service/internal/domain"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: upload a .csv or .xlsx file")
	ErrEmptySheet        = errors.New("sheet has no header row")
)

const utf8BOM = "\ufeff"

// Parse picks the parser from the file extension.
func Parse(filename string, r io.Reader) (domain.ContactTable, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParseCSV(r)
	case ".xlsx", ".xlsm":
		return ParseXLSX(r)
	default:
		return domain.ContactTable{}, fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, filename)
	}
}

func ParseCSV(r io.Reader) (domain.ContactTable, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return domain.ContactTable{}, fmt.Errorf("failed to read CSV: %w", err)
	}

	return toTable(records)
}

// ParseXLSX reads the first sheet of the workbook.
func ParseXLSX(r io.Reader) (domain.ContactTable, error) {
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return domain.ContactTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		return domain.ContactTable{}, ErrEmptySheet
	}

	records, err := xl.GetRows(sheet)
	if err != nil {
		return domain.ContactTable{}, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return toTable(records)
}

func toTable(records [][]string) (domain.ContactTable, error) {
	records = dropBlank(records)
	if len(records) == 0 {
		return domain.ContactTable{}, ErrEmptySheet
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}

	rows := records[1:]
	if rows == nil {
		rows = [][]string{}
	}

	return domain.ContactTable{Headers: headers, Rows: rows}, nil
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
