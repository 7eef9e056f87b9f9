package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"energyreport/internal/config"
	"energyreport/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DataSheetName is the worksheet World Bank workbooks keep the indicator table in.
const DataSheetName = "Data"

// ParseOptions controls how an indicator file is read.
type ParseOptions struct {
	// SkipRows is the number of physical lines (or worksheet rows) ahead of the header.
	SkipRows int
}

// ParseFile reads an indicator table from a CSV or Excel file, choosing the
// reader by extension.
func ParseFile(filePath string, opts ParseOptions) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return ParseXLSXFile(filePath, opts)
	default:
		return ParseCSVFile(filePath, opts)
	}
}

// ParseCSVFile opens filePath and parses it with ParseCSV.
func ParseCSVFile(filePath string, opts ParseOptions) (*Table, error) {
	f, err := os.Open(filePath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(filePath, err)
		}
		return nil, errors.NewInvalidFormatError(filePath, err)
	}
	defer f.Close()

	table, err := ParseCSV(f, filePath, opts)
	if err != nil {
		return nil, err
	}
	return table, nil
}

// ParseCSV reads a delimited indicator table. A leading UTF-8 byte order mark
// is dropped and opts.SkipRows physical lines are discarded before the header.
func ParseCSV(r io.Reader, name string, opts ParseOptions) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, errors.NewInvalidFormatError(name, fmt.Errorf("file ends before line %d", opts.SkipRows+1))
			}
			return nil, errors.NewInvalidFormatError(name, err)
		}
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewInvalidFormatError(name, err)
	}
	if len(records) == 0 {
		return nil, errors.NewInvalidFormatError(name, fmt.Errorf("no header row after %d skipped lines", opts.SkipRows))
	}

	return buildTable(name, records), nil
}

// ParseXLSXFile reads the "Data" worksheet of a workbook, or its first sheet
// when no such sheet exists.
func ParseXLSXFile(filePath string, opts ParseOptions) (*Table, error) {
	sheet, rows, err := ReadWorkbookRows(filePath)
	if err != nil {
		return nil, err
	}
	if len(rows) <= opts.SkipRows {
		return nil, errors.NewInvalidFormatError(filePath, fmt.Errorf("sheet %q has no header row after %d skipped rows", sheet, opts.SkipRows))
	}

	return buildTable(filePath, rows[opts.SkipRows:]), nil
}

// ReadWorkbookRows returns every row of the workbook's data sheet, preamble
// included, along with the sheet name.
func ReadWorkbookRows(filePath string) (string, [][]string, error) {
	if _, err := os.Stat(filePath); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return "", nil, errors.NewFileNotFoundError(filePath, err)
		}
		return "", nil, errors.NewInvalidFormatError(filePath, err)
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", nil, errors.NewInvalidFormatError(filePath, fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()

	sheet := findDataSheet(f)
	if sheet == "" {
		return "", nil, errors.NewInvalidFormatError(filePath, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, errors.NewInvalidFormatError(filePath, fmt.Errorf("read sheet %q: %w", sheet, err))
	}
	return sheet, rows, nil
}

func findDataSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	for _, name := range sheets {
		if strings.EqualFold(strings.TrimSpace(name), DataSheetName) {
			return name
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

// buildTable turns raw records into a Table. Blank header cells are named
// "Unnamed: <position>" and repeated names get a ".N" suffix.
func buildTable(name string, records [][]string) *Table {
	header := make([]string, len(records[0]))
	seen := make(map[string]int, len(header))
	for i, h := range records[0] {
		if trimCell(h) == "" {
			h = config.UnnamedColumnPrefix + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = fmt.Sprintf("%s.%d", h, n+1)
		} else {
			seen[h] = 0
		}
		header[i] = h
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}

	return &Table{Name: name, Header: header, Rows: rows}
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}
