package exporter

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"energyreport/internal/config"
	"energyreport/internal/dataprocessing"
)

// maxSheetName is the longest worksheet name Excel accepts.
const maxSheetName = 31

// WorkbookExporter collects summaries and the correlation matrix into one
// Excel workbook.
type WorkbookExporter struct {
	file   *excelize.File
	header int
	sheets []string
}

// NewWorkbookExporter creates an empty workbook.
func NewWorkbookExporter() (*WorkbookExporter, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &WorkbookExporter{file: f, header: header}, nil
}

// SummarySheetName is the worksheet an indicator's summary is written to.
func SummarySheetName(key string) string {
	return truncateSheetName("Summary " + key)
}

// AddSummary writes one indicator summary as a statistic × year sheet.
func (w *WorkbookExporter) AddSummary(s *dataprocessing.Summary) error {
	sheet := SummarySheetName(s.Key)
	if err := w.addSheet(sheet); err != nil {
		return err
	}

	if err := w.file.SetCellValue(sheet, "A1", s.Title); err != nil {
		return err
	}
	headers, _ := SummaryTable(s)
	headers[0] = "statistic"
	if err := w.writeHeader(sheet, 2, headers); err != nil {
		return err
	}

	for i, name := range dataprocessing.StatNames {
		row := []interface{}{name}
		for _, c := range s.Columns {
			row = append(row, cellValue(c.Values()[i]))
		}
		if err := w.writeRow(sheet, i+3, row); err != nil {
			return err
		}
	}
	return w.file.SetColWidth(sheet, "A", "A", 12)
}

// AddCorrelation writes the correlation matrix with a three-colour scale
// from -1 to 1.
func (w *WorkbookExporter) AddCorrelation(cm *dataprocessing.CorrelationMatrix) error {
	sheet := config.CorrelationSheetName
	if err := w.addSheet(sheet); err != nil {
		return err
	}

	if err := w.writeHeader(sheet, 1, append([]string{""}, cm.Labels...)); err != nil {
		return err
	}
	for i, label := range cm.Labels {
		row := []interface{}{label}
		for j := range cm.Labels {
			row = append(row, cellValue(cm.At(i, j)))
		}
		if err := w.writeRow(sheet, i+2, row); err != nil {
			return err
		}
	}

	n := len(cm.Labels)
	if n == 0 {
		return nil
	}
	first, err := excelize.CoordinatesToCellName(2, 2)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(n+1, n+1)
	if err != nil {
		return err
	}
	if err := w.file.SetConditionalFormat(sheet, first+":"+last, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MidType:  "num",
		MaxType:  "num",
		MinValue: "-1",
		MidValue: "0",
		MaxValue: "1",
		MinColor: "#3B4CC0",
		MidColor: "#DDDDDD",
		MaxColor: "#B40426",
	}}); err != nil {
		return fmt.Errorf("failed to format correlation sheet: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(n + 1)
	if err != nil {
		return err
	}
	return w.file.SetColWidth(sheet, "A", lastCol, 14)
}

// Sheets lists the worksheets added so far, in order.
func (w *WorkbookExporter) Sheets() []string {
	return append([]string(nil), w.sheets...)
}

// Save writes the workbook to path and releases it.
func (w *WorkbookExporter) Save(path string) error {
	defer w.file.Close()

	if len(w.sheets) > 0 {
		if idx, err := w.file.GetSheetIndex(w.sheets[0]); err == nil && idx >= 0 {
			w.file.SetActiveSheet(idx)
		}
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Close releases the workbook without saving it.
func (w *WorkbookExporter) Close() error {
	return w.file.Close()
}

func (w *WorkbookExporter) addSheet(name string) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	w.sheets = append(w.sheets, name)
	return nil
}

func (w *WorkbookExporter) writeHeader(sheet string, row int, headers []string) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := w.writeRow(sheet, row, values); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(headers), row)
	return w.file.SetCellStyle(sheet, first, last, w.header)
}

func (w *WorkbookExporter) writeRow(sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(sheet, cell, &values)
}

// cellValue leaves missing values as empty cells.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func truncateSheetName(name string) string {
	if len(name) <= maxSheetName {
		return name
	}
	return name[:maxSheetName]
}
