package exporter

import (
	"fmt"

	"energyreport/internal/config"
	"energyreport/internal/dataprocessing"
)

// ReportExporter writes the analysis results as CSV files
type ReportExporter struct {
	csvWriter *CSVWriter
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// SummaryFileName is the report name of an indicator's summary CSV.
func SummaryFileName(key string) string {
	return fmt.Sprintf("summary_%s.csv", key)
}

// ExportSummary writes descriptive statistics with one row per statistic
func (r *ReportExporter) ExportSummary(s *dataprocessing.Summary, outputPath string) error {
	headers, _ := SummaryTable(s)
	headers[0] = "statistic"

	records := make([][]string, len(dataprocessing.StatNames))
	for i, name := range dataprocessing.StatNames {
		row := []string{name}
		for _, c := range s.Columns {
			row = append(row, formatFloat(c.Values()[i]))
		}
		records[i] = row
	}

	if err := r.csvWriter.WriteSimpleCSV(outputPath, headers, records); err != nil {
		return fmt.Errorf("failed to write summary for %s: %w", s.Key, err)
	}
	return nil
}

// ExportCorrelation writes the correlation matrix with labels on both axes
func (r *ReportExporter) ExportCorrelation(cm *dataprocessing.CorrelationMatrix, outputPath string) error {
	headers := append([]string{""}, cm.Labels...)

	records := make([][]string, len(cm.Labels))
	for i, label := range cm.Labels {
		row := []string{label}
		for j := range cm.Labels {
			row = append(row, formatFloat(cm.At(i, j)))
		}
		records[i] = row
	}

	if err := r.csvWriter.WriteSimpleCSV(outputPath, headers, records); err != nil {
		return fmt.Errorf("failed to write correlation matrix: %w", err)
	}
	return nil
}

// ExportCombined streams the merged indicator table
func (r *ReportExporter) ExportCombined(m *dataprocessing.Merged, outputPath string) (int, error) {
	headers := append([]string{config.ColumnCountryName, config.ColumnCountryCode}, m.Columns...)

	stream, err := r.csvWriter.CreateStreamWriter(outputPath, headers)
	if err != nil {
		return 0, fmt.Errorf("failed to create combined table: %w", err)
	}

	for i, row := range m.Rows {
		record := make([]string, 0, len(headers))
		record = append(record, row.CountryName, row.CountryCode)
		for _, v := range row.Values {
			record = append(record, formatFloat(v))
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return 0, fmt.Errorf("failed to write combined row %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return 0, fmt.Errorf("failed to close combined table: %w", err)
	}
	return stream.Rows(), nil
}
