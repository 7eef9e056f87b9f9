// Package exporter writes the energy report's tabular outputs.
//
// This package contains four main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// ReportExporter: Writes indicator summaries, the correlation matrix and the
// combined indicator table as CSV files in the reports directory.
//
// WorkbookExporter: Collects the same results into a single Excel workbook.
//
// RenderTable / PrintSummary: Bordered console tables for the summary statistics.
//
// Example usage:
//
//	reports := exporter.NewReportExporter(paths)
//	err := reports.ExportSummary(summary, exporter.SummaryFileName("co2"))
//
//	wb, err := exporter.NewWorkbookExporter()
//	err = wb.AddSummary(summary)
//	err = wb.AddCorrelation(matrix)
//	err = wb.Save(paths.GetReportPath(config.WorkbookName))
package exporter
