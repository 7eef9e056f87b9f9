// Package dataprocessing turns World Bank indicator downloads into typed
// tables and derives the statistics the energy report is built from.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Parser: reads indicator CSV files (or their Excel equivalents) into a raw Table
// 2. Processor: drops unnamed columns, forward fills gaps and coerces year columns
// 3. Analytics: country time series, the inner join of indicators, pairwise
// correlation and descriptive statistics
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("co2.csv", dataprocessing.ParseOptions{SkipRows: 4})
//	if err != nil {
//	    return err
//	}
//
//	processor := dataprocessing.NewForwardFillProcessor(dataprocessing.DefaultOptions(), logger)
//	co2, stats, err := processor.Process("co2", table)
//
//	merged, err := dataprocessing.Merge(access, co2, electric, energy)
//	matrix, err := dataprocessing.Correlate(merged, dataprocessing.KeyColumns(keys, keyYears))
//
// # Data Flow
//
//	CSV/XLSX → Parser → Table → Processor → Indicator → TimeSeries / Merge → Correlate
//	                                                  → Describe
//
// # Missing Values
//
// Missing observations are NaN throughout. Empty cells and the usual spreadsheet
// null markers ("NaN", "N/A", "NULL" and similar) are missing on input; any other
// text that does not parse as a number becomes NaN during coercion.
//
// # Error Handling
//
// Parse and cleaning failures are returned as *errors.AppError values
// (FILE_NOT_FOUND, INVALID_FORMAT, MISSING_COLUMN, EMPTY_DATASET) so callers can
// map them to exit codes.
package dataprocessing
