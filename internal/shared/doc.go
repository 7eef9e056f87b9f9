// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides:
//
//   - A log capture handler so tests can assert on structured log records
//   - World Bank style indicator fixtures written as CSV or workbook files
//
// Example usage:
//
//	func TestLoad(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    path := testutil.WriteCSV(t, dir, testutil.Dataset{Indicator: ind})
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelWarn, "chart_skipped")
//	}
//
// Nothing in this package may import the pipeline packages that use it.
package shared
