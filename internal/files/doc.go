// Package files locates indicator datasets on disk.
//
// Discovery resolves an indicator's configured file name inside the data
// directory. A CSV download is preferred; when it is absent a workbook with
// the same base name (.xlsx or .xlsm) is used instead. It also lists the
// CSV and Excel files of a directory for the conversion tool.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	dataset, err := discovery.FindDataset("CO2 Emissions (Metric Tons per Capita).csv")
//
//	workbooks, err := discovery.FindExcelFiles(".")
package files
