// Command xlsx2csv converts World Bank indicator workbooks into the CSV
// layout the energy report reads. The preamble lines above the header are
// kept so the converted files parse with the same skip-row setting.
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"energyreport/internal/config"
	"energyreport/internal/dataprocessing"
	"energyreport/internal/errors"
	"energyreport/internal/exporter"
	"energyreport/internal/files"
	"energyreport/internal/infrastructure"
	"energyreport/internal/validation"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			os.Exit(errors.ExitOK)
		}
		fmt.Fprintf(os.Stderr, "xlsx2csv: %v\n", err)
		os.Exit(errors.ExitCode(err))
	}
}

type converter struct {
	outDir    string
	force     bool
	skipRows  int
	logger    *slog.Logger
	validator *validation.FileValidator
	writer    *exporter.CSVWriter
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("xlsx2csv", flag.ContinueOnError)
	configFile := fs.String("config", "", "configuration file")
	dir := fs.String("dir", "", "directory containing .xlsx workbooks (defaults to the configured data directory)")
	out := fs.String("out", "", "output directory for CSV files (defaults to the input directory)")
	force := fs.Bool("force", false, "convert even when an up to date CSV exists")
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return errors.NewConfigError("invalid command line", err)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return errors.NewConfigError("failed to load configuration", err)
	}
	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return errors.NewConfigError("failed to resolve paths", err)
	}

	if *dir == "" {
		*dir = paths.DataDir
	}
	if *out == "" {
		*out = *dir
	}
	*dir = paths.ResolveFile(*dir)
	*out = paths.ResolveFile(*out)

	cfg.Logging.FilePath = paths.ResolveFile(cfg.Logging.FilePath)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "xlsx2csv")
	defer infrastructure.CloseLogFile()

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateInputDirectory(*dir, "*.xls*"); err != nil {
		return err
	}
	if err := validator.ValidateOutputDirectory(*out); err != nil {
		return err
	}

	workbooks, err := files.NewDiscovery(paths.BaseDir).FindExcelFiles(*dir)
	if err != nil {
		return errors.NewFileNotFoundError(*dir, err)
	}
	logger.Info("Excel files found", slog.Int("count", len(workbooks)), slog.String("input_dir", *dir))
	fmt.Fprintf(stdout, "Found %d Excel files\n", len(workbooks))

	c := &converter{
		outDir:    *out,
		force:     *force,
		skipRows:  cfg.Analysis.SkipRows,
		logger:    logger,
		validator: validator,
		writer:    exporter.NewCSVWriter(nil),
	}

	converted, failed := 0, 0
	for i, wb := range workbooks {
		fmt.Fprintf(stdout, "Processing file %d of %d: %s\n", i+1, len(workbooks), wb.Name)

		done, err := c.convert(wb)
		if err != nil {
			logger.Warn("Error converting workbook",
				slog.String("filename", wb.Name),
				slog.String("error", err.Error()))
			failed++
			continue
		}
		if done {
			converted++
		}
	}

	logger.Info("Conversion completed",
		slog.Int("converted", converted),
		slog.Int("failed", failed),
		slog.String("output_dir", *out))
	fmt.Fprintf(stdout, "Conversion complete: %d files\n", converted)

	if failed > 0 && converted == 0 {
		return errors.NewInvalidFormatError(*dir, fmt.Errorf("%d workbooks could not be converted", failed))
	}
	return nil
}

// CSVName is the file a workbook converts to.
func CSVName(workbook string) string {
	return strings.TrimSuffix(workbook, filepath.Ext(workbook)) + ".csv"
}

// convert writes one workbook as CSV. It reports false when an existing CSV
// is already newer than the workbook.
func (c *converter) convert(wb files.FileInfo) (bool, error) {
	if err := c.validator.ValidateExcelFile(wb.Path); err != nil {
		return false, err
	}

	target := filepath.Join(c.outDir, CSVName(wb.Name))
	if !c.force {
		if info, err := os.Stat(target); err == nil && !info.ModTime().Before(wb.ModTime) {
			c.logger.Debug("Skipping up to date file",
				slog.String("filename", wb.Name),
				slog.String("csv", target))
			return false, nil
		}
	}

	sheet, rows, err := dataprocessing.ReadWorkbookRows(wb.Path)
	if err != nil {
		return false, err
	}

	if err := c.writer.WriteCSV(target, exporter.WriteOptions{
		Records:   padRows(rows, c.skipRows),
		BOMPrefix: true,
	}); err != nil {
		return false, errors.NewExportError(target, err)
	}

	c.logger.Info("Converted workbook",
		slog.String("filename", wb.Name),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)),
		slog.String("csv", target))
	return true, nil
}

// padRows widens every row below the preamble to the header width, since
// trailing empty cells are not returned by the workbook reader.
func padRows(rows [][]string, skipRows int) [][]string {
	if len(rows) <= skipRows {
		return rows
	}
	width := 0
	for _, row := range rows[skipRows:] {
		if len(row) > width {
			width = len(row)
		}
	}

	padded := make([][]string, len(rows))
	for i, row := range rows {
		if i < skipRows || len(row) == width {
			padded[i] = row
			continue
		}
		full := make([]string, width)
		copy(full, row)
		padded[i] = full
	}
	return padded
}
