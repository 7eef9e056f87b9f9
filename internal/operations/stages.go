package operations

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"energyreport/internal/charts"
	"energyreport/internal/config"
	"energyreport/internal/dataprocessing"
	"energyreport/internal/errors"
	"energyreport/internal/exporter"
	"energyreport/internal/files"
	"energyreport/internal/validation"
)

// TimeSeriesChartName is the chart file name, without extension, of an
// indicator's time series.
func TimeSeriesChartName(key string) string {
	return key + "_timeseries"
}

// reportProgress updates the step's progress after done of total items
func reportProgress(state *OperationState, stepID string, done, total int, message string) {
	if stepState := state.GetStage(stepID); stepState != nil && total > 0 {
		stepState.UpdateProgress(float64(done)*100/float64(total), message)
	}
}

func setMetadata(state *OperationState, stepID, key string, value interface{}) {
	if stepState := state.GetStage(stepID); stepState != nil {
		stepState.SetMetadata(key, value)
	}
}

// LoadStage parses every indicator file concurrently
type LoadStage struct {
	BaseStage
	deps      StepDeps
	discovery *files.Discovery
	validator *validation.FileValidator
}

// NewLoadStage creates the load step
func NewLoadStage(deps StepDeps) *LoadStage {
	deps = deps.withDefaults()
	return &LoadStage{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad, nil),
		deps:      deps,
		discovery: files.NewDiscovery(deps.Paths.DataDir),
		validator: validation.NewFileValidator(deps.Logger),
	}
}

// Validate checks the data directory before any file is opened
func (s *LoadStage) Validate(state *OperationState) error {
	if err := s.BaseStage.Validate(state); err != nil {
		return err
	}
	if len(s.deps.Options.Indicators) == 0 {
		return fmt.Errorf("no indicators configured")
	}
	return s.validator.ValidateInputDirectory(s.deps.Paths.DataDir, "*")
}

// Execute loads the datasets. Results are stored by indicator key, so the
// completion order of the readers does not matter.
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	indicators := s.deps.Options.Indicators
	tables := make([]*dataprocessing.Table, len(indicators))
	sources := make([]string, len(indicators))
	opts := dataprocessing.ParseOptions{SkipRows: s.deps.Options.SkipRows}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.Options.LoadConcurrency)
	for i, ind := range indicators {
		i, ind := i, ind
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			dctx, span := s.deps.Tracer.TraceDataset(gctx, "load", ind.Key)
			defer span.End()

			dataset, err := s.discovery.FindDataset(ind.FileName)
			if err != nil {
				span.RecordError(err)
				return err
			}
			table, err := dataprocessing.ParseFile(dataset.Path, opts)
			if err != nil {
				span.RecordError(err)
				return err
			}

			tables[i] = table
			sources[i] = dataset.Path
			s.deps.Tracer.RecordDatasetLoaded(dctx, ind.Key, len(table.Rows))
			s.deps.Logger.InfoContext(dctx, "dataset_loaded",
				slog.String("indicator", ind.Key),
				slog.String("file", dataset.Path),
				slog.Bool("workbook", dataset.IsWorkbook()),
				slog.Int("rows", len(table.Rows)),
				slog.Int("columns", len(table.Header)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	byKey := make(map[string]*dataprocessing.Table, len(indicators))
	sourceByKey := make(map[string]string, len(indicators))
	rows := 0
	for i, ind := range indicators {
		byKey[ind.Key] = tables[i]
		sourceByKey[ind.Key] = sources[i]
		rows += len(tables[i].Rows)
	}

	state.SetContext(ContextKeyTables, byKey)
	state.SetContext(ContextKeySources, sourceByKey)
	setMetadata(state, s.ID(), "datasets", len(indicators))
	setMetadata(state, s.ID(), "rows", rows)
	return nil
}

// CleanStage drops unnamed columns, forward fills and coerces each table
type CleanStage struct {
	BaseStage
	deps      StepDeps
	processor *dataprocessing.ForwardFillProcessor
}

// NewCleanStage creates the clean step
func NewCleanStage(deps StepDeps) *CleanStage {
	deps = deps.withDefaults()
	return &CleanStage{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean, []string{StepIDLoad}, ContextKeyTables),
		deps:      deps,
		processor: dataprocessing.NewForwardFillProcessor(dataprocessing.ProcessingOptions{
			FillMode: deps.Options.FillMode,
			Years:    deps.Options.Years,
		}, deps.Logger),
	}
}

// Execute cleans the tables in indicator order
func (s *CleanStage) Execute(ctx context.Context, state *OperationState) error {
	tables, err := ContextValue[map[string]*dataprocessing.Table](state, ContextKeyTables)
	if err != nil {
		return err
	}

	indicators := s.deps.Options.Indicators
	cleaned := make(map[string]*dataprocessing.Indicator, len(indicators))
	stats := make(map[string]dataprocessing.CleanStats, len(indicators))
	filled := 0

	for i, ind := range indicators {
		if err := ctx.Err(); err != nil {
			return err
		}

		table, ok := tables[ind.Key]
		if !ok {
			return fmt.Errorf("no table loaded for indicator %s", ind.Key)
		}

		result, st, err := s.processor.Process(ind.Key, table)
		if err != nil {
			return err
		}

		cleaned[ind.Key] = result
		stats[ind.Key] = st
		filled += st.CellsFilled
		s.deps.Tracer.RecordCellsFilled(ctx, ind.Key, st.CellsFilled)
		s.deps.Logger.InfoContext(ctx, "dataset_cleaned",
			slog.String("indicator", ind.Key),
			slog.Int("rows", st.Rows),
			slog.Int("columns_dropped", len(st.ColumnsDropped)),
			slog.Int("cells_filled", st.CellsFilled),
			slog.Int("cells_coerced", st.CellsCoerced))
		reportProgress(state, s.ID(), i+1, len(indicators), ind.Key)
	}

	state.SetContext(ContextKeyIndicators, cleaned)
	state.SetContext(ContextKeyCleanStats, stats)
	setMetadata(state, s.ID(), "cells_filled", filled)
	return nil
}

// PlotStage renders one time series chart per indicator
type PlotStage struct {
	BaseStage
	deps      StepDeps
	validator *validation.FileValidator
}

// NewPlotStage creates the plot step
func NewPlotStage(deps StepDeps) *PlotStage {
	deps = deps.withDefaults()
	return &PlotStage{
		BaseStage: NewBaseStage(StepIDPlot, StepNamePlot, []string{StepIDClean}, ContextKeyIndicators),
		deps:      deps,
		validator: validation.NewFileValidator(deps.Logger),
	}
}

// Validate checks that the charts directory is writable
func (s *PlotStage) Validate(state *OperationState) error {
	if err := s.BaseStage.Validate(state); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(s.deps.Paths.ChartsDir)
}

// Execute draws the selected countries of each indicator. An indicator with
// no matching country is skipped with a warning.
func (s *PlotStage) Execute(ctx context.Context, state *OperationState) error {
	indicators, err := ContextValue[map[string]*dataprocessing.Indicator](state, ContextKeyIndicators)
	if err != nil {
		return err
	}

	opts := s.deps.Options
	var rendered []string
	for i, ind := range opts.Indicators {
		if err := ctx.Err(); err != nil {
			return err
		}

		set := dataprocessing.TimeSeries(indicators[ind.Key], opts.Countries)
		path := s.deps.Paths.GetChartPath(TimeSeriesChartName(ind.Key), opts.ChartFormat)
		err := charts.LineChart(set, charts.LineOptions{
			Title:       ind.ChartTitle,
			XLabel:      config.TimeSeriesXLabel,
			YLabel:      ind.YLabel,
			LegendTitle: config.TimeSeriesLegendTitle,
			Width:       opts.ChartWidth,
			Height:      opts.ChartHeight,
		}, path)
		switch {
		case stderrors.Is(err, charts.ErrNoSeries):
			s.deps.Logger.WarnContext(ctx, "chart_skipped",
				slog.String("indicator", ind.Key),
				slog.String("reason", "no selected country in dataset"),
				slog.Any("countries", opts.Countries))
		case err != nil:
			return err
		default:
			rendered = append(rendered, path)
			s.deps.Tracer.RecordChartRendered(ctx, "timeseries")
			s.deps.Logger.InfoContext(ctx, "chart_rendered",
				slog.String("indicator", ind.Key),
				slog.String("file", path),
				slog.Int("series", len(set.Series)),
				slog.Int("years", len(set.Years)))
		}
		reportProgress(state, s.ID(), i+1, len(opts.Indicators), ind.Key)
	}

	state.SetContext(ContextKeyCharts, rendered)
	setMetadata(state, s.ID(), "charts", len(rendered))
	return nil
}

// MergeStage inner joins the cleaned indicators on country
type MergeStage struct {
	BaseStage
	deps StepDeps
}

// NewMergeStage creates the merge step
func NewMergeStage(deps StepDeps) *MergeStage {
	return &MergeStage{
		BaseStage: NewBaseStage(StepIDMerge, StepNameMerge, []string{StepIDClean}, ContextKeyIndicators),
		deps:      deps.withDefaults(),
	}
}

// Execute merges in indicator order
func (s *MergeStage) Execute(ctx context.Context, state *OperationState) error {
	indicators, err := ContextValue[map[string]*dataprocessing.Indicator](state, ContextKeyIndicators)
	if err != nil {
		return err
	}

	ordered := make([]*dataprocessing.Indicator, 0, len(s.deps.Options.Indicators))
	for _, ind := range s.deps.Options.Indicators {
		cleaned, ok := indicators[ind.Key]
		if !ok {
			return fmt.Errorf("no cleaned data for indicator %s", ind.Key)
		}
		ordered = append(ordered, cleaned)
	}

	merged, err := dataprocessing.Merge(ordered...)
	if err != nil {
		return err
	}
	if len(merged.Rows) == 0 {
		s.deps.Logger.WarnContext(ctx, "merge_empty",
			slog.String("reason", "no country present in every dataset"))
	}

	s.deps.Logger.InfoContext(ctx, "indicators_merged",
		slog.Int("rows", len(merged.Rows)),
		slog.Int("columns", len(merged.Columns)))
	state.SetContext(ContextKeyMerged, merged)
	setMetadata(state, s.ID(), "rows", len(merged.Rows))
	return nil
}

// CorrelateStage correlates the key-year columns and draws the heatmap
type CorrelateStage struct {
	BaseStage
	deps StepDeps
}

// NewCorrelateStage creates the correlate step
func NewCorrelateStage(deps StepDeps) *CorrelateStage {
	return &CorrelateStage{
		BaseStage: NewBaseStage(StepIDCorrelate, StepNameCorrelate, []string{StepIDMerge}, ContextKeyMerged),
		deps:      deps.withDefaults(),
	}
}

// Execute computes the correlation matrix and renders it
func (s *CorrelateStage) Execute(ctx context.Context, state *OperationState) error {
	merged, err := ContextValue[*dataprocessing.Merged](state, ContextKeyMerged)
	if err != nil {
		return err
	}

	opts := s.deps.Options
	columns := dataprocessing.KeyColumns(opts.IndicatorKeys(), opts.KeyYears)
	matrix, err := dataprocessing.Correlate(merged, columns)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyCorrelation, matrix)

	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.deps.Paths.GetChartPath(config.HeatmapBaseName, opts.ChartFormat)
	if err := charts.Heatmap(matrix, charts.HeatmapOptions{
		Title:  config.HeatmapTitle,
		Width:  opts.HeatmapWidth,
		Height: opts.HeatmapHeight,
	}, path); err != nil {
		return err
	}

	s.deps.Tracer.RecordChartRendered(ctx, "heatmap")
	s.deps.Logger.InfoContext(ctx, "heatmap_rendered",
		slog.String("file", path),
		slog.Int("columns", len(columns)),
		slog.Int("observations", len(merged.Rows)))

	rendered, _ := ContextValue[[]string](state, ContextKeyCharts)
	state.SetContext(ContextKeyCharts, append(rendered, path))
	return nil
}

// SummarizeStage describes each indicator at the key years and prints the
// tables
type SummarizeStage struct {
	BaseStage
	deps StepDeps
}

// NewSummarizeStage creates the summarize step
func NewSummarizeStage(deps StepDeps) *SummarizeStage {
	return &SummarizeStage{
		BaseStage: NewBaseStage(StepIDSummarize, StepNameSummarize, []string{StepIDClean}, ContextKeyIndicators),
		deps:      deps.withDefaults(),
	}
}

// Execute prints one summary table per indicator, in indicator order
func (s *SummarizeStage) Execute(ctx context.Context, state *OperationState) error {
	indicators, err := ContextValue[map[string]*dataprocessing.Indicator](state, ContextKeyIndicators)
	if err != nil {
		return err
	}

	opts := s.deps.Options
	summaries := make([]*dataprocessing.Summary, 0, len(opts.Indicators))
	for i, ind := range opts.Indicators {
		if err := ctx.Err(); err != nil {
			return err
		}

		summary := dataprocessing.Describe(indicators[ind.Key], opts.KeyYears, ind.SummaryTitle)
		if err := exporter.PrintSummary(s.deps.Out, summary); err != nil {
			return fmt.Errorf("failed to print summary for %s: %w", ind.Key, err)
		}
		summaries = append(summaries, summary)
		reportProgress(state, s.ID(), i+1, len(opts.Indicators), ind.Key)
	}

	state.SetContext(ContextKeySummaries, summaries)
	return nil
}

// ExportStage writes the report CSV files and the workbook
type ExportStage struct {
	BaseStage
	deps      StepDeps
	reports   *exporter.ReportExporter
	validator *validation.FileValidator
}

// NewExportStage creates the export step
func NewExportStage(deps StepDeps) *ExportStage {
	deps = deps.withDefaults()
	return &ExportStage{
		BaseStage: NewBaseStage(StepIDExport, StepNameExport,
			[]string{StepIDMerge, StepIDCorrelate, StepIDSummarize},
			ContextKeyMerged, ContextKeyCorrelation, ContextKeySummaries),
		deps:      deps,
		reports:   exporter.NewReportExporter(deps.Paths),
		validator: validation.NewFileValidator(deps.Logger),
	}
}

// Validate checks that the reports directory is writable
func (s *ExportStage) Validate(state *OperationState) error {
	if err := s.BaseStage.Validate(state); err != nil {
		return err
	}
	return s.validator.ValidateOutputDirectory(s.deps.Paths.ReportsDir)
}

// Execute writes the summaries, the correlation matrix, the combined table
// and the workbook
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	merged, err := ContextValue[*dataprocessing.Merged](state, ContextKeyMerged)
	if err != nil {
		return err
	}
	matrix, err := ContextValue[*dataprocessing.CorrelationMatrix](state, ContextKeyCorrelation)
	if err != nil {
		return err
	}
	summaries, err := ContextValue[[]*dataprocessing.Summary](state, ContextKeySummaries)
	if err != nil {
		return err
	}

	paths := s.deps.Paths
	var written []string

	for _, summary := range summaries {
		name := exporter.SummaryFileName(summary.Key)
		if err := s.reports.ExportSummary(summary, name); err != nil {
			return errors.NewExportError(paths.GetReportPath(name), err)
		}
		written = append(written, paths.GetReportPath(name))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.reports.ExportCorrelation(matrix, config.CorrelationCSVName); err != nil {
		return errors.NewExportError(paths.GetReportPath(config.CorrelationCSVName), err)
	}
	written = append(written, paths.GetReportPath(config.CorrelationCSVName))

	rows, err := s.reports.ExportCombined(merged, config.CombinedCSVName)
	if err != nil {
		return errors.NewExportError(paths.GetReportPath(config.CombinedCSVName), err)
	}
	written = append(written, paths.GetReportPath(config.CombinedCSVName))

	workbookPath := paths.GetReportPath(config.WorkbookName)
	if err := s.writeWorkbook(summaries, matrix, workbookPath); err != nil {
		return errors.NewExportError(workbookPath, err)
	}
	written = append(written, workbookPath)

	s.deps.Logger.InfoContext(ctx, "reports_exported",
		slog.Int("files", len(written)),
		slog.Int("combined_rows", rows),
		slog.String("directory", paths.ReportsDir))
	state.SetContext(ContextKeyReports, written)
	setMetadata(state, s.ID(), "files", len(written))
	return nil
}

func (s *ExportStage) writeWorkbook(summaries []*dataprocessing.Summary, matrix *dataprocessing.CorrelationMatrix, path string) error {
	wb, err := exporter.NewWorkbookExporter()
	if err != nil {
		return err
	}
	for _, summary := range summaries {
		if err := wb.AddSummary(summary); err != nil {
			wb.Close()
			return err
		}
	}
	if err := wb.AddCorrelation(matrix); err != nil {
		wb.Close()
		return err
	}
	return wb.Save(path)
}
