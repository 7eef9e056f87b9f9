package operations

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"energyreport/internal/config"
	"energyreport/internal/dataprocessing"
	"energyreport/internal/errors"
)

// DefaultLoadConcurrency bounds how many indicator files are parsed at once.
const DefaultLoadConcurrency = 4

// PipelineOptions is the part of the configuration the steps act on.
type PipelineOptions struct {
	Indicators []config.Indicator
	Countries  []string
	Years      []int
	KeyYears   []int
	FillMode   dataprocessing.FillMode
	SkipRows   int

	ChartFormat   string
	ChartWidth    float64 // inches
	ChartHeight   float64 // inches
	HeatmapWidth  float64 // inches
	HeatmapHeight float64 // inches

	LoadConcurrency int
}

// OptionsFromConfig maps a validated configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) (PipelineOptions, error) {
	mode, err := dataprocessing.ParseFillMode(cfg.Analysis.FillMode)
	if err != nil {
		return PipelineOptions{}, errors.NewConfigError("invalid fill mode", err)
	}

	return PipelineOptions{
		Indicators:      config.Indicators,
		Countries:       cfg.Analysis.Countries,
		Years:           cfg.Analysis.Years(),
		KeyYears:        cfg.Analysis.KeyYears,
		FillMode:        mode,
		SkipRows:        cfg.Analysis.SkipRows,
		ChartFormat:     cfg.Charts.Format,
		ChartWidth:      cfg.Charts.WidthInches,
		ChartHeight:     cfg.Charts.HeightInches,
		HeatmapWidth:    cfg.Charts.HeatmapWidth,
		HeatmapHeight:   cfg.Charts.HeatmapHeight,
		LoadConcurrency: DefaultLoadConcurrency,
	}, nil
}

// IndicatorKeys returns the merge suffixes in pipeline order.
func (o PipelineOptions) IndicatorKeys() []string {
	keys := make([]string, len(o.Indicators))
	for i, ind := range o.Indicators {
		keys[i] = ind.Key
	}
	return keys
}

// StepDeps are the collaborators shared by the pipeline steps.
type StepDeps struct {
	Options PipelineOptions
	Paths   *config.Paths
	Tracer  *OperationTracer
	Logger  *slog.Logger

	// Out receives the printed summary tables
	Out io.Writer
}

func (d StepDeps) withDefaults() StepDeps {
	if d.Tracer == nil {
		d.Tracer, _ = NewOperationTracer(nil)
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Options.LoadConcurrency <= 0 {
		d.Options.LoadConcurrency = DefaultLoadConcurrency
	}
	return d
}

// NewPipeline builds the analysis steps in registration order.
func NewPipeline(deps StepDeps) []Step {
	deps = deps.withDefaults()
	return []Step{
		NewLoadStage(deps),
		NewCleanStage(deps),
		NewPlotStage(deps),
		NewMergeStage(deps),
		NewCorrelateStage(deps),
		NewSummarizeStage(deps),
		NewExportStage(deps),
	}
}

// RegisterPipeline registers every analysis step with the manager.
func RegisterPipeline(m *Manager, deps StepDeps) error {
	for _, step := range NewPipeline(deps) {
		if err := m.RegisterStage(step); err != nil {
			return fmt.Errorf("failed to register step %s: %w", step.ID(), err)
		}
	}
	return m.GetRegistry().ValidateDependencies()
}
