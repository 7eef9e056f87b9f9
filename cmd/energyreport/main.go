package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"energyreport/internal/config"
	"energyreport/internal/errors"
	"energyreport/internal/infrastructure"
	"energyreport/internal/operations"
)

// shutdownTimeout bounds the flush of traces and metrics on exit.
const shutdownTimeout = 5 * time.Second

// cliOptions holds the command line overrides. Empty values keep whatever
// the configuration file and environment set.
type cliOptions struct {
	configFile string
	dataDir    string
	outDir     string
	countries  string
	format     string
	fill       string
	startYear  int
	endYear    int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if err != nil {
		if !stderrors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "energyreport: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func parseFlags(args []string) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "configuration file (defaults to config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.dataDir, "dir", "", "directory containing the indicator files")
	fs.StringVar(&opts.outDir, "out", "", "output directory for charts and reports")
	fs.StringVar(&opts.countries, "countries", "", "comma separated list of country names to analyse")
	fs.StringVar(&opts.format, "format", "", "chart format: png | svg | pdf")
	fs.StringVar(&opts.fill, "fill", "", "forward fill mode: rows | years | none")
	fs.IntVar(&opts.startYear, "start", 0, "first analysed year")
	fs.IntVar(&opts.endYear, "end", 0, "last analysed year")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

// apply overlays the command line onto cfg and validates the result.
func (o *cliOptions) apply(cfg *config.Config) error {
	if o.dataDir != "" {
		cfg.Paths.DataDir = o.dataDir
	}
	if o.outDir != "" {
		cfg.Paths.OutputDir = o.outDir
	}
	if o.countries != "" {
		var countries []string
		for _, c := range strings.Split(o.countries, ",") {
			if c = strings.TrimSpace(c); c != "" {
				countries = append(countries, c)
			}
		}
		cfg.Analysis.Countries = countries
	}
	if o.format != "" {
		cfg.Charts.Format = strings.ToLower(o.format)
	}
	if o.fill != "" {
		cfg.Analysis.FillMode = strings.ToLower(o.fill)
	}
	if o.startYear != 0 {
		cfg.Analysis.StartYear = o.startYear
	}
	if o.endYear != 0 {
		cfg.Analysis.EndYear = o.endYear
	}
	return cfg.Validate()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return err
		}
		return errors.NewConfigError("invalid command line", err)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return errors.NewConfigError("failed to load configuration", err)
	}
	if err := opts.apply(cfg); err != nil {
		return errors.NewConfigError("invalid command line options", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return errors.NewConfigError("failed to resolve paths", err)
	}

	cfg.Logging.FilePath = paths.ResolveFile(cfg.Logging.FilePath)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return errors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()
	if err := paths.EnsureDirectories(); err != nil {
		return errors.NewExportError(paths.OutputDir, err)
	}

	otelCfg := infrastructure.OTelConfigFromTelemetry(cfg.Telemetry)
	if otelCfg.TraceExporter == "file" {
		otelCfg.TraceFile = paths.ResolveFile(otelCfg.TraceFile)
	}
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return errors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return errors.NewConfigError("failed to create pipeline metrics", err)
	}

	pipelineOpts, err := operations.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	manager := operations.NewManager(operations.NewRegistry(), operations.NewConfig(), tracer, logger)
	if err := operations.RegisterPipeline(manager, operations.StepDeps{
		Options: pipelineOpts,
		Paths:   paths,
		Tracer:  tracer,
		Logger:  logger,
		Out:     stdout,
	}); err != nil {
		return err
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	logger.InfoContext(ctx, "Starting energy report",
		slog.String("version", config.AppVersion),
		slog.String("data_dir", paths.DataDir),
		slog.String("output_dir", paths.OutputDir),
		slog.Any("countries", cfg.Analysis.Countries),
		slog.Int("start_year", cfg.Analysis.StartYear),
		slog.Int("end_year", cfg.Analysis.EndYear))

	resp, runErr := manager.Execute(ctx, operations.OperationRequest{})

	if cfg.Telemetry.EnableMetrics {
		metricsFile := paths.ResolveFile(cfg.Telemetry.MetricsFile)
		if err := providers.WriteMetricsTextfile(metricsFile); err != nil {
			logger.WarnContext(ctx, "Failed to write metrics", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return runErr
	}

	charts, _ := operations.ContextValue[[]string](resp.State, operations.ContextKeyCharts)
	reports, _ := operations.ContextValue[[]string](resp.State, operations.ContextKeyReports)
	logger.InfoContext(ctx, "Energy report complete",
		slog.Duration("duration", resp.Duration),
		slog.Int("charts", len(charts)),
		slog.Int("reports", len(reports)))
	return nil
}

// exitCode maps a run error to the process status. Interrupts report 130
// like a shell would.
func exitCode(err error) int {
	switch {
	case err == nil, stderrors.Is(err, flag.ErrHelp):
		return errors.ExitOK
	case stderrors.Is(err, context.Canceled):
		return errors.ExitInterrupted
	case operations.GetErrorType(err) == operations.ErrorTypeCancellation:
		return errors.ExitInterrupted
	default:
		return errors.ExitCode(err)
	}
}
