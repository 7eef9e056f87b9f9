package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for every file the pipeline reads or writes
type Paths struct {
	BaseDir    string
	DataDir    string
	OutputDir  string
	ChartsDir  string
	ReportsDir string
	LogsDir    string
}

// GetPaths resolves the configured directories against the working
// directory. Relative paths stay relative to where the tool is run, which is
// where the indicator CSV files are expected.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPaths(wd, cfg), nil
}

// NewPaths resolves cfg against baseDir.
func NewPaths(baseDir string, cfg PathsConfig) *Paths {
	resolve := func(p string) string {
		if p == "" {
			return baseDir
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(baseDir, p)
	}

	outputDir := resolve(cfg.OutputDir)
	return &Paths{
		BaseDir:    baseDir,
		DataDir:    resolve(cfg.DataDir),
		OutputDir:  outputDir,
		ChartsDir:  filepath.Join(outputDir, ChartsDirName),
		ReportsDir: filepath.Join(outputDir, ReportsDirName),
		LogsDir:    filepath.Join(baseDir, "logs"),
	}
}

// EnsureDirectories creates all output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.OutputDir,
		p.ChartsDir,
		p.ReportsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetDatasetPath returns the path of an indicator file in the data directory
func (p *Paths) GetDatasetPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetChartPath returns the chart file for name with the given format extension
func (p *Paths) GetChartPath(name, format string) string {
	return filepath.Join(p.ChartsDir, name+"."+strings.TrimPrefix(format, "."))
}

// GetReportPath returns the path of a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path of a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ResolveFile makes a relative file path absolute against the base directory.
func (p *Paths) ResolveFile(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Debug("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("charts_dir", p.ChartsDir),
		slog.String("reports_dir", p.ReportsDir))
}
