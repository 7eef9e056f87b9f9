package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "ENERGY"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console stderr file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// AnalysisConfig selects what the pipeline analyses.
type AnalysisConfig struct {
	Countries []string `yaml:"countries" envconfig:"COUNTRIES" validate:"required,min=1,dive,required"`
	StartYear int      `yaml:"start_year" envconfig:"START_YEAR" validate:"gte=1960,lte=2100"`
	EndYear   int      `yaml:"end_year" envconfig:"END_YEAR" validate:"gte=1960,lte=2100,gtefield=StartYear"`
	KeyYears  []int    `yaml:"key_years" envconfig:"KEY_YEARS" validate:"required,min=1"`
	FillMode  string   `yaml:"fill_mode" envconfig:"FILL_MODE" validate:"oneof=rows years none"`
	SkipRows  int      `yaml:"skip_rows" envconfig:"SKIP_ROWS" validate:"gte=0"`
}

// ChartsConfig controls rendered figures.
type ChartsConfig struct {
	Format        string  `yaml:"format" envconfig:"FORMAT" validate:"oneof=png svg pdf"`
	WidthInches   float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES" validate:"gt=0"`
	HeightInches  float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES" validate:"gt=0"`
	HeatmapWidth  float64 `yaml:"heatmap_width_inches" envconfig:"HEATMAP_WIDTH_INCHES" validate:"gt=0"`
	HeatmapHeight float64 `yaml:"heatmap_height_inches" envconfig:"HEATMAP_HEIGHT_INCHES" validate:"gt=0"`
}

// TelemetryConfig toggles tracing and the metrics textfile.
type TelemetryConfig struct {
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceFile     string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsFile   string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration. Sources are applied in order of
// precedence: defaults, the YAML file, then the environment (a .env file in
// the working directory is loaded into the environment first).
//
// An empty configFile means the well-known locations are searched.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the struct
// tags cannot express.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.FilePath == "" && (c.Logging.Output == "file" || c.Logging.Output == "both") {
		c.Logging.FilePath = "logs/energyreport.log"
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	for _, y := range c.Analysis.KeyYears {
		if y < c.Analysis.StartYear || y > c.Analysis.EndYear {
			return fmt.Errorf("key year %d outside analysed range %d-%d", y, c.Analysis.StartYear, c.Analysis.EndYear)
		}
	}

	if c.Telemetry.EnableMetrics && c.Telemetry.MetricsFile == "" {
		return fmt.Errorf("metrics enabled but no metrics file configured")
	}

	return nil
}

// Years returns every year of the analysed range in ascending order.
func (a AnalysisConfig) Years() []int {
	years := make([]int, 0, a.EndYear-a.StartYear+1)
	for y := a.StartYear; y <= a.EndYear; y++ {
		years = append(years, y)
	}
	return years
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/energyreport.log",
		},
		Paths: PathsConfig{
			DataDir:   ".",
			OutputDir: "output",
		},
		Analysis: AnalysisConfig{
			Countries: []string{"United States", "China", "India", "Brazil"},
			StartYear: 1990,
			EndYear:   2020,
			KeyYears:  []int{1990, 2000, 2010, 2020},
			FillMode:  "rows",
			SkipRows:  DefaultSkipRows,
		},
		Charts: ChartsConfig{
			Format:        "png",
			WidthInches:   14,
			HeightInches:  8,
			HeatmapWidth:  18,
			HeatmapHeight: 12,
		},
		Telemetry: TelemetryConfig{
			EnableTracing: false,
			TraceFile:     "logs/traces.json",
			SampleRatio:   1.0,
			EnableMetrics: false,
			MetricsFile:   "logs/energyreport.prom",
		},
	}
}
