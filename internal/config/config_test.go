package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into an empty directory so no stray config.yaml
// or .env file is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no env vars or file",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, ".", cfg.Paths.DataDir)
				assert.Equal(t, []string{"United States", "China", "India", "Brazil"}, cfg.Analysis.Countries)
				assert.Equal(t, 1990, cfg.Analysis.StartYear)
				assert.Equal(t, 2020, cfg.Analysis.EndYear)
				assert.Equal(t, []int{1990, 2000, 2010, 2020}, cfg.Analysis.KeyYears)
				assert.Equal(t, "rows", cfg.Analysis.FillMode)
				assert.Equal(t, 4, cfg.Analysis.SkipRows)
				assert.Equal(t, "png", cfg.Charts.Format)
			},
		},
		{
			name: "file overrides defaults and keeps unspecified keys",
			file: "analysis:\n  countries: [Germany, France]\n  fill_mode: years\ncharts:\n  format: svg\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"Germany", "France"}, cfg.Analysis.Countries)
				assert.Equal(t, "years", cfg.Analysis.FillMode)
				assert.Equal(t, "svg", cfg.Charts.Format)
				assert.Equal(t, 1990, cfg.Analysis.StartYear)
			},
		},
		{
			name: "env takes precedence over file",
			file: "logging:\n  level: warn\n",
			env: map[string]string{
				"ENERGY_LOGGING_LEVEL":       "debug",
				"ENERGY_ANALYSIS_COUNTRIES":  "Kenya,Ghana",
				"ENERGY_ANALYSIS_KEY_YEARS":  "1995,2015",
				"ENERGY_CHARTS_WIDTH_INCHES": "10",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, []string{"Kenya", "Ghana"}, cfg.Analysis.Countries)
				assert.Equal(t, []int{1995, 2015}, cfg.Analysis.KeyYears)
				assert.Equal(t, 10.0, cfg.Charts.WidthInches)
			},
		},
		{
			name:    "invalid fill mode",
			env:     map[string]string{"ENERGY_ANALYSIS_FILL_MODE": "backward"},
			wantErr: true,
		},
		{
			name:    "invalid chart format in file",
			file:    "charts:\n  format: jpeg\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "analysis: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := chdirTemp(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			configFile := ""
			if tt.file != "" {
				configFile = filepath.Join(dir, "test-config.yaml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.file), 0644))
			}

			cfg, err := Load(configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_DiscoversConfigYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("paths:\n  data_dir: datasets\n"), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "datasets", cfg.Paths.DataDir)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ENERGY_PATHS_OUTPUT_DIR=dotenv-out\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ENERGY_PATHS_OUTPUT_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-out", cfg.Paths.OutputDir)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "default is valid", mutate: func(*Config) {}},
		{
			name:    "key year outside range",
			mutate:  func(c *Config) { c.Analysis.KeyYears = []int{1980} },
			wantErr: "key year 1980",
		},
		{
			name:    "end before start",
			mutate:  func(c *Config) { c.Analysis.StartYear, c.Analysis.EndYear = 2000, 1999 },
			wantErr: "gtefield",
		},
		{
			name:    "no countries",
			mutate:  func(c *Config) { c.Analysis.Countries = nil },
			wantErr: "Countries",
		},
		{
			name:    "blank country",
			mutate:  func(c *Config) { c.Analysis.Countries = []string{"China", ""} },
			wantErr: "Countries[1]",
		},
		{
			name: "metrics without file",
			mutate: func(c *Config) {
				c.Telemetry.EnableMetrics = true
				c.Telemetry.MetricsFile = ""
			},
			wantErr: "metrics file",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "Level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ValidateNormalizesLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "DEBUG"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestAnalysisConfig_Years(t *testing.T) {
	a := AnalysisConfig{StartYear: 2018, EndYear: 2020}
	assert.Equal(t, []int{2018, 2019, 2020}, a.Years())
}

func TestIndicatorByKey(t *testing.T) {
	ind, ok := IndicatorByKey("co2")
	require.True(t, ok)
	assert.Equal(t, "CO2 Emissions (Metric Tons per Capita).csv", ind.FileName)

	_, ok = IndicatorByKey("gdp")
	assert.False(t, ok)

	keys := make([]string, 0, len(Indicators))
	for _, ind := range Indicators {
		keys = append(keys, ind.Key)
	}
	assert.Equal(t, []string{"access", "co2", "electric", "energy"}, keys)
}
