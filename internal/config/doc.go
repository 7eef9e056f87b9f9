// Package config provides centralized configuration management for energyreport.
// It loads configuration from multiple sources, validates it, and resolves the
// directories the pipeline reads from and writes to.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command line flags (applied by the caller, highest priority)
//	2. Environment variables, including a .env file in the working directory
//	3. The YAML configuration file
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern ENERGY_<SECTION>_<FIELD>:
//
//	ENERGY_LOGGING_LEVEL=debug
//	ENERGY_PATHS_DATA_DIR=./data
//	ENERGY_ANALYSIS_COUNTRIES="United States,China,India,Brazil"
//	ENERGY_ANALYSIS_KEY_YEARS=1990,2000,2010,2020
//	ENERGY_CHARTS_FORMAT=svg
//	ENERGY_TELEMETRY_ENABLE_METRICS=true
//
// # Indicators
//
// The four analysed datasets are described by the Indicators catalog. Its
// order drives merge order, correlation column order and summary order.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := config.GetPaths(cfg.Paths)
package config
