// Package config provides configuration management for firmpanel.
// It handles loading configuration from multiple sources and resolving
// default output locations.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command line flags (applied by cmd/firmpanel, highest priority)
//	2. Environment variables
//	3. A YAML configuration file passed with --config
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FIRMPANEL_* for namespacing:
//
//	FIRMPANEL_SAMPLE_START_YEAR=2019
//	FIRMPANEL_SAMPLE_END_YEAR=2023
//	FIRMPANEL_SAMPLE_DATE_MODE=strict
//	FIRMPANEL_FILES_INPUT=/data/Loughran-McDonald_10X_Summaries_1993-2024.csv
//	FIRMPANEL_LOGGING_LEVEL=debug
//
// Run "firmpanel env" for the full table.
//
// # Validation
//
// Load does not validate. Callers apply their overrides first and then run
// validation.ValidateConfig on the final value.
package config
