package config

import (
	"fmt"
	"io"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "FIRMPANEL"

// Date parsing modes for FILING_DATE.
const (
	DateModeLenient = "lenient"
	DateModeStrict  = "strict"
)

// Config represents the complete application configuration
type Config struct {
	Sample  SampleConfig  `yaml:"sample" envconfig:"SAMPLE"`
	Files   FilesConfig   `yaml:"files" envconfig:"FILES"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Metrics MetricsConfig `yaml:"metrics" envconfig:"METRICS"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
}

// SampleConfig controls which filings make it into the panel
type SampleConfig struct {
	StartYear  int    `yaml:"start_year" envconfig:"START_YEAR" validate:"gte=1900,lte=2999"`
	EndYear    int    `yaml:"end_year" envconfig:"END_YEAR" validate:"gtefield=StartYear,lte=2999"`
	DateMode   string `yaml:"date_mode" envconfig:"DATE_MODE" validate:"oneof=lenient strict"`
	SampleRows int    `yaml:"sample_rows" envconfig:"SAMPLE_ROWS" validate:"gte=0,lte=1000"`
}

// FilesConfig contains input and output locations
type FilesConfig struct {
	Input      string `yaml:"input" envconfig:"INPUT" validate:"required,tabular_file"`
	Output     string `yaml:"output" envconfig:"OUTPUT"`
	XLSXOutput string `yaml:"xlsx_output" envconfig:"XLSX_OUTPUT" validate:"omitempty,xlsx_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// MetricsConfig controls the end-of-run metrics snapshot
type MetricsConfig struct {
	// TextfilePath, when set, receives the run metrics in Prometheus text
	// exposition format for a node_exporter textfile collector.
	TextfilePath string `yaml:"textfile_path" envconfig:"TEXTFILE_PATH"`
}

// TracingConfig controls per-stage tracing
type TracingConfig struct {
	Exporter    string `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=none stdout"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
}

// StrictDates reports whether FILING_DATE must be a valid calendar date.
func (s SampleConfig) StrictDates() bool {
	return s.DateMode == DateModeStrict
}

// Load builds the configuration from defaults, an optional YAML file and
// FIRMPANEL_* environment variables, in increasing order of precedence.
// An empty path skips the file; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without an environment variable keep their file/default value.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Usage writes the table of supported environment variables to out.
func Usage(out io.Writer) error {
	return envconfig.Usagef(EnvPrefix, Default(), out, envconfig.DefaultTableFormat)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Sample: SampleConfig{
			StartYear:  2019,
			EndYear:    2023,
			DateMode:   DateModeLenient,
			SampleRows: 5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/firmpanel.log",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "firmpanel",
		},
	}
}
