package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"firmpanel/internal/config"
	"firmpanel/internal/errors"
	"firmpanel/internal/infrastructure"
	"firmpanel/internal/services"
)

type buildFlags struct {
	input       string
	output      string
	xlsx        string
	startYear   int
	endYear     int
	strictDates bool
	sample      int
	metricsFile string
	trace       bool
	logLevel    string
}

func newBuildCommand(configPath *string) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the firm-year panel",
		Long: `Build the firm-year panel and write it next to the input, or to --output.

Examples:
  # 2019-2023 panel next to the input file
  firmpanel build --input data/filings.csv

  # custom range with an XLSX copy named after the CSV output
  firmpanel build --input data/filings.csv --start-year 2010 --end-year 2015 --xlsx

  # reject FILING_DATE values that are not real calendar dates
  firmpanel build --input data/filings.xlsx --strict-dates`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return errors.NewConfigError("failed to load configuration", err)
			}
			flags.apply(cmd, cfg)
			return runBuild(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.input, "input", "i", "", "filing-metadata table (.csv or .xlsx)")
	f.StringVarP(&flags.output, "output", "o", "", "panel CSV path (default: next to the input)")
	f.StringVar(&flags.xlsx, "xlsx", "", "also write the panel as XLSX; without a value, mirrors the CSV name")
	f.Lookup("xlsx").NoOptDefVal = ".xlsx"
	f.IntVar(&flags.startYear, "start-year", 0, "first fiscal year to keep (default 2019)")
	f.IntVar(&flags.endYear, "end-year", 0, "last fiscal year to keep (default 2023)")
	f.BoolVar(&flags.strictDates, "strict-dates", false, "require FILING_DATE to be a valid YYYYMMDD date")
	f.IntVar(&flags.sample, "sample", 0, "number of panel rows to print (default 5)")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")
	f.BoolVar(&flags.trace, "trace", false, "print stage spans to stderr")
	f.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration
func (b *buildFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("input") {
		cfg.Files.Input = b.input
	}
	if changed("output") {
		cfg.Files.Output = b.output
	}
	if changed("xlsx") {
		cfg.Files.XLSXOutput = b.xlsx
	}
	if changed("start-year") {
		cfg.Sample.StartYear = b.startYear
	}
	if changed("end-year") {
		cfg.Sample.EndYear = b.endYear
	}
	if changed("strict-dates") {
		cfg.Sample.DateMode = config.DateModeLenient
		if b.strictDates {
			cfg.Sample.DateMode = config.DateModeStrict
		}
	}
	if changed("sample") {
		cfg.Sample.SampleRows = b.sample
	}
	if changed("metrics-file") {
		cfg.Metrics.TextfilePath = b.metricsFile
	}
	if changed("trace") {
		cfg.Tracing.Exporter = "none"
		if b.trace {
			cfg.Tracing.Exporter = "stdout"
		}
	}
	if changed("log-level") {
		cfg.Logging.Level = b.logLevel
	}
}

func runBuild(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return errors.NewConfigError("failed to initialize logger", err)
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Tracing, cmd.ErrOrStderr(), logger)
	if err != nil {
		return errors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx := infrastructure.WithRunID(cmd.Context(), infrastructure.GenerateRunID())

	summary, err := services.NewPanelService(cfg, telemetry, logger).Run(ctx)
	if err != nil {
		return err
	}

	return services.NewReportWriter(cmd.OutOrStdout()).Write(summary)
}
