package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"firmpanel/internal/config"
	"firmpanel/pkg/contracts"
)

// newRootCommand assembles the firmpanel command tree
func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "firmpanel",
		Short: "Build a firm-year panel of annual report filings",
		Long: `firmpanel reads a filing-metadata table (CSV or XLSX) and reduces it to one
annual report per firm and fiscal year.

Filings are kept when their year falls in the configured range, their form
type is a 10-K variant and their SIC code is outside the financial (6000-6999)
and utility (4900-4999) ranges. When a firm files several times in one year,
the latest filing is kept.

Configuration is read from defaults, an optional YAML file (--config) and
FIRMPANEL_* environment variables; command-line flags override all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       contracts.Version,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	root.AddCommand(
		newBuildCommand(&configPath),
		newVersionCommand(),
		newEnvCommand(),
	)
	return root
}

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetVersionString())
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables firmpanel reads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Usage(cmd.OutOrStdout())
		},
	}
}
