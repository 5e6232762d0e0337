package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/config"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/JonMunkholm/regioncompare/internal/merge"
	"github.com/spf13/cobra"
)

const runExample = `  # Merge using paths from the environment / .env
  merge run

  # Override inputs and outputs
  merge run --cia data/country_data.json --worldbank-dir data --out-json out.json --out-csv out.csv

  # Keep running and re-merge every 7h12m
  merge run --every 7h12m`

// NewRunCmd returns the run command.
func NewRunCmd() *cobra.Command {
	var (
		opts  merge.Options
		noCSV bool
		every time.Duration
	)

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Merge the source datasets into JSON and CSV",
		Example:      runExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			flags := cmd.Flags()
			if !flags.Changed("directory") {
				opts.DirectoryPath = cfg.Data.DirectoryPath
			}
			if !flags.Changed("cia") {
				opts.CIAPath = cfg.Merge.CIAPath
			}
			if !flags.Changed("worldbank-dir") {
				opts.WorldBankDir = cfg.Merge.WorldBankDir
			}
			if !flags.Changed("years") {
				opts.Years = cfg.Merge.Years
			}
			if !flags.Changed("out-json") {
				opts.JSONPath = cfg.Data.RecordsPath
			}
			if !flags.Changed("out-csv") {
				opts.CSVPath = cfg.Data.CSVPath
			}
			if !flags.Changed("every") {
				every = cfg.Merge.Every
			}
			if every < 0 {
				return fmt.Errorf("--every must be >= 0, got %s", every)
			}
			if noCSV {
				opts.CSVPath = ""
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := merge.New(opts)
			run := func(ctx context.Context) error {
				res, err := m.Run(ctx)
				if err != nil {
					return fmt.Errorf("merge: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "merged %d records in %d regions (world bank years: %v)\n",
					res.Records, res.Regions, res.Years)
				return nil
			}
			if every == 0 {
				return run(cmd.Context())
			}
			merge.Every(cmd.Context(), "merge", every, run)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.DirectoryPath, "directory", "", "country directory JSON (default DATA_DIRECTORY_PATH)")
	f.StringVar(&opts.CIAPath, "cia", "", "CIA factbook extract JSON (default MERGE_CIA_PATH)")
	f.StringVar(&opts.WorldBankDir, "worldbank-dir", "", "directory of yearly World Bank CSVs (default MERGE_WORLDBANK_DIR)")
	f.IntVar(&opts.Years, "years", merge.DefaultYears, "number of past years to consult")
	f.StringVar(&opts.JSONPath, "out-json", "", "merged JSON output (default DATA_RECORDS_PATH)")
	f.StringVar(&opts.CSVPath, "out-csv", "", "merged CSV output (default DATA_CSV_PATH)")
	f.BoolVar(&noCSV, "no-csv", false, "skip the CSV output")
	f.DurationVar(&every, "every", 0, "re-run on this interval until interrupted, 0 runs once (default MERGE_EVERY)")

	return cmd
}
