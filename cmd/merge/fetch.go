package main

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/config"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/JonMunkholm/regioncompare/internal/merge"
	"github.com/JonMunkholm/regioncompare/internal/worldbank"
	"github.com/spf13/cobra"
)

const fetchExample = `  # Download the last three years into MERGE_WORLDBANK_DIR
  merge fetch-worldbank

  # Refresh every two days into a custom directory
  merge fetch-worldbank --out-dir data --every 48h`

// NewFetchCmd returns the fetch-worldbank command.
func NewFetchCmd() *cobra.Command {
	var (
		opts    merge.FetchOptions
		baseURL string
		timeout time.Duration
		every   time.Duration
	)

	cmd := &cobra.Command{
		Use:          "fetch-worldbank",
		Short:        "Download the yearly World Bank indicator extracts",
		Example:      fetchExample,
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
			if !flags.Changed("out-dir") {
				opts.OutDir = cfg.Merge.WorldBankDir
			}
			if !flags.Changed("years") {
				opts.Years = cfg.Merge.Years
			}
			if !flags.Changed("workers") {
				opts.Workers = cfg.Merge.FetchWorkers
			}
			if !flags.Changed("url") {
				baseURL = cfg.Merge.WorldBankURL
			}
			if !flags.Changed("timeout") {
				timeout = cfg.Merge.FetchTimeout
			}
			if !flags.Changed("every") {
				every = cfg.Merge.FetchEvery
			}
			if every < 0 {
				return fmt.Errorf("--every must be >= 0, got %s", every)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := worldbank.NewClient(baseURL, timeout)
			run := func(ctx context.Context) error {
				res, err := merge.FetchWorldBank(ctx, client, opts)
				if err != nil {
					return fmt.Errorf("fetch world bank data: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d extracts (years: %v, failed downloads: %d)\n",
					len(res.Files), res.Years, len(res.Failed))
				return nil
			}
			if every == 0 {
				return run(cmd.Context())
			}
			merge.Every(cmd.Context(), "fetch-worldbank", every, run)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.DirectoryPath, "directory", "", "country directory JSON (default DATA_DIRECTORY_PATH)")
	f.StringVar(&opts.OutDir, "out-dir", "", "directory for the yearly CSVs (default MERGE_WORLDBANK_DIR)")
	f.IntVar(&opts.Years, "years", merge.DefaultYears, "number of past years to download")
	f.IntVar(&opts.Workers, "workers", merge.DefaultFetchWorkers, "concurrent indicator downloads (default WORLDBANK_FETCH_WORKERS)")
	f.StringVar(&baseURL, "url", worldbank.DefaultBaseURL, "World Bank API base URL (default WORLDBANK_API_URL)")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout (default WORLDBANK_FETCH_TIMEOUT)")
	f.DurationVar(&every, "every", 0, "re-run on this interval until interrupted, 0 runs once (default WORLDBANK_FETCH_EVERY)")

	return cmd
}
