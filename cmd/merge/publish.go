package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/config"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

const publishExample = `  # Publish the files named by DATA_DIRECTORY_PATH and DATA_RECORDS_PATH
  DATABASE_URL=postgres://localhost/regioncompare merge publish`

// NewPublishCmd returns the publish command.
func NewPublishCmd() *cobra.Command {
	var (
		directoryPath string
		recordsPath   string
		timeout       time.Duration
	)

	cmd := &cobra.Command{
		Use:          "publish",
		Short:        "Upload the directory and merged records to Postgres",
		Example:      publishExample,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required for publish")
			}
			if directoryPath == "" {
				directoryPath = cfg.Data.DirectoryPath
			}
			if recordsPath == "" {
				recordsPath = cfg.Data.RecordsPath
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return publish(ctx, cfg.Database.URL, map[dataset.Name]string{
				dataset.Directory: directoryPath,
				dataset.Records:   recordsPath,
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&directoryPath, "directory", "", "country directory JSON (default DATA_DIRECTORY_PATH)")
	f.StringVar(&recordsPath, "records", "", "merged records JSON (default DATA_RECORDS_PATH)")
	f.DurationVar(&timeout, "timeout", time.Minute, "overall publish timeout")

	return cmd
}

// publish validates each document, then upserts all of them in one
// transaction so the server never sees a directory without its records.
func publish(ctx context.Context, dbURL string, docs map[dataset.Name]string) error {
	payloads := make(map[dataset.Name][]byte, len(docs))
	for name, path := range docs {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := validate(name, b); err != nil {
			return err
		}
		payloads[name] = b
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	if err := dataset.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for name, b := range payloads {
			if err := dataset.Publish(ctx, tx, name, b); err != nil {
				return err
			}
			slog.Info("dataset published", "name", name, "bytes", len(b))
		}
		return nil
	})
}

// validate parses a document with the loader's decoder before upload.
func validate(name dataset.Name, b []byte) error {
	var err error
	switch name {
	case dataset.Directory:
		_, err = dataset.DecodeDirectory(bytes.NewReader(b))
	case dataset.Records:
		_, err = dataset.DecodeRecords(bytes.NewReader(b))
	}
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	return nil
}
