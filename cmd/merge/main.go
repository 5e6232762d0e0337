package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	cmdName   = "merge"
	shortDesc = "Build and publish the merged country dataset."
	longDesc  = `Build and publish the merged country dataset.

merge fetch-worldbank downloads the yearly World Bank indicator extracts.
merge run combines the country directory, the CIA factbook extract and the
most recent World Bank extracts into merged_country_data.json and .csv.
merge publish uploads the directory and merged records to Postgres so the
server can run with DATA_SOURCE=postgres.
`
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	cmd := &cobra.Command{
		Use:           cmdName,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewPublishCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		stop()
		os.Exit(1)
	}
}
