package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/regioncompare/internal/config"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/JonMunkholm/regioncompare/internal/session"
	"github.com/JonMunkholm/regioncompare/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		slog.Error("failed to open data source", "source", cfg.Data.Source, "error", err)
		os.Exit(1)
	}
	defer closeSource()

	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
	store, err := dataset.Load(loadCtx, src)
	cancelLoad()
	if err != nil {
		var le *dataset.LoadError
		if errors.As(err, &le) {
			slog.Error("failed to load dataset", "dataset", le.Dataset, "error", le.Err)
		} else {
			slog.Error("failed to load datasets", "error", err)
		}
		os.Exit(1)
	}

	sessions := session.NewManager(store, session.Config{
		TTL:           cfg.Session.TTL,
		SweepInterval: cfg.Session.SweepInterval,
		MaxSessions:   cfg.Session.MaxSessions,
	})
	go sessions.Run(ctx)

	availability := dataset.Availability{Source: src, CSVPath: cfg.Data.CSVPath}
	server := web.NewServer(store, sessions, availability, cfg)

	go func() {
		<-ctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openSource returns the configured dataset source and a close func.
func openSource(ctx context.Context, cfg *config.Config) (dataset.Source, func(), error) {
	if !cfg.UsesPostgres() {
		return dataset.FileSource{
			DirectoryPath: cfg.Data.DirectoryPath,
			RecordsPath:   cfg.Data.RecordsPath,
		}, func() {}, nil
	}

	pool, err := connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return dataset.PGSource{DB: pool}, pool.Close, nil
}

// connect opens and pings a pgx pool using the configured pool limits.
func connect(ctx context.Context, dbc config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbc.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(dbc.MaxConns)
	poolConfig.MinConns = int32(dbc.MinConns)
	poolConfig.MaxConnLifetime = dbc.MaxConnLifetime
	poolConfig.MaxConnIdleTime = dbc.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(dbc.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}
