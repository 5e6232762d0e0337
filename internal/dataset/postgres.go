package dataset

// postgres.go stores dataset documents in a single table:
//
//	CREATE TABLE IF NOT EXISTS datasets (
//	    name       text PRIMARY KEY,
//	    payload    jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
//
// The merge command publishes into it; the server reads from it when
// DATA_SOURCE=postgres.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used here.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS datasets (
	name       text PRIMARY KEY,
	payload    jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	selectPayloadSQL   = `SELECT payload FROM datasets WHERE name = $1`
	selectUpdatedAtSQL = `SELECT updated_at FROM datasets WHERE name = $1`
	upsertSQL          = `INSERT INTO datasets (name, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

// ErrDatasetNotFound is returned when the datasets table has no row for a name.
var ErrDatasetNotFound = errors.New("dataset not found")

// PGSource reads dataset documents from Postgres.
type PGSource struct {
	DB DBTX
}

// Open loads the payload of name.
func (s PGSource) Open(ctx context.Context, name Name) (io.ReadCloser, error) {
	var payload []byte
	if err := s.DB.QueryRow(ctx, selectPayloadSQL, string(name)).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return nil, fmt.Errorf("query dataset %s: %w", name, err)
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

// ModTime returns updated_at of name.
func (s PGSource) ModTime(ctx context.Context, name Name) (time.Time, error) {
	var updated time.Time
	if err := s.DB.QueryRow(ctx, selectUpdatedAtSQL, string(name)).Scan(&updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
		}
		return time.Time{}, fmt.Errorf("query dataset %s: %w", name, err)
	}
	return updated, nil
}

// EnsureSchema creates the datasets table if it does not exist.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create datasets table: %w", err)
	}
	return nil
}

// Publish upserts payload as the current document for name.
func Publish(ctx context.Context, db DBTX, name Name, payload []byte) error {
	if _, err := db.Exec(ctx, upsertSQL, string(name), payload); err != nil {
		return fmt.Errorf("publish dataset %s: %w", name, err)
	}
	return nil
}
