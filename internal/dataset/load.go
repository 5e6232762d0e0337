package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"golang.org/x/sync/errgroup"
)

// LoadError reports which dataset failed to load. Startup treats it as fatal.
type LoadError struct {
	Dataset Name
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Dataset, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load fetches both datasets concurrently and returns a populated store.
// If either fetch or parse fails the other is cancelled and a *LoadError is
// returned.
func Load(ctx context.Context, src Source) (*core.Store, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var (
		directory core.Directory
		records   core.Records
	)

	g.Go(func() error {
		var err error
		directory, err = fetch(gctx, src, Directory, DecodeDirectory)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = fetch(gctx, src, Records, DecodeRecords)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	store := core.NewStore(directory, records)
	regions, recs := store.Stats()
	slog.Info("datasets loaded",
		"regions", regions,
		"records", recs,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return store, nil
}

func fetch[T any](ctx context.Context, src Source, name Name, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := src.Open(ctx, name)
	if err != nil {
		return zero, &LoadError{Dataset: name, Err: err}
	}
	defer rc.Close()

	v, err := decode(rc)
	if err != nil {
		return zero, &LoadError{Dataset: name, Err: err}
	}
	return v, nil
}
