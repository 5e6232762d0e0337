package merge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"golang.org/x/sync/errgroup"
)

// countryColumn is the World Bank extract's country name column.
const countryColumn = "country"

// yearTable is one yearly World Bank extract.
type yearTable struct {
	year       int
	indicators []string
	values     map[string]map[string]float64
}

// value returns the indicator value for country when it is present and numeric.
func (t *yearTable) value(country, indicator string) (float64, bool) {
	row, ok := t.values[country]
	if !ok {
		return 0, false
	}
	v, ok := row[indicator]
	return v, ok
}

// WorldBankFile returns the file name of the extract for year.
func WorldBankFile(year int) string {
	return fmt.Sprintf("worldbank_indicators_data_%d.csv", year)
}

func decodeYearTable(year int, r io.Reader) (*yearTable, error) {
	cr := csv.NewReader(dataset.NewTextReader(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	countryIdx := -1
	t := &yearTable{year: year, values: make(map[string]map[string]float64)}
	for i, h := range header {
		if h == countryColumn {
			countryIdx = i
			continue
		}
		t.indicators = append(t.indicators, h)
	}
	if countryIdx < 0 {
		return nil, fmt.Errorf("missing %q column", countryColumn)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if countryIdx >= len(rec) {
			continue
		}
		country := rec[countryIdx]
		if _, seen := t.values[country]; seen {
			continue
		}
		row := make(map[string]float64)
		for i, h := range header {
			if i == countryIdx || i >= len(rec) {
				continue
			}
			if v := core.ToFloat8(rec[i]); v.Valid {
				row[h] = v.Float64
			}
		}
		t.values[country] = row
	}
	return t, nil
}

// loadWorldBank reads the extracts for years concurrently. Missing files are
// skipped. Tables are returned newest first.
func loadWorldBank(ctx context.Context, dir string, years []int) ([]*yearTable, error) {
	tables := make([]*yearTable, len(years))
	g, gctx := errgroup.WithContext(ctx)

	for i, year := range years {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, WorldBankFile(year))
			f, err := os.Open(path)
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			defer f.Close()

			t, err := decodeYearTable(year, f)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := tables[:0]
	for _, t := range tables {
		if t != nil {
			found = append(found, t)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].year > found[j].year })
	return found, nil
}

// recentYears returns the n years before current, oldest first.
func recentYears(current, n int) []int {
	years := make([]int, 0, n)
	for y := current - n; y < current; y++ {
		years = append(years, y)
	}
	return years
}
