package merge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/logging"
	"github.com/JonMunkholm/regioncompare/internal/worldbank"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchWorkers bounds concurrent indicator downloads.
const DefaultFetchWorkers = 5

// ErrNoWorldBankData is returned when no year produced an extract.
var ErrNoWorldBankData = errors.New("no world bank data downloaded")

// ObservationSource supplies one indicator for every country in a year.
// *worldbank.Client satisfies it.
type ObservationSource interface {
	Observations(ctx context.Context, code string, year int) ([]worldbank.Observation, error)
}

// FetchOptions configures a World Bank download.
type FetchOptions struct {
	DirectoryPath string // countylink.json, fixes row order
	OutDir        string // receives worldbank_indicators_data_{year}.csv
	Years         int    // default: DefaultYears
	Workers       int    // default: DefaultFetchWorkers
	Indicators    []worldbank.Indicator

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// FetchResult summarizes a download run.
type FetchResult struct {
	Years    []int
	Files    []string
	Failed   []string // "code/year" pairs that could not be downloaded
	Duration time.Duration
}

// FetchWorldBank downloads the indicators for each recent year and writes one
// extract per year. A failed indicator is logged and left out of that year's
// extract; a year with no indicators at all is not written.
func FetchWorldBank(ctx context.Context, src ObservationSource, opts FetchOptions) (*FetchResult, error) {
	start := time.Now()
	log := logging.WithFields(ctx, "job", "fetch-worldbank")

	if opts.Years <= 0 {
		opts.Years = DefaultYears
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultFetchWorkers
	}
	if len(opts.Indicators) == 0 {
		opts.Indicators = worldbank.DefaultIndicators
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	directory, err := readDirectory(opts.DirectoryPath)
	if err != nil {
		return nil, err
	}
	countries := directoryNames(directory)

	res := &FetchResult{}
	for _, year := range recentYears(opts.Now().Year(), opts.Years) {
		pivot, failed, err := fetchYear(ctx, src, opts, year)
		if err != nil {
			return nil, err
		}
		res.Failed = append(res.Failed, failed...)
		if len(pivot.columns) == 0 {
			log.Warn("no indicators downloaded, extract not written", "year", year)
			continue
		}

		path := filepath.Join(opts.OutDir, WorldBankFile(year))
		if err := writeFile(path, func(f *os.File) error { return pivot.writeCSV(f, countries) }); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		res.Years = append(res.Years, year)
		res.Files = append(res.Files, path)
	}

	res.Duration = time.Since(start)
	if len(res.Files) == 0 {
		return res, ErrNoWorldBankData
	}
	log.Info("world bank fetch completed",
		"years", res.Years,
		"failed", len(res.Failed),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// fetchYear downloads every indicator for year with at most opts.Workers in
// flight. Only cancellation aborts the year.
func fetchYear(ctx context.Context, src ObservationSource, opts FetchOptions, year int) (*yearPivot, []string, error) {
	log := logging.WithFields(ctx, "job", "fetch-worldbank", "year", year)
	results := make([][]worldbank.Observation, len(opts.Indicators))

	var (
		mu     sync.Mutex
		failed []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, ind := range opts.Indicators {
		g.Go(func() error {
			obs, err := src.Observations(gctx, ind.Code, year)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Warn("indicator download failed", "indicator", ind.Code, "error", err)
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s/%d", ind.Code, year))
				mu.Unlock()
				return nil
			}
			results[i] = obs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Strings(failed)

	pivot := newYearPivot()
	for i, ind := range opts.Indicators {
		for _, o := range results[i] {
			pivot.add(o.Country, ind.Name, o.Value)
		}
	}
	return pivot, failed, nil
}

type meanCell struct {
	sum   float64
	count int
}

// yearPivot is the country by indicator table of one year. Repeated
// observations for a cell are averaged.
type yearPivot struct {
	columns []string
	cells   map[string]map[string]*meanCell
}

func newYearPivot() *yearPivot {
	return &yearPivot{cells: make(map[string]map[string]*meanCell)}
}

func (p *yearPivot) add(country, indicator string, v pgtype.Float8) {
	if !v.Valid {
		return
	}
	row, ok := p.cells[country]
	if !ok {
		row = make(map[string]*meanCell)
		p.cells[country] = row
	}
	cell, ok := row[indicator]
	if !ok {
		cell = &meanCell{}
		row[indicator] = cell
		p.addColumn(indicator)
	}
	cell.sum += v.Float64
	cell.count++
}

func (p *yearPivot) addColumn(name string) {
	i := sort.SearchStrings(p.columns, name)
	if i < len(p.columns) && p.columns[i] == name {
		return
	}
	p.columns = append(p.columns, "")
	copy(p.columns[i+1:], p.columns[i:])
	p.columns[i] = name
}

// writeCSV writes one row per directory country in directory order, with
// indicator columns sorted by name. Countries without data get empty cells.
func (p *yearPivot) writeCSV(f *os.File, countries []string) error {
	w := csv.NewWriter(f)
	if err := w.Write(append([]string{countryColumn}, p.columns...)); err != nil {
		return err
	}
	row := make([]string, len(p.columns)+1)
	for _, country := range countries {
		row[0] = country
		cells := p.cells[country]
		for i, col := range p.columns {
			row[i+1] = ""
			if c, ok := cells[col]; ok {
				row[i+1] = strconv.FormatFloat(c.sum/float64(c.count), 'f', -1, 64)
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// directoryNames lists the English country names in directory order, first
// occurrence only.
func directoryNames(dir core.Directory) []string {
	seen := make(map[string]bool)
	var names []string
	for _, region := range dir {
		for _, c := range region.Countries {
			if c.Name == "" || seen[c.Name] {
				continue
			}
			seen[c.Name] = true
			names = append(names, c.Name)
		}
	}
	return names
}
