package merge

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/dataset"
	"github.com/JonMunkholm/regioncompare/internal/logging"
)

// DefaultYears is how many yearly World Bank extracts are consulted.
const DefaultYears = 3

// Options locates the inputs and outputs of a merge run.
type Options struct {
	DirectoryPath string // countylink.json
	CIAPath       string // country_data.json
	WorldBankDir  string // directory holding worldbank_indicators_data_{year}.csv
	JSONPath      string // merged_country_data.json
	CSVPath       string // merged_country_data.csv
	Years         int    // default: DefaultYears

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Result summarizes a merge run.
type Result struct {
	Regions   int
	Records   int
	Years     []int // World Bank years found, newest first
	CIAFound  int   // records matched in the CIA extract
	JSONPath  string
	CSVPath   string
	Duration  time.Duration
	Generated time.Time
}

// Merger builds the merged records dataset.
type Merger struct {
	opts Options
}

// New returns a Merger with defaults applied to opts.
func New(opts Options) *Merger {
	if opts.Years <= 0 {
		opts.Years = DefaultYears
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Merger{opts: opts}
}

// Merge reads the inputs and returns the merged dataset without writing it.
func (m *Merger) Merge(ctx context.Context) (Dataset, *Result, error) {
	start := time.Now()
	log := logging.WithFields(ctx, "job", "merge")

	directory, err := readDirectory(m.opts.DirectoryPath)
	if err != nil {
		return nil, nil, err
	}

	cia, err := readCIA(m.opts.CIAPath)
	if err != nil {
		return nil, nil, err
	}

	now := m.opts.Now()
	tables, err := loadWorldBank(ctx, m.opts.WorldBankDir, recentYears(now.Year(), m.opts.Years))
	if err != nil {
		return nil, nil, fmt.Errorf("load world bank data: %w", err)
	}
	if len(tables) == 0 {
		log.Warn("no world bank data found, merging directory and cia data only")
	}

	res := &Result{Regions: len(directory), Generated: now}
	for _, t := range tables {
		res.Years = append(res.Years, t.year)
	}

	ds := make(Dataset, 0, len(directory))
	for _, region := range directory {
		group := Group{Region: region.Name, Records: make([]Record, 0, len(region.Countries))}
		for _, c := range region.Countries {
			rec, matched := mergeCountry(region.Name, c, cia, tables)
			if matched {
				res.CIAFound++
			}
			group.Records = append(group.Records, rec)
		}
		ds = append(ds, group)
	}

	res.Records = ds.Len()
	res.Duration = time.Since(start)
	log.Info("merge completed",
		"regions", res.Regions,
		"records", res.Records,
		"cia_matched", res.CIAFound,
		"worldbank_years", res.Years,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return ds, res, nil
}

// Run merges and writes both outputs.
func (m *Merger) Run(ctx context.Context) (*Result, error) {
	ds, res, err := m.Merge(ctx)
	if err != nil {
		return nil, err
	}

	if m.opts.JSONPath != "" {
		if err := writeFile(m.opts.JSONPath, func(f *os.File) error { return WriteJSON(f, ds) }); err != nil {
			return nil, fmt.Errorf("write merged json: %w", err)
		}
		res.JSONPath = m.opts.JSONPath
	}
	if m.opts.CSVPath != "" {
		if err := writeFile(m.opts.CSVPath, func(f *os.File) error { return WriteCSV(f, ds) }); err != nil {
			return nil, fmt.Errorf("write merged csv: %w", err)
		}
		res.CSVPath = m.opts.CSVPath
	}
	return res, nil
}

// mergeCountry assembles one record. Field order: directory identity, CIA
// fields, World Bank indicators, coordinates.
func mergeCountry(region string, c core.Country, cia *ciaData, tables []*yearTable) (Record, bool) {
	rec := Record{
		{Key: "name", Value: c.Name},
		{Key: "chinese", Value: c.Chinese},
		{Key: "code", Value: c.Code},
		{Key: "url", Value: c.URL},
	}

	entry, matched := cia.find(region, c.Name)
	if matched {
		rec.set("capital", rawOrNil(entry.Capital))
		rec.set("area", rawOrNil(entry.Area))
		rec.set("population", rawOrNil(entry.Population))
	}

	if len(tables) > 0 {
		for _, indicator := range tables[0].indicators {
			for _, t := range tables {
				if v, ok := t.value(c.Name, indicator); ok {
					rec.set(indicator, v)
					break
				}
			}
		}
	}

	rec.set("lat", c.Lat)
	rec.set("lng", c.Lng)
	return rec, matched
}

func readDirectory(path string) (core.Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer f.Close()
	return dataset.DecodeDirectory(dataset.NewTextReader(f))
}

func readCIA(path string) (*ciaData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cia data: %w", err)
	}
	defer f.Close()
	return decodeCIA(dataset.NewTextReader(f))
}

// writeFile writes through a temp file in the same directory and renames it
// into place, so the server never reads a half-written dataset.
func writeFile(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(dirOf(path), ".merge-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
