package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/worldbank"
	"github.com/jackc/pgx/v5/pgtype"
)

type fakeSource struct {
	mu   sync.Mutex
	data map[string][]worldbank.Observation
	errs map[string]error

	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *fakeSource) Observations(ctx context.Context, code string, year int) ([]worldbank.Observation, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[code]; err != nil {
		return nil, err
	}
	return s.data[code], nil
}

func obs(country string, v float64) worldbank.Observation {
	return worldbank.Observation{Country: country, Value: pgtype.Float8{Float64: v, Valid: true}}
}

var fetchIndicators = []worldbank.Indicator{
	{Code: "GROWTH", Name: "GDP growth (annual %)"},
	{Code: "GDP", Name: "GDP (current US$)"},
	{Code: "DEATH", Name: "Death rate, crude (per 1,000 people)"},
}

func fetchFixture(t *testing.T) (fixture, FetchOptions) {
	t.Helper()
	fx := newFixture(t, testCIAList, nil)
	return fx, FetchOptions{
		DirectoryPath: fx.opts.DirectoryPath,
		OutDir:        fx.dir,
		Years:         1,
		Indicators:    fetchIndicators,
		Now:           fx.opts.Now,
	}
}

func TestFetchWorldBank_WritesExtract(t *testing.T) {
	fx, opts := fetchFixture(t)
	src := &fakeSource{
		data: map[string][]worldbank.Observation{
			"GROWTH": {
				obs("China", 5.2),
				{Country: "Japan"},
				obs("Germany", 1.0),
			},
			"GDP": {
				obs("Japan", 4.2e12),
				obs("Japan", 4.4e12),
				obs("France", 3e12),
			},
		},
		errs: map[string]error{"DEATH": errors.New("connection reset")},
	}

	res, err := FetchWorldBank(context.Background(), src, opts)
	if err != nil {
		t.Fatalf("FetchWorldBank() error = %v", err)
	}

	path := filepath.Join(fx.dir, WorldBankFile(2025))
	if !reflect.DeepEqual(res.Files, []string{path}) {
		t.Errorf("Files = %v, want [%s]", res.Files, path)
	}
	if !reflect.DeepEqual(res.Years, []int{2025}) {
		t.Errorf("Years = %v, want [2025]", res.Years)
	}
	if !reflect.DeepEqual(res.Failed, []string{"DEATH/2025"}) {
		t.Errorf("Failed = %v, want [DEATH/2025]", res.Failed)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "country,GDP (current US$),GDP growth (annual %)\n" +
		"Japan,4300000000000,\n" +
		"China,,5.2\n" +
		"France,3000000000000,\n"
	if string(got) != want {
		t.Errorf("extract =\n%s\nwant\n%s", got, want)
	}
}

func TestFetchWorldBank_FeedsMerge(t *testing.T) {
	fx, opts := fetchFixture(t)
	src := &fakeSource{data: map[string][]worldbank.Observation{
		"GDP": {obs("Japan", 4.2e12)},
	}}

	if _, err := FetchWorldBank(context.Background(), src, opts); err != nil {
		t.Fatalf("FetchWorldBank() error = %v", err)
	}

	ds, res, err := New(fx.opts).Merge(context.Background())
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if !reflect.DeepEqual(res.Years, []int{2025}) {
		t.Errorf("merge Years = %v, want [2025]", res.Years)
	}
	v, ok := findRecord(t, ds, "东亚", "Japan").Get("GDP (current US$)")
	if !ok || v != 4.2e12 {
		t.Errorf("Japan GDP = %v (%v), want 4.2e12", v, ok)
	}
}

func TestFetchWorldBank_NothingDownloaded(t *testing.T) {
	fx, opts := fetchFixture(t)
	boom := errors.New("unavailable")
	src := &fakeSource{errs: map[string]error{"GROWTH": boom, "GDP": boom, "DEATH": boom}}

	res, err := FetchWorldBank(context.Background(), src, opts)
	if !errors.Is(err, ErrNoWorldBankData) {
		t.Fatalf("FetchWorldBank() error = %v, want %v", err, ErrNoWorldBankData)
	}
	if len(res.Failed) != 3 {
		t.Errorf("len(Failed) = %d, want 3", len(res.Failed))
	}
	if _, err := os.Stat(filepath.Join(fx.dir, WorldBankFile(2025))); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("extract written despite no data: %v", err)
	}
}

func TestFetchWorldBank_Cancelled(t *testing.T) {
	_, opts := fetchFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FetchWorldBank(ctx, &fakeSource{}, opts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchWorldBank() error = %v, want %v", err, context.Canceled)
	}
}

func TestFetchWorldBank_WorkerLimit(t *testing.T) {
	_, opts := fetchFixture(t)
	opts.Workers = 2
	opts.Indicators = nil
	for _, code := range []string{"A", "B", "C", "D", "E", "F"} {
		opts.Indicators = append(opts.Indicators, worldbank.Indicator{Code: code, Name: code})
	}
	src := &fakeSource{
		delay: 10 * time.Millisecond,
		data:  map[string][]worldbank.Observation{"A": {obs("Japan", 1)}},
	}

	if _, err := FetchWorldBank(context.Background(), src, opts); err != nil {
		t.Fatalf("FetchWorldBank() error = %v", err)
	}
	if got := src.maxSeen.Load(); got > 2 {
		t.Errorf("max concurrent downloads = %d, want <= 2", got)
	}
}

func TestFetchWorldBank_MissingDirectory(t *testing.T) {
	_, opts := fetchFixture(t)
	opts.DirectoryPath = filepath.Join(t.TempDir(), "missing.json")

	if _, err := FetchWorldBank(context.Background(), &fakeSource{}, opts); err == nil {
		t.Error("FetchWorldBank() error = nil, want error for missing directory")
	}
}

func TestYearPivot_ColumnsSorted(t *testing.T) {
	p := newYearPivot()
	for _, name := range []string{"b", "a", "c", "a"} {
		p.add("X", name, pgtype.Float8{Float64: 1, Valid: true})
	}
	p.add("X", "skipped", pgtype.Float8{})

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(p.columns, want) {
		t.Errorf("columns = %v, want %v", p.columns, want)
	}
}

func TestDirectoryNames(t *testing.T) {
	dir, err := readDirectory(filepath.Join(newFixture(t, testCIAList, nil).dir, "countylink.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := directoryNames(dir), []string{"Japan", "China", "France"}; !reflect.DeepEqual(got, want) {
		t.Errorf("directoryNames() = %v, want %v", got, want)
	}
}
