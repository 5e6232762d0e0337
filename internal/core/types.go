// Package core provides the comparison logic for regional country statistics.
// This package has no UI dependencies and can be used by any frontend.
package core

import "github.com/jackc/pgx/v5/pgtype"

// SelectAllValue is the checkbox value the UI uses for "select every country
// in this region". It is a control value and never a selection member.
const SelectAllValue = "全部"

// CountryColumnLabel heads the leading column of every comparison table.
const CountryColumnLabel = "国家/指标"

// NotAvailable is the cell text for values that are missing or not numeric.
const NotAvailable = "N/A"

// Country is one entry of a region in the directory dataset.
type Country struct {
	Name    string  `json:"name"`    // English name: "Japan"
	Chinese string  `json:"chinese"` // Localized display name and record key: "日本"
	Code    string  `json:"code,omitempty"`
	URL     string  `json:"url,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// Region is a named group of countries. Countries are in canonical display order.
type Region struct {
	Name      string
	Countries []Country
}

// Directory is the region directory in file order.
type Directory []Region

// CountryRecord is the merged statistics for one country.
//
// Values holds one entry per indicator key present in the source. A key that
// is present but null or non-numeric maps to an invalid pgtype.Float8; a key
// that is missing from the source has no entry at all.
type CountryRecord struct {
	Name    string
	Chinese string
	Code    string
	Capital string
	Values  map[string]pgtype.Float8
}

// Value returns the raw value for key and whether the key exists in the record.
func (r *CountryRecord) Value(key string) (pgtype.Float8, bool) {
	if r == nil || r.Values == nil {
		return pgtype.Float8{}, false
	}
	v, ok := r.Values[key]
	return v, ok
}

// RecordGroup holds the merged records for one region, in file order.
type RecordGroup struct {
	Region  string
	Records []CountryRecord
}

// Records is the merged records dataset grouped by region.
type Records []RecordGroup

// RecordFinder looks up a merged record by localized country name.
// Satisfied by *Store.
type RecordFinder interface {
	FindRecord(name string) (*CountryRecord, bool)
}

// Cell is one formatted value of a comparison table.
type Cell struct {
	Key       string `json:"key"`
	Text      string `json:"text"`
	Available bool   `json:"available"` // false is the NotAvailable marker
}

// Row is one country of a comparison table.
type Row struct {
	Country string `json:"country"`
	Cells   []Cell `json:"cells"`
}

// TableModel is a comparison table ready for the view layer.
// Header[0] is CountryColumnLabel followed by one label per indicator column.
type TableModel struct {
	Header []string `json:"header"`
	Keys   []string `json:"keys"`
	Rows   []Row    `json:"rows"`
}

// Records returns the table as string rows including the header, the shape
// encoding/csv writers expect.
func (t *TableModel) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Header...))
	for _, row := range t.Rows {
		line := make([]string, 0, len(row.Cells)+1)
		line = append(line, row.Country)
		for _, c := range row.Cells {
			line = append(line, c.Text)
		}
		out = append(out, line)
	}
	return out
}
