package merge

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"path/filepath"
)

// RegionColumn is the column the CSV output adds to every row.
const RegionColumn = "region"

// utf8BOM marks the CSV as UTF-8 for spreadsheet applications.
const utf8BOM = "\ufeff"

// WriteJSON writes ds as indented, region-grouped JSON.
func WriteJSON(w io.Writer, ds Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

// WriteCSV writes ds flattened to one row per record. Columns are the union
// of record keys in first-seen order, with RegionColumn after each record's
// own keys. Missing values are empty.
func WriteCSV(w io.Writer, ds Dataset) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	columns := csvColumns(ds)
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	row := make([]string, len(columns))
	for _, g := range ds {
		for _, rec := range g.Records {
			for i, col := range columns {
				if col == RegionColumn {
					row[i] = g.Region
					continue
				}
				v, _ := rec.Get(col)
				row[i] = cellText(v)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvColumns(ds Dataset) []string {
	var columns []string
	seen := make(map[string]bool)
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			columns = append(columns, k)
		}
	}
	for _, g := range ds {
		for _, rec := range g.Records {
			for _, f := range rec {
				add(f.Key)
			}
			add(RegionColumn)
		}
	}
	return columns
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
