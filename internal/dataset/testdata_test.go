package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

const directoryJSON = `{
  "西欧": {"countries": [
    {"name": "France", "chinese": "法国", "code": "FR", "lat": 46.2, "lng": 2.2},
    {"name": "Germany", "chinese": "德国", "code": "DE"}
  ]},
  "东亚": {"countries": [
    {"name": "Japan", "chinese": "日本", "code": "JP"},
    {"name": "China", "chinese": "中国", "code": "CN"}
  ]}
}`

const recordsJSON = `{
  "西欧": [
    {"name": "France", "chinese": "法国", "code": "FR", "capital": "Paris",
     "area": 643801, "population": "68,000,000", "GDP (current US$)": null,
     "lat": 46.2, "lng": 2.2}
  ],
  "东亚": [
    {"name": "Japan", "chinese": "日本", "capital": "Tokyo", "population": 125000000},
    {"name": "China", "chinese": "中国", "area": "n/a"}
  ]
}`

// writeDatasets writes both fixtures into a temp dir and returns a source.
func writeDatasets(t *testing.T, directory, records string) FileSource {
	t.Helper()
	dir := t.TempDir()
	src := FileSource{
		DirectoryPath: filepath.Join(dir, "countylink.json"),
		RecordsPath:   filepath.Join(dir, "merged_country_data.json"),
	}
	if directory != "" {
		if err := os.WriteFile(src.DirectoryPath, []byte(directory), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if records != "" {
		if err := os.WriteFile(src.RecordsPath, []byte(records), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return src
}
