package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ciaEntry is one country of the factbook extract. Values are kept raw so
// whatever the downloader wrote is carried through unchanged.
type ciaEntry struct {
	Name       string          `json:"name"`
	Capital    json.RawMessage `json:"capital"`
	Area       json.RawMessage `json:"area"`
	Population json.RawMessage `json:"population"`
}

// ciaData indexes the factbook extract. A flat list is searched across all
// regions; a region-grouped document is searched within the country's region.
type ciaData struct {
	flat     map[string]ciaEntry
	byRegion map[string]map[string]ciaEntry
}

func decodeCIA(r io.Reader) (*ciaData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read cia data: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("decode cia data: empty document")
	}

	d := &ciaData{}
	switch raw[0] {
	case '[':
		var list []ciaEntry
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode cia data: %w", err)
		}
		d.flat = indexEntries(list)
	case '{':
		var grouped map[string][]ciaEntry
		if err := json.Unmarshal(raw, &grouped); err != nil {
			return nil, fmt.Errorf("decode cia data: %w", err)
		}
		d.byRegion = make(map[string]map[string]ciaEntry, len(grouped))
		for region, list := range grouped {
			d.byRegion[region] = indexEntries(list)
		}
	default:
		return nil, fmt.Errorf("decode cia data: unexpected document type %q", raw[0])
	}
	return d, nil
}

// indexEntries keeps the first entry for each name.
func indexEntries(list []ciaEntry) map[string]ciaEntry {
	m := make(map[string]ciaEntry, len(list))
	for _, e := range list {
		if _, dup := m[e.Name]; !dup {
			m[e.Name] = e
		}
	}
	return m
}

func (d *ciaData) find(region, name string) (ciaEntry, bool) {
	if d == nil {
		return ciaEntry{}, false
	}
	if d.flat != nil {
		e, ok := d.flat[name]
		return e, ok
	}
	e, ok := d.byRegion[region][name]
	return e, ok
}

func rawOrNil(raw json.RawMessage) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return raw
}
