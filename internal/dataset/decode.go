package dataset

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// recordMetaKeys are record fields that are not indicator values.
var recordMetaKeys = map[string]bool{
	"name":    true,
	"chinese": true,
	"code":    true,
	"url":     true,
	"capital": true,
	"lat":     true,
	"lng":     true,
	"region":  true,
}

// DecodeDirectory parses dataset A, keeping region order.
//
//	{"东亚": {"countries": [{"name": "Japan", "chinese": "日本", ...}]}, ...}
func DecodeDirectory(r io.Reader) (core.Directory, error) {
	var dir core.Directory
	err := walkObject(json.NewDecoder(r), func(region string, dec *json.Decoder) error {
		var body struct {
			Countries []core.Country `json:"countries"`
		}
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("region %q: %w", region, err)
		}
		dir = append(dir, core.Region{Name: region, Countries: body.Countries})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	return dir, nil
}

// DecodeRecords parses dataset B, keeping region and record order.
//
//	{"东亚": [{"chinese": "日本", "population": 125000000, ...}], ...}
func DecodeRecords(r io.Reader) (core.Records, error) {
	var recs core.Records
	err := walkObject(json.NewDecoder(r), func(region string, dec *json.Decoder) error {
		var raw []map[string]json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("region %q: %w", region, err)
		}
		group := core.RecordGroup{Region: region, Records: make([]core.CountryRecord, 0, len(raw))}
		for _, fields := range raw {
			group.Records = append(group.Records, toRecord(fields))
		}
		recs = append(recs, group)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recs, nil
}

func toRecord(fields map[string]json.RawMessage) core.CountryRecord {
	rec := core.CountryRecord{
		Name:    core.JSONString(fields["name"]),
		Chinese: core.JSONString(fields["chinese"]),
		Code:    core.JSONString(fields["code"]),
		Capital: core.JSONString(fields["capital"]),
		Values:  make(map[string]pgtype.Float8, len(fields)),
	}
	for k, v := range fields {
		if recordMetaKeys[k] {
			continue
		}
		rec.Values[k] = core.JSONFloat8(v)
	}
	return rec
}

// walkObject iterates the top-level object of dec in document order, calling
// fn with each key. fn must consume exactly one value from dec.
func walkObject(dec *json.Decoder, fn func(key string, dec *json.Decoder) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
