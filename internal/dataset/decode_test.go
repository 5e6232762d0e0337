package dataset

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodeDirectory_KeepsOrder(t *testing.T) {
	dir, err := DecodeDirectory(strings.NewReader(directoryJSON))
	if err != nil {
		t.Fatalf("DecodeDirectory() error = %v", err)
	}

	var regions []string
	for _, r := range dir {
		regions = append(regions, r.Name)
	}
	if want := []string{"西欧", "东亚"}; !reflect.DeepEqual(regions, want) {
		t.Errorf("regions = %v, want %v", regions, want)
	}

	if len(dir[1].Countries) != 2 || dir[1].Countries[0].Chinese != "日本" {
		t.Errorf("东亚 countries = %+v", dir[1].Countries)
	}
	if dir[0].Countries[0].Lat != 46.2 {
		t.Errorf("France lat = %v, want 46.2", dir[0].Countries[0].Lat)
	}
}

func TestDecodeRecords(t *testing.T) {
	recs, err := DecodeRecords(strings.NewReader(recordsJSON))
	if err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}
	if len(recs) != 2 || recs[0].Region != "西欧" || recs[1].Region != "东亚" {
		t.Fatalf("groups = %+v", recs)
	}

	fr := recs[0].Records[0]
	if fr.Chinese != "法国" || fr.Capital != "Paris" || fr.Code != "FR" {
		t.Errorf("France meta = %+v", fr)
	}
	if v, ok := fr.Value("area"); !ok || !v.Valid || v.Float64 != 643801 {
		t.Errorf("France area = %+v, %v", v, ok)
	}
	if v, ok := fr.Value("population"); !ok || !v.Valid || v.Float64 != 68000000 {
		t.Errorf("France population = %+v, %v", v, ok)
	}
	if v, ok := fr.Value("GDP (current US$)"); !ok || v.Valid {
		t.Errorf("France GDP = %+v, %v, want present but invalid", v, ok)
	}
	for _, meta := range []string{"lat", "lng", "capital", "name"} {
		if _, ok := fr.Value(meta); ok {
			t.Errorf("meta key %q stored as a value", meta)
		}
	}

	cn := recs[1].Records[1]
	if v, ok := cn.Value("area"); !ok || v.Valid {
		t.Errorf("China area = %+v, %v, want present but invalid", v, ok)
	}
	if _, ok := cn.Value("population"); ok {
		t.Error("China population present, want absent")
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not an object", `[1, 2]`},
		{"truncated", `{"东亚": {"countries": [`},
		{"wrong region shape", `{"东亚": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDirectory(strings.NewReader(tt.in)); err == nil {
				t.Error("DecodeDirectory() expected error")
			}
			if _, err := DecodeRecords(strings.NewReader(tt.in)); err == nil {
				t.Error("DecodeRecords() expected error")
			}
		})
	}
}

func TestNewTextReader(t *testing.T) {
	in := "\ufeff{\"东亚\": {\"countries\": []}}"
	dir, err := DecodeDirectory(NewTextReader(strings.NewReader(in)))
	if err != nil {
		t.Fatalf("DecodeDirectory() with BOM error = %v", err)
	}
	if len(dir) != 1 || dir[0].Name != "东亚" {
		t.Errorf("dir = %+v", dir)
	}
}
