package merge

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Field is one key/value pair of a merged record.
// Value is a string, float64, json.RawMessage or nil.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered merged record.
type Record []Field

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (r *Record) set(key string, value any) {
	for i := range *r {
		if (*r)[i].Key == key {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Key: key, Value: value})
}

// MarshalJSON writes the fields in order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Group holds the merged records of one region.
type Group struct {
	Region  string
	Records []Record
}

// Dataset is the merged output, in directory region order.
type Dataset []Group

// MarshalJSON writes {"region": [records...], ...} in order.
func (d Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, g.Region); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		records := g.Records
		if records == nil {
			records = []Record{}
		}
		if err := writeJSON(&buf, records); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Len returns the number of records across all regions.
func (d Dataset) Len() int {
	n := 0
	for _, g := range d {
		n += len(g.Records)
	}
	return n
}

func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// cellText renders a field value for the CSV output. Missing values are empty.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.RawMessage:
		raw := bytes.TrimSpace(x)
		if len(raw) == 0 || string(raw) == "null" {
			return ""
		}
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				return s
			}
		}
		return string(raw)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
