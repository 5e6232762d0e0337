package core

// convert.go turns loosely typed dataset values into pgtype.Float8.
//
// The merged records come from scrapers and spreadsheets, so a value can be a
// JSON number, null, a numeric string ("1,234", "$5.2") or junk. Anything
// that does not parse as a finite number becomes an invalid Float8, which
// formats as NotAvailable.

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ToFloat8 converts a string to pgtype.Float8.
// Thousands separators, currency symbols and accounting parentheses are
// accepted. Returns invalid for empty or non-numeric input.
func ToFloat8(s string) pgtype.Float8 {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Float8{}
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return pgtype.Float8{}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// JSONFloat8 converts one raw JSON value to pgtype.Float8.
// Numbers are taken as is, strings go through ToFloat8, and null or any
// other JSON type is invalid.
func JSONFloat8(raw json.RawMessage) pgtype.Float8 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return pgtype.Float8{}
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return pgtype.Float8{}
		}
		return ToFloat8(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f pgtype.Float8
		if err := f.UnmarshalJSON(raw); err != nil {
			return pgtype.Float8{}
		}
		return f
	default:
		return pgtype.Float8{}
	}
}

// JSONString decodes a raw JSON string value, returning "" for anything else.
func JSONString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
