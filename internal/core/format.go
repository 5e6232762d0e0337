package core

// format.go renders indicator values for display.
//
// Magnitudes are tiered on the absolute value, sign preserved:
//
//	|v| >= 1e8        v/1e8 fixed to places, suffix " 億"
//	1e6 <= |v| < 1e8  v/1e6 fixed to places, suffix " 百万"
//	1e3 <= |v| < 1e6  en-US grouping, at most places fraction digits
//	|v| < 1e3         fixed to places
//
// Missing, NaN and infinite values render as NotAvailable.

import (
	"math"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultDecimalPlaces is the precision used by FormatNumber.
const DefaultDecimalPlaces = 2

const (
	hundredMillion = 1e8
	million        = 1e6
	thousand       = 1e3

	suffixHundredMillion = " 億"
	suffixMillion        = " 百万"
)

var groupPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatNumber formats v with DefaultDecimalPlaces.
func FormatNumber(v pgtype.Float8) string {
	return FormatNumberPlaces(v, DefaultDecimalPlaces)
}

// FormatNumberPlaces formats v with the given number of decimal places.
// Negative places are treated as zero.
func FormatNumberPlaces(v pgtype.Float8, places int) string {
	if !v.Valid || math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return NotAvailable
	}
	if places < 0 {
		places = 0
	}

	f := v.Float64
	abs := math.Abs(f)
	switch {
	case abs >= hundredMillion:
		return fixed(f/hundredMillion, places) + suffixHundredMillion
	case abs >= million:
		return fixed(f/million, places) + suffixMillion
	case abs >= thousand:
		return grouped(f, places)
	default:
		return fixed(f, places)
	}
}

// exactDigits is enough fraction digits to print any float64 exactly.
const exactDigits = 1074

// fixed rounds the exact binary value of f half away from zero and always
// prints places digits. 2.675 is stored as 2.67499999... and prints "2.67".
func fixed(f float64, places int) string {
	exact := decimal.RequireFromString(strconv.FormatFloat(f, 'f', exactDigits, 64))
	return exact.StringFixed(int32(places))
}

// grouped rounds the shortest decimal form of f, then prints with thousands separators and
// without trailing fraction zeros.
func grouped(f float64, places int) string {
	rounded, _ := decimal.NewFromFloat(f).Round(int32(places)).Float64()
	return groupPrinter.Sprintf("%v", number.Decimal(rounded, number.MaxFractionDigits(places)))
}
