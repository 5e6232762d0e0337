package core

import (
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func f8(f float64) pgtype.Float8 {
	return pgtype.Float8{Float64: f, Valid: true}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		value pgtype.Float8
		want  string
	}{
		{"zero", f8(0), "0.00"},
		{"small fraction", f8(3.14159), "3.14"},
		{"small negative", f8(-42.5), "-42.50"},
		{"just below thousand rounds up", f8(999.999), "1000.00"},
		{"thousand", f8(1000), "1,000"},
		{"grouped integer", f8(1500), "1,500"},
		{"grouped fraction capped", f8(1234.567), "1,234.57"},
		{"grouped fraction kept short", f8(1234.5), "1,234.5"},
		{"grouped negative", f8(-2500), "-2,500"},
		{"million", f8(1e6), "1.00 百万"},
		{"millions", f8(2500000), "2.50 百万"},
		{"negative millions", f8(-12345678), "-12.35 百万"},
		{"hundred million", f8(1e8), "1.00 億"},
		{"hundred millions", f8(150000000), "1.50 億"},
		{"negative hundred millions", f8(-150000000), "-1.50 億"},
		{"trillions", f8(2.5e13), "250000.00 億"},
		{"missing", pgtype.Float8{}, NotAvailable},
		{"nan", f8(math.NaN()), NotAvailable},
		{"infinity", f8(math.Inf(1)), NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumber(tt.value); got != tt.want {
				t.Errorf("FormatNumber(%v) = %q, want %q", tt.value.Float64, got, tt.want)
			}
		})
	}
}

func TestFormatNumberPlaces(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		places int
		want   string
	}{
		{"one place millions", 2500000, 1, "2.5 百万"},
		{"zero places hundred millions", 150000000, 0, "2 億"},
		{"three places small", 1.5, 3, "1.500"},
		{"zero places half rounds away", 0.5, 0, "1"},
		{"zero places grouped", 1234.56, 0, "1,235"},
		{"negative places clamp", 3.7, -1, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatNumberPlaces(f8(tt.value), tt.places); got != tt.want {
				t.Errorf("FormatNumberPlaces(%v, %d) = %q, want %q", tt.value, tt.places, got, tt.want)
			}
		})
	}
}

// Ties are decided on the stored binary value, not on the decimal literal.
func TestFormatNumberPlaces_BinaryTies(t *testing.T) {
	tests := []struct {
		value  float64
		places int
		want   string
	}{
		{1.005, 2, "1.00"},
		{2.675, 2, "2.67"},
		{-2.675, 2, "-2.67"},
		{1.45, 1, "1.4"},
		{0.125, 2, "0.13"},
		{-0.125, 2, "-0.13"},
		{2.5, 0, "3"},
		{1.005e8, 2, "1.00 億"},
		{2675000, 2, "2.67 百万"},
	}

	for _, tt := range tests {
		if got := FormatNumberPlaces(f8(tt.value), tt.places); got != tt.want {
			t.Errorf("FormatNumberPlaces(%v, %d) = %q, want %q", tt.value, tt.places, got, tt.want)
		}
	}
}
