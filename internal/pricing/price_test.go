package pricing

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{125000000, "₹12.50 Cr"},
		{12000000, "₹1.20 Cr"},
		{10000000, "₹1.00 Cr"},
		{8500000, "₹85.0 L"},
		{850000, "₹8.5 L"},
		{100000, "₹1.0 L"},
		{99999, "₹99,999"},
		{999, "₹999"},
		{0, "₹0"},
	}

	for _, tc := range cases {
		if got := Format(tc.amount); got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestParseRaw(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"₹1.20 Cr", 12000000},
		{"1.2cr", 12000000},
		{"85 L", 8500000},
		{"8.5 lakh", 850000},
		{"12 lac", 1200000},
		{"500k", 500000},
		{"₹99,999", 99999},
		{"7500000", 7500000},
		{"  ₹ 85.0 L ", 8500000},
		{"", 0},
		{"not a price", 0},
		{"cr", 0},
	}

	for _, tc := range cases {
		if got := ParseRaw(tc.text); got != tc.want {
			t.Errorf("ParseRaw(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

// Formatting then parsing must stay within 1% of the original amount; the
// 1-2 decimal places of the compact form make exact equality impossible.
func TestRoundTripTolerance(t *testing.T) {
	for _, amount := range []float64{850000, 8500000, 125000000, 999} {
		back := ParseRaw(Format(amount))
		if diff := math.Abs(back-amount) / amount; diff > 0.01 {
			t.Errorf("round-trip of %v returned %v (%.2f%% off)", amount, back, diff*100)
		}
	}
}
