// Package pricing converts between raw rupee amounts and the compact
// human-readable strings used across QuantCasa (₹85.0 L, ₹1.20 Cr).
// Both directions are pure functions with no state.
package pricing

import (
	"strconv"
	"strings"
)

const (
	crore = 1e7
	lakh  = 1e5
)

// Format renders a rupee amount compactly: crores to two decimals, lakhs to
// one, and smaller amounts as a grouped integer. Formatting then parsing
// stays within rounding tolerance of the original but is not exact.
func Format(amount float64) string {
	switch {
	case amount >= crore:
		return "₹" + strconv.FormatFloat(amount/crore, 'f', 2, 64) + " Cr"
	case amount >= lakh:
		return "₹" + strconv.FormatFloat(amount/lakh, 'f', 1, 64) + " L"
	default:
		return "₹" + groupIndian(int64(amount))
	}
}

// ParseRaw converts user- or formatter-produced price text back to a rupee
// amount. The currency symbol, commas, and whitespace are ignored and the
// suffixes cr, l/lac/lakh, and k are recognized case-insensitively.
// Unparseable input yields 0.
func ParseRaw(text string) float64 {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}

	multiplier := 1.0
	// Longest suffix first so "lakh" is not consumed as a bare "l".
	for _, suf := range []struct {
		text string
		mul  float64
	}{
		{"lakh", lakh},
		{"lac", lakh},
		{"cr", crore},
		{"l", lakh},
		{"k", 1e3},
	} {
		if strings.HasSuffix(s, suf.text) {
			s = strings.TrimSuffix(s, suf.text)
			multiplier = suf.mul
			break
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return value * multiplier
}

// groupIndian formats an integer with Indian digit grouping: the last three
// digits, then pairs (12,34,567).
func groupIndian(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var parts []string
		for len(head) > 2 {
			parts = append([]string{head[len(head)-2:]}, parts...)
			head = head[:len(head)-2]
		}
		if head != "" {
			parts = append([]string{head}, parts...)
		}
		s = strings.Join(append(parts, tail), ",")
	}

	if negative {
		return "-" + s
	}
	return s
}
