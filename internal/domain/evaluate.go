package domain

import "strings"

// ChangeThresholdPercent is the fixed movement threshold for any_change
// alerts. The product exposes no configuration surface for it.
const ChangeThresholdPercent = 5.0

// Direction indicates which way a price moved relative to an alert's baseline.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// MatchesScope reports whether an observation's scope reaches the alert.
// Only active alerts match; city and area compare case-insensitively, and an
// alert with an empty area watches the whole city.
func (a *Alert) MatchesScope(city, area string, mode Mode) bool {
	if a.Status != StatusActive {
		return false
	}
	if a.Mode != mode {
		return false
	}
	if !strings.EqualFold(a.City, city) {
		return false
	}
	if a.Area != "" && !strings.EqualFold(a.Area, area) {
		return false
	}
	return true
}

// ShouldTrigger decides whether the observed price satisfies the alert's
// condition. Pure function, no side effects.
//
// Boundary values count as triggering for both below and above: the
// comparison is inclusive so limit-order semantics are symmetric.
func ShouldTrigger(a *Alert, observedPrice float64) bool {
	if a.Status != StatusActive || observedPrice <= 0 {
		return false
	}

	switch a.Condition {
	case ConditionBelow:
		return observedPrice <= a.TargetPrice
	case ConditionAbove:
		return observedPrice >= a.TargetPrice
	case ConditionAnyChange:
		// A zero baseline would divide by zero; treat as non-trigger
		// until a real price walks the baseline forward.
		if a.LastKnownPrice <= 0 {
			return false
		}
		pct := PercentChange(a.LastKnownPrice, observedPrice)
		if pct < 0 {
			pct = -pct
		}
		return pct >= ChangeThresholdPercent
	default:
		return false
	}
}

// PercentChange returns the signed percentage delta of observed relative to
// the baseline. Positive means the price rose. A non-positive baseline
// yields zero.
func PercentChange(baseline, observed float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (observed - baseline) / baseline * 100
}

// DirectionOf classifies an observed price against a baseline.
func DirectionOf(baseline, observed float64) Direction {
	if observed >= baseline {
		return DirectionUp
	}
	return DirectionDown
}
