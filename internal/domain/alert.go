// Package domain contains the core business entities and value objects for
// the QuantCasa price alert engine. These models represent the ubiquitous
// language of the property valuation alerting domain.
package domain

import (
	"errors"
	"time"
)

// ErrAlertNotFound is returned when an alert cannot be found.
var ErrAlertNotFound = errors.New("alert not found")

// Mode is the valuation market segment an alert watches.
// An alert only reacts to observations tagged with the same mode.
type Mode string

const (
	ModeBuy        Mode = "buy"
	ModeRent       Mode = "rent"
	ModeLand       Mode = "land"
	ModeCommercial Mode = "commercial"
)

// IsValid returns true if the mode is a known valid value.
func (m Mode) IsValid() bool {
	switch m {
	case ModeBuy, ModeRent, ModeLand, ModeCommercial:
		return true
	default:
		return false
	}
}

// Condition is the trigger rule an alert applies to observed prices.
// It is fixed at creation and not mutable thereafter.
type Condition string

const (
	// ConditionBelow triggers when the observed price is at or below the target.
	ConditionBelow Condition = "below"
	// ConditionAbove triggers when the observed price is at or above the target.
	ConditionAbove Condition = "above"
	// ConditionAnyChange triggers when the observed price moves at least
	// ChangeThresholdPercent in either direction from the baseline.
	ConditionAnyChange Condition = "any_change"
)

// IsValid returns true if the condition is a known valid value.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionBelow, ConditionAbove, ConditionAnyChange:
		return true
	default:
		return false
	}
}

// Status represents the current state of an alert.
type Status string

const (
	// StatusActive indicates the alert participates in evaluation.
	StatusActive Status = "active"
	// StatusTriggered indicates the alert's condition was satisfied.
	StatusTriggered Status = "triggered"
	// StatusPaused indicates the alert is suspended by the user.
	StatusPaused Status = "paused"
)

// Alert is a persisted rule watching one location/mode scope for a price
// crossing a target or changing by a threshold.
type Alert struct {
	// ID is the unique identifier for this alert. It also serves as the
	// notification de-duplication tag.
	ID string `json:"id"`

	// Label is the user-facing name, e.g. "2BHK Wagholi, Pune".
	Label string `json:"label"`

	// City and Area define the location scope used for matching.
	// An empty Area means "match any area within the city".
	City string `json:"city"`
	Area string `json:"area,omitempty"`

	// Mode is the market segment this alert watches.
	Mode Mode `json:"mode"`

	// Condition is the trigger rule, fixed at creation.
	Condition Condition `json:"condition"`

	// TargetPrice is the absolute rupee amount compared against for
	// below/above conditions. Retained but unused for any_change.
	TargetPrice float64 `json:"target_price"`

	// LastKnownPrice is the baseline: the most recent non-triggering price
	// observed for this alert's scope. any_change is always measured
	// against this value, not the price at creation.
	LastKnownPrice float64 `json:"last_known_price"`

	// CurrentPrice is the most recently observed price, nil until the
	// first observation reaches this alert.
	CurrentPrice *float64 `json:"current_price,omitempty"`

	// Status governs whether the alert participates in evaluation.
	Status Status `json:"status"`

	// CreatedAt is when the alert was created.
	CreatedAt time.Time `json:"created_at"`

	// TriggeredAt is when the alert most recently fired. Nil while active.
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`

	// TriggerCount counts how many times this alert has fired.
	// It survives pause/resume and reset.
	TriggerCount int `json:"trigger_count"`

	// Notify indicates whether a trigger should also dispatch an
	// out-of-band notification.
	Notify bool `json:"notify"`

	// PercentChange is the signed percentage delta between CurrentPrice
	// and the baseline at the time of the most recent trigger.
	PercentChange *float64 `json:"percent_change,omitempty"`
}

// Validation errors for alert creation. These are the only failures surfaced
// to callers; everything else in the engine degrades silently.
var (
	ErrEmptyLabel         = errors.New("label is required")
	ErrEmptyCity          = errors.New("city is required")
	ErrInvalidMode        = errors.New("mode must be 'buy', 'rent', 'land', or 'commercial'")
	ErrInvalidCondition   = errors.New("condition must be 'below', 'above', or 'any_change'")
	ErrInvalidTargetPrice = errors.New("target_price must be positive for below/above conditions")
	ErrNegativeBaseline   = errors.New("last_known_price must not be negative")
)

// NewAlertInput carries the caller-supplied fields for alert creation.
type NewAlertInput struct {
	Label          string    `json:"label"`
	City           string    `json:"city"`
	Area           string    `json:"area"`
	Mode           Mode      `json:"mode"`
	Condition      Condition `json:"condition"`
	TargetPrice    float64   `json:"target_price"`
	LastKnownPrice float64   `json:"last_known_price"`
	Notify         bool      `json:"notify"`
}

// Validate checks the input against the creation-time invariants.
// Returns an error describing the first validation failure, or nil if valid.
func (in *NewAlertInput) Validate() error {
	if in.Label == "" {
		return ErrEmptyLabel
	}
	if in.City == "" {
		return ErrEmptyCity
	}
	if !in.Mode.IsValid() {
		return ErrInvalidMode
	}
	if !in.Condition.IsValid() {
		return ErrInvalidCondition
	}
	if in.Condition != ConditionAnyChange && in.TargetPrice <= 0 {
		return ErrInvalidTargetPrice
	}
	if in.LastKnownPrice < 0 {
		return ErrNegativeBaseline
	}
	return nil
}

// NewAlert creates a new active alert from validated input.
// When no price is known for the scope yet, the baseline defaults to the
// target price so any_change has something to measure against.
func NewAlert(in *NewAlertInput) (*Alert, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	baseline := in.LastKnownPrice
	if baseline == 0 {
		baseline = in.TargetPrice
	}

	return &Alert{
		Label:          in.Label,
		City:           in.City,
		Area:           in.Area,
		Mode:           in.Mode,
		Condition:      in.Condition,
		TargetPrice:    in.TargetPrice,
		LastKnownPrice: baseline,
		Status:         StatusActive,
		CreatedAt:      time.Now().UTC(),
		TriggerCount:   0,
		Notify:         in.Notify,
	}, nil
}

// IsActive returns true if the alert participates in evaluation.
func (a *Alert) IsActive() bool {
	return a.Status == StatusActive
}

// IsTriggered returns true if the alert has fired and awaits a reset.
func (a *Alert) IsTriggered() bool {
	return a.Status == StatusTriggered
}

// IsPaused returns true if the alert is suspended.
func (a *Alert) IsPaused() bool {
	return a.Status == StatusPaused
}

// Trigger transitions the alert to triggered with the observed price.
// The baseline is left untouched so the pre-trigger comparison point stays
// available for historical display until the alert is reset.
func (a *Alert) Trigger(observedPrice, percentChange float64, now time.Time) {
	a.Status = StatusTriggered
	a.CurrentPrice = &observedPrice
	a.TriggeredAt = &now
	a.TriggerCount++
	a.PercentChange = &percentChange
}

// Observe records a non-triggering observation: the baseline walks forward
// so any_change measures recent volatility rather than drift from an
// ancient comparison point.
func (a *Alert) Observe(observedPrice float64) {
	a.CurrentPrice = &observedPrice
	a.LastKnownPrice = observedPrice
}

// Toggle flips the alert between active and paused. A triggered alert does
// not participate in the toggle relation; it must be reset first.
// Returns true if the status changed.
func (a *Alert) Toggle() bool {
	switch a.Status {
	case StatusActive:
		a.Status = StatusPaused
		return true
	case StatusPaused:
		a.Status = StatusActive
		return true
	default:
		return false
	}
}

// Reset acknowledges a triggered alert and re-arms it. The trigger count,
// baseline, and last percent change are preserved: resetting means "watch
// again", not "erase history". Returns true if the status changed.
func (a *Alert) Reset() bool {
	if a.Status != StatusTriggered {
		return false
	}
	a.Status = StatusActive
	a.TriggeredAt = nil
	return true
}

// AlertFilter provides filtering options for querying alerts.
type AlertFilter struct {
	Status Status
	Mode   Mode
	City   string
	Limit  int
	Offset int
}

// Counts holds derived totals for the presentation layer.
type Counts struct {
	Active    int `json:"active"`
	Triggered int `json:"triggered"`
	Paused    int `json:"paused"`
	Total     int `json:"total"`
}
