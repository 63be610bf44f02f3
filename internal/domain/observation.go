package domain

import (
	"errors"
	"time"
)

// Observation is a price reading supplied by a valuation producer after a
// completed valuation fetch. This is the input payload received at the
// ingestion endpoint.
type Observation struct {
	// City is the city the valuation was produced for.
	City string `json:"city"`

	// Area is the locality within the city. May be empty for city-level
	// valuations.
	Area string `json:"area,omitempty"`

	// Mode is the market segment of the valuation.
	Mode Mode `json:"mode"`

	// Price is the observed rupee amount. Must be positive; transient
	// zero or negative readings are rejected at the boundary so they
	// cannot corrupt alert baselines.
	Price float64 `json:"price"`
}

// Validation errors for Observation.
var (
	ErrEmptyObservationCity = errors.New("city is required")
	ErrInvalidPrice         = errors.New("price must be positive")
)

// Validate checks if the observation has all required fields with valid values.
func (o *Observation) Validate() error {
	if o.City == "" {
		return ErrEmptyObservationCity
	}
	if !o.Mode.IsValid() {
		return ErrInvalidMode
	}
	if o.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// InternalObservation is an enriched observation used for internal processing.
// It contains the original observation plus computed routing information.
type InternalObservation struct {
	Observation

	// PartitionKey is the computed key for message queue partitioning.
	// Observations for the same city/mode scope share a key so they are
	// evaluated in arrival order.
	PartitionKey string `json:"partition_key"`

	// ReceivedAt is when the observation was accepted by the ingest service.
	ReceivedAt time.Time `json:"received_at"`
}
