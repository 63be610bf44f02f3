// Package store defines interfaces for alert persistence and session state.
// These abstractions allow swapping implementations (file, PostgreSQL,
// in-memory) without changing business logic.
package store

import (
	"context"

	"quantcasa/internal/domain"
)

// AlertRepository is the live, ordered collection of alerts for the current
// session. Ordering is most-recent-first: Insert prepends. This is an
// explicit UX contract, not incidental.
type AlertRepository interface {
	// Insert prepends a new alert to the collection.
	Insert(ctx context.Context, alert *domain.Alert) error

	// Update modifies an existing alert in place.
	Update(ctx context.Context, alert *domain.Alert) error

	// GetByID retrieves an alert by its ID.
	GetByID(ctx context.Context, id string) (*domain.Alert, error)

	// Delete removes the alert with the given ID.
	// Returns domain.ErrAlertNotFound when absent.
	Delete(ctx context.Context, id string) error

	// DeleteByStatus removes every alert with the given status in one
	// pass and returns how many were removed.
	DeleteByStatus(ctx context.Context, status domain.Status) (int, error)

	// List retrieves alerts matching the filter criteria, preserving
	// collection order.
	List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error)

	// Snapshot returns an ordered copy of the whole collection, suitable
	// for handing to a SnapshotStore.
	Snapshot(ctx context.Context) ([]*domain.Alert, error)

	// Seed replaces the collection contents, preserving the given order.
	Seed(ctx context.Context, alerts []*domain.Alert) error

	// Counts returns derived totals by status.
	Counts(ctx context.Context) (domain.Counts, error)
}

// SnapshotStore persists the whole alert collection under a fixed key.
//
// Losing alert persistence is non-fatal to a running session, so the
// contract is deliberately lossy: Load never fails (missing key, malformed
// payload, or storage unavailability all read as an empty collection) and
// Save is best-effort (failures are logged and swallowed, never surfaced).
type SnapshotStore interface {
	// Load reads the persisted collection. Never returns an error.
	Load(ctx context.Context) []*domain.Alert

	// Save writes the collection. Best-effort.
	Save(ctx context.Context, alerts []*domain.Alert)

	// Close releases any resources held by the store.
	Close() error
}
