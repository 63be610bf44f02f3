// Package memory provides in-memory implementations of store interfaces.
// These are useful for testing and development without external dependencies.
package memory

import (
	"context"
	"strings"
	"sync"

	"quantcasa/internal/domain"
)

// AlertRepository is an in-memory implementation of store.AlertRepository.
// Alerts are kept in an ordered slice (most-recent-first) with an ID index
// for fast targeted lookups.
type AlertRepository struct {
	mu sync.RWMutex

	// alerts holds the collection in display order.
	alerts []*domain.Alert

	// byID provides fast lookup by alert ID.
	byID map[string]*domain.Alert
}

// NewAlertRepository creates a new in-memory alert repository.
func NewAlertRepository() *AlertRepository {
	return &AlertRepository{
		byID: make(map[string]*domain.Alert),
	}
}

// Insert prepends a new alert to the collection.
func (r *AlertRepository) Insert(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external modification
	alertCopy := *alert
	r.alerts = append([]*domain.Alert{&alertCopy}, r.alerts...)
	r.byID[alert.ID] = &alertCopy

	return nil
}

// Update modifies an existing alert, keeping its position in the collection.
func (r *AlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.byID[alert.ID]
	if !exists {
		return domain.ErrAlertNotFound
	}

	// Mutate the stored copy in place so slice order is untouched.
	*existing = *alert
	return nil
}

// GetByID retrieves an alert by its ID.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alert, exists := r.byID[id]
	if !exists {
		return nil, domain.ErrAlertNotFound
	}

	// Return a copy
	result := *alert
	return &result, nil
}

// Delete removes the alert with the given ID.
func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return domain.ErrAlertNotFound
	}

	delete(r.byID, id)
	for i, a := range r.alerts {
		if a.ID == id {
			r.alerts = append(r.alerts[:i], r.alerts[i+1:]...)
			break
		}
	}

	return nil
}

// DeleteByStatus removes every alert with the given status in one pass.
func (r *AlertRepository) DeleteByStatus(ctx context.Context, status domain.Status) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.alerts[:0]
	removed := 0
	for _, a := range r.alerts {
		if a.Status == status {
			delete(r.byID, a.ID)
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.alerts = kept

	return removed, nil
}

// List retrieves alerts matching the filter criteria, preserving order.
func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []*domain.Alert
	for _, alert := range r.alerts {
		if filter.Status != "" && alert.Status != filter.Status {
			continue
		}
		if filter.Mode != "" && alert.Mode != filter.Mode {
			continue
		}
		if filter.City != "" && !strings.EqualFold(alert.City, filter.City) {
			continue
		}

		alertCopy := *alert
		results = append(results, &alertCopy)
	}

	// Apply offset and limit
	start := filter.Offset
	if start > len(results) {
		start = len(results)
	}

	end := len(results)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	return results[start:end], nil
}

// Snapshot returns an ordered copy of the whole collection.
func (r *AlertRepository) Snapshot(ctx context.Context) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]*domain.Alert, 0, len(r.alerts))
	for _, alert := range r.alerts {
		alertCopy := *alert
		results = append(results, &alertCopy)
	}

	return results, nil
}

// Seed replaces the collection contents, preserving the given order.
func (r *AlertRepository) Seed(ctx context.Context, alerts []*domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = make([]*domain.Alert, 0, len(alerts))
	r.byID = make(map[string]*domain.Alert, len(alerts))
	for _, alert := range alerts {
		// Duplicate IDs would break targeted mutations; first wins.
		if _, exists := r.byID[alert.ID]; exists {
			continue
		}
		alertCopy := *alert
		r.alerts = append(r.alerts, &alertCopy)
		r.byID[alert.ID] = &alertCopy
	}

	return nil
}

// Counts returns derived totals by status.
func (r *AlertRepository) Counts(ctx context.Context) (domain.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := domain.Counts{Total: len(r.alerts)}
	for _, a := range r.alerts {
		switch a.Status {
		case domain.StatusActive:
			counts.Active++
		case domain.StatusTriggered:
			counts.Triggered++
		case domain.StatusPaused:
			counts.Paused++
		}
	}

	return counts, nil
}

// Clear removes all data from the repository. Useful for test cleanup.
func (r *AlertRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = nil
	r.byID = make(map[string]*domain.Alert)
}
