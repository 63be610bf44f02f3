// Package engine implements the price alert engine: the single writer that
// owns the alert collection, evaluates incoming price observations against
// it, and keeps the persisted snapshot in sync after every mutation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quantcasa/internal/domain"
	"quantcasa/internal/metrics"
	"quantcasa/internal/notification"
	"quantcasa/internal/store"
)

// CheckResult describes the outcome of one observation against one alert
// whose scope matched.
type CheckResult struct {
	// Alert is a post-evaluation snapshot of the alert.
	Alert *domain.Alert `json:"alert"`

	// Triggered is true if this observation fired the alert.
	Triggered bool `json:"triggered"`

	// Direction is the movement relative to the alert's baseline.
	Direction domain.Direction `json:"direction"`

	// ChangePercent is the signed delta relative to the baseline.
	ChangePercent float64 `json:"change_percent"`
}

// Engine orchestrates the alert collection. All mutations are serialized
// through a single mutex so an evaluation pass observes a consistent
// collection and the snapshot written afterwards reflects exactly one
// mutation at a time.
type Engine struct {
	mu sync.Mutex

	repo       store.AlertRepository
	snapshots  store.SnapshotStore
	dispatcher *notification.Dispatcher
	logger     *slog.Logger
}

// NewEngine creates a new alert engine.
func NewEngine(repo store.AlertRepository, snapshots store.SnapshotStore, dispatcher *notification.Dispatcher, logger *slog.Logger) *Engine {
	return &Engine{
		repo:       repo,
		snapshots:  snapshots,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Load seeds the collection from the persisted snapshot. Called once at
// startup, before the engine is handed to the processor or the API.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	alerts := e.snapshots.Load(ctx)
	if err := e.repo.Seed(ctx, alerts); err != nil {
		return fmt.Errorf("failed to seed alert collection: %w", err)
	}

	e.logger.Info("alert collection loaded", "count", len(alerts))
	e.syncGauges(ctx)
	return nil
}

// AddAlert validates the input, creates the alert, and prepends it to the
// collection.
func (e *Engine) AddAlert(ctx context.Context, in *domain.NewAlertInput) (*domain.Alert, error) {
	alert, err := domain.NewAlert(in)
	if err != nil {
		return nil, err
	}
	alert.ID = uuid.New().String()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.repo.Insert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}

	metrics.AlertsCreatedTotal.WithLabelValues(string(alert.Mode), string(alert.Condition)).Inc()
	e.logger.Info("alert created",
		"alert_id", alert.ID,
		"city", alert.City,
		"mode", alert.Mode,
		"condition", alert.Condition,
	)

	e.persist(ctx)
	e.syncGauges(ctx)
	return alert, nil
}

// RemoveAlert deletes an alert. Removing an alert that does not exist is a
// no-op: the desired end state is already true.
func (e *Engine) RemoveAlert(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrAlertNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}

	e.logger.Info("alert removed", "alert_id", id)
	e.persist(ctx)
	e.syncGauges(ctx)
	return nil
}

// ToggleAlert flips an alert between active and paused. A triggered alert is
// left untouched. Returns the post-toggle alert.
func (e *Engine) ToggleAlert(ctx context.Context, id string) (*domain.Alert, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	alert, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !alert.Toggle() {
		return alert, nil
	}
	if err := e.repo.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	e.logger.Info("alert toggled", "alert_id", id, "status", alert.Status)
	e.persist(ctx)
	e.syncGauges(ctx)
	return alert, nil
}

// ResetAlert re-arms a triggered alert, preserving its trigger history.
// A non-triggered alert is left untouched. Returns the post-reset alert.
func (e *Engine) ResetAlert(ctx context.Context, id string) (*domain.Alert, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	alert, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !alert.Reset() {
		return alert, nil
	}
	if err := e.repo.Update(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	e.logger.Info("alert reset", "alert_id", id, "trigger_count", alert.TriggerCount)
	e.persist(ctx)
	e.syncGauges(ctx)
	return alert, nil
}

// ClearTriggered removes every triggered alert in one pass and returns how
// many were removed. Alerts in other states are untouched.
func (e *Engine) ClearTriggered(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed, err := e.repo.DeleteByStatus(ctx, domain.StatusTriggered)
	if err != nil {
		return 0, fmt.Errorf("failed to clear triggered alerts: %w", err)
	}
	if removed == 0 {
		return 0, nil
	}

	e.logger.Info("triggered alerts cleared", "count", removed)
	e.persist(ctx)
	e.syncGauges(ctx)
	return removed, nil
}

// CheckPrice evaluates one observation against every alert whose scope
// matches, in one pass. Triggering alerts transition to triggered and, when
// opted in, dispatch a notification; non-triggering matches walk their
// baseline forward. Returns one result per matched alert.
//
// A non-positive price never triggers and never moves a baseline.
func (e *Engine) CheckPrice(ctx context.Context, obs domain.Observation) ([]CheckResult, error) {
	start := time.Now()
	defer func() {
		metrics.CheckPriceLatency.Observe(time.Since(start).Seconds())
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	if obs.Price <= 0 {
		return nil, nil
	}

	alerts, err := e.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot alert collection: %w", err)
	}

	var results []CheckResult
	now := time.Now().UTC()

	for _, alert := range alerts {
		if !alert.MatchesScope(obs.City, obs.Area, obs.Mode) {
			continue
		}

		baseline := alert.LastKnownPrice
		pct := domain.PercentChange(baseline, obs.Price)
		direction := domain.DirectionOf(baseline, obs.Price)
		triggered := domain.ShouldTrigger(alert, obs.Price)

		if triggered {
			alert.Trigger(obs.Price, pct, now)
			metrics.AlertsTriggeredTotal.WithLabelValues(string(alert.Mode), string(alert.Condition)).Inc()
			e.logger.Info("alert triggered",
				"alert_id", alert.ID,
				"condition", alert.Condition,
				"observed_price", obs.Price,
				"change_percent", pct,
			)
		} else {
			alert.Observe(obs.Price)
		}

		if err := e.repo.Update(ctx, alert); err != nil {
			e.logger.Error("failed to update alert after evaluation", "alert_id", alert.ID, "error", err)
			continue
		}

		if triggered && alert.Notify {
			e.dispatcher.Fire(ctx, alert, obs.Price)
		}

		results = append(results, CheckResult{
			Alert:         alert,
			Triggered:     triggered,
			Direction:     direction,
			ChangePercent: pct,
		})
	}

	if len(results) > 0 {
		e.persist(ctx)
		e.syncGauges(ctx)
	}
	return results, nil
}

// GetAlert retrieves a single alert by ID.
func (e *Engine) GetAlert(ctx context.Context, id string) (*domain.Alert, error) {
	return e.repo.GetByID(ctx, id)
}

// ListAlerts retrieves alerts matching the filter, most recent first.
func (e *Engine) ListAlerts(ctx context.Context, filter domain.AlertFilter) ([]*domain.Alert, error) {
	return e.repo.List(ctx, filter)
}

// Counts returns derived totals by status.
func (e *Engine) Counts(ctx context.Context) (domain.Counts, error) {
	return e.repo.Counts(ctx)
}

// RequestPermission resolves the notification permission via the dispatcher.
func (e *Engine) RequestPermission(ctx context.Context) notification.Permission {
	return e.dispatcher.RequestPermission(ctx)
}

// Save writes the current collection to the snapshot store. Exposed for the
// shutdown path, which wants one final write.
func (e *Engine) Save(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.persist(ctx)
}

// persist writes the collection snapshot. Best-effort: the snapshot store
// swallows failures. Callers must hold e.mu.
func (e *Engine) persist(ctx context.Context) {
	alerts, err := e.repo.Snapshot(ctx)
	if err != nil {
		e.logger.Warn("failed to snapshot collection for persistence", "error", err)
		return
	}
	e.snapshots.Save(ctx, alerts)
}

// syncGauges refreshes the per-status gauges. Callers must hold e.mu.
func (e *Engine) syncGauges(ctx context.Context) {
	counts, err := e.repo.Counts(ctx)
	if err != nil {
		return
	}
	metrics.AlertsByStatus.WithLabelValues(string(domain.StatusActive)).Set(float64(counts.Active))
	metrics.AlertsByStatus.WithLabelValues(string(domain.StatusTriggered)).Set(float64(counts.Triggered))
	metrics.AlertsByStatus.WithLabelValues(string(domain.StatusPaused)).Set(float64(counts.Paused))
}
