package notification

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"quantcasa/internal/domain"
	"quantcasa/internal/metrics"
	"quantcasa/internal/pricing"
)

// Dispatcher is the notification orchestrator: it owns the permission
// lifecycle and builds and delivers condition-specific notifications for
// triggered alerts.
type Dispatcher struct {
	store    StateStore
	prompter Prompter
	sink     Sink
	logger   *slog.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(store StateStore, prompter Prompter, sink Sink, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		prompter: prompter,
		sink:     sink,
		logger:   logger,
	}
}

// RequestPermission resolves the notification permission. Idempotent: a
// previously granted or denied decision is returned immediately without
// re-prompting; only the default state triggers the prompter.
func (d *Dispatcher) RequestPermission(ctx context.Context) Permission {
	current, err := d.store.GetPermission(ctx)
	if err != nil {
		d.logger.Debug("failed to read permission state", "error", err)
		current = PermissionDefault
	}
	if current != PermissionDefault {
		return current
	}

	result, err := d.prompter.Prompt(ctx)
	if err != nil || !result.IsValid() {
		d.logger.Debug("permission prompt did not resolve", "error", err)
		return PermissionDefault
	}

	// An unanswered prompt stays in default so a later request asks again.
	if result != PermissionDefault {
		if err := d.store.SetPermission(ctx, result); err != nil {
			d.logger.Debug("failed to persist permission state", "error", err)
		}
	}

	return result
}

// Fire delivers a notification for a freshly triggered alert. No-op unless
// permission is granted. The notification is tagged with the alert's ID so
// a re-trigger replaces the prior one, and it auto-dismisses after
// DisplayTTL. Every failure is swallowed; delivery must never crash the
// calling evaluation pass.
func (d *Dispatcher) Fire(ctx context.Context, alert *domain.Alert, observedPrice float64) {
	permission, err := d.store.GetPermission(ctx)
	if err != nil || permission != PermissionGranted {
		return
	}

	n := &Notification{
		Tag:      alert.ID,
		Title:    buildTitle(alert),
		Body:     buildBody(alert, observedPrice),
		IssuedAt: time.Now().UTC(),
	}

	if err := d.store.PutActive(ctx, n.Tag, n, DisplayTTL); err != nil {
		d.logger.Debug("failed to record live notification", "tag", n.Tag, "error", err)
	}

	if err := d.sink.Deliver(ctx, n); err != nil {
		d.logger.Debug("notification delivery failed", "tag", n.Tag, "error", err)
		metrics.NotificationsSentTotal.WithLabelValues("failure").Inc()
		return
	}

	metrics.NotificationsSentTotal.WithLabelValues("success").Inc()
	if alert.TriggeredAt != nil {
		metrics.NotificationLatency.Observe(time.Since(*alert.TriggeredAt).Seconds())
	}
}

// Dismiss drops a live notification, e.g. when the user acknowledged the
// alert in-app before the auto-dismiss.
func (d *Dispatcher) Dismiss(ctx context.Context, tag string) {
	if err := d.store.DeleteActive(ctx, tag); err != nil {
		d.logger.Debug("failed to dismiss notification", "tag", tag, "error", err)
	}
}

// buildTitle differentiates the headline by condition.
func buildTitle(alert *domain.Alert) string {
	switch alert.Condition {
	case domain.ConditionBelow:
		return "Price drop: " + alert.Label
	case domain.ConditionAbove:
		return "Price target reached: " + alert.Label
	default:
		return "Price movement: " + alert.Label
	}
}

// buildBody uses directional language for below/above and
// magnitude-and-direction language for any_change.
func buildBody(alert *domain.Alert, observedPrice float64) string {
	observed := pricing.Format(observedPrice)

	switch alert.Condition {
	case domain.ConditionBelow:
		return fmt.Sprintf("%s is now at %s, at or below your target of %s.",
			scopeLabel(alert), observed, pricing.Format(alert.TargetPrice))
	case domain.ConditionAbove:
		return fmt.Sprintf("%s is now at %s, at or above your target of %s.",
			scopeLabel(alert), observed, pricing.Format(alert.TargetPrice))
	default:
		pct := 0.0
		if alert.PercentChange != nil {
			pct = *alert.PercentChange
		}
		direction := "up"
		if pct < 0 {
			direction = "down"
		}
		return fmt.Sprintf("%s moved %.1f%% %s to %s.",
			scopeLabel(alert), math.Abs(pct), direction, observed)
	}
}

func scopeLabel(alert *domain.Alert) string {
	if alert.Area == "" {
		return alert.City
	}
	return alert.Area + ", " + alert.City
}

// SlogSink delivers notifications to the structured log. It is the default
// surface for headless deployments.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a log-backed notification sink.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Deliver logs the notification.
func (s *SlogSink) Deliver(ctx context.Context, n *Notification) error {
	s.logger.Info("notification",
		"tag", n.Tag,
		"title", n.Title,
		"body", n.Body,
	)
	return nil
}
