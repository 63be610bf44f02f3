// Package processor consumes price observations from the message queue and
// feeds them to the alert engine for evaluation.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"

	"quantcasa/internal/domain"
	"quantcasa/internal/engine"
	"quantcasa/internal/metrics"
	"quantcasa/internal/queue"
)

// Service drains the observation queue. It is responsible for:
// - Consuming observation messages
// - Discarding malformed or invalid payloads without stalling the stream
// - Handing well-formed observations to the engine for evaluation
type Service struct {
	consumer queue.Consumer
	engine   *engine.Engine
	logger   *slog.Logger
}

// NewService creates a new processor service.
func NewService(consumer queue.Consumer, eng *engine.Engine, logger *slog.Logger) *Service {
	return &Service{
		consumer: consumer,
		engine:   eng,
		logger:   logger,
	}
}

// Start begins consuming observations from the queue and evaluating them.
// This is a blocking call that runs until the context is canceled.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("starting processor service")
	return s.consumer.Start(ctx, s.handleMessage)
}

// Stop shuts down the processor's consumer.
func (s *Service) Stop() error {
	s.logger.Info("stopping processor service")
	return s.consumer.Close()
}

// handleMessage is the callback for processing each message from the queue.
func (s *Service) handleMessage(ctx context.Context, msg *queue.Message) error {
	var obs domain.InternalObservation
	if err := json.Unmarshal(msg.Value, &obs); err != nil {
		s.logger.Error("failed to deserialize observation", "error", err)
		// Return nil to avoid reprocessing malformed messages
		return nil
	}

	// The ingest boundary validates, but the queue may carry payloads from
	// older producers. Re-check before mutating alert state.
	if err := obs.Validate(); err != nil {
		s.logger.Warn("discarding invalid observation",
			"city", obs.City,
			"mode", obs.Mode,
			"error", err,
		)
		metrics.ObservationsProcessedTotal.WithLabelValues(string(obs.Mode), "invalid").Inc()
		return nil
	}

	s.logger.Debug("processing observation",
		"city", obs.City,
		"area", obs.Area,
		"mode", obs.Mode,
		"price", obs.Price,
	)

	results, err := s.engine.CheckPrice(ctx, obs.Observation)
	if err != nil {
		s.logger.Error("failed to evaluate observation", "error", err)
		return err
	}

	result := "unmatched"
	if len(results) > 0 {
		result = "matched"
		for _, r := range results {
			if r.Triggered {
				result = "triggered"
				break
			}
		}
	}
	metrics.ObservationsProcessedTotal.WithLabelValues(string(obs.Mode), result).Inc()

	return nil
}
