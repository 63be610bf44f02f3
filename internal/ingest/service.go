// Package ingest provides the observation ingestion service.
// It validates incoming price observations, computes routing keys, and
// publishes them to the message queue for asynchronous evaluation.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quantcasa/internal/domain"
	"quantcasa/internal/metrics"
	"quantcasa/internal/queue"
)

// Service handles observation ingestion logic. It is responsible for:
// - Validating observations at the boundary
// - Computing partition keys for ordered processing
// - Publishing observations to the message queue
type Service struct {
	producer queue.Producer
	logger   *slog.Logger
}

// NewService creates a new ingest service.
func NewService(producer queue.Producer, logger *slog.Logger) *Service {
	return &Service{
		producer: producer,
		logger:   logger,
	}
}

// ErrPublishFailed is returned when the queue rejects an observation.
var ErrPublishFailed = errors.New("failed to publish observation to queue")

// IngestObservation validates an incoming observation and publishes it to
// the message queue. This is the main entry point for observation ingestion.
//
// The processing flow:
// 1. Validate the observation
// 2. Compute the partition key so one scope evaluates in arrival order
// 3. Publish to the message queue
func (s *Service) IngestObservation(ctx context.Context, obs *domain.Observation) error {
	ingestStart := time.Now()

	metrics.ObservationsReceivedTotal.WithLabelValues(string(obs.Mode)).Inc()

	if err := obs.Validate(); err != nil {
		s.logger.Warn("rejected invalid observation",
			"city", obs.City,
			"mode", obs.Mode,
			"error", err,
		)
		return err
	}

	partitionKey := computePartitionKey(obs.City, obs.Mode)

	internal := &domain.InternalObservation{
		Observation:  *obs,
		PartitionKey: partitionKey,
		ReceivedAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(internal)
	if err != nil {
		s.logger.Error("failed to serialize observation", "error", err)
		return fmt.Errorf("failed to serialize observation: %w", err)
	}

	msg := &queue.Message{
		Key:   []byte(partitionKey),
		Value: payload,
		Headers: map[string]string{
			"city": obs.City,
			"mode": string(obs.Mode),
		},
	}

	publishStart := time.Now()
	if err := s.producer.Publish(ctx, msg); err != nil {
		s.logger.Error("failed to publish observation", "error", err, "city", obs.City, "mode", obs.Mode)
		return ErrPublishFailed
	}
	metrics.QueuePublishLatency.Observe(time.Since(publishStart).Seconds())

	metrics.ObservationsPublishedTotal.WithLabelValues(string(obs.Mode)).Inc()
	metrics.ObservationIngestLatency.Observe(time.Since(ingestStart).Seconds())

	s.logger.Debug("observation published to queue",
		"city", obs.City,
		"mode", obs.Mode,
		"partitionKey", partitionKey,
	)

	return nil
}

// computePartitionKey generates a deterministic partition key for an
// observation. Observations for the same city and mode always get the same
// key, so they land on the same partition and evaluate in arrival order.
// The city is lowercased first: scope matching is case-insensitive, and two
// spellings of one city must not race each other on different partitions.
//
// Format: hash(lowercase(city) + mode)
func computePartitionKey(city string, mode domain.Mode) string {
	input := strings.ToLower(city) + ":" + string(mode)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
