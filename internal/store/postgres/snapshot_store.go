package postgres

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"quantcasa/internal/domain"
	"quantcasa/internal/metrics"
)

// snapshotKey is the fixed key the whole alert collection lives under.
// No other component reads or writes this record.
const snapshotKey = "quantcasa_price_alerts"

// SnapshotStore implements store.SnapshotStore on a single JSONB row.
// It mirrors the file store's contract: the collection is persisted
// wholesale under one fixed key, reads never fail, writes are best-effort.
type SnapshotStore struct {
	db     *DB
	logger *slog.Logger
}

// NewSnapshotStore creates a PostgreSQL-backed snapshot store.
func NewSnapshotStore(db *DB, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

// Load reads the persisted collection. Any failure reads as empty.
func (s *SnapshotStore) Load(ctx context.Context) []*domain.Alert {
	start := time.Now()

	var payload []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT payload FROM alert_snapshots WHERE snapshot_key = $1`,
		snapshotKey,
	).Scan(&payload)
	if err != nil {
		// Missing row and connection failure both degrade to empty.
		s.logger.Warn("failed to load alert snapshot, starting empty", "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("postgres", "load", "failure").Inc()
		return nil
	}

	var alerts []*domain.Alert
	if err := json.Unmarshal(payload, &alerts); err != nil {
		s.logger.Warn("alert snapshot is corrupt, starting empty", "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("postgres", "load", "failure").Inc()
		return nil
	}

	metrics.SnapshotOperationsTotal.WithLabelValues("postgres", "load", "success").Inc()
	metrics.SnapshotOperationLatency.WithLabelValues("postgres", "load").Observe(time.Since(start).Seconds())
	return alerts
}

// Save upserts the collection. Best-effort.
func (s *SnapshotStore) Save(ctx context.Context, alerts []*domain.Alert) {
	start := time.Now()

	payload, err := json.Marshal(alerts)
	if err != nil {
		s.logger.Warn("failed to serialize alert snapshot", "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("postgres", "save", "failure").Inc()
		return
	}

	_, err = s.db.pool.Exec(ctx, `
		INSERT INTO alert_snapshots (snapshot_key, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_key)
		DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`, snapshotKey, payload, time.Now().UTC())
	if err != nil {
		s.logger.Warn("failed to save alert snapshot", "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("postgres", "save", "failure").Inc()
		return
	}

	metrics.SnapshotOperationsTotal.WithLabelValues("postgres", "save", "success").Inc()
	metrics.SnapshotOperationLatency.WithLabelValues("postgres", "save").Observe(time.Since(start).Seconds())
}

// Close is a no-op; the shared DB owns the pool lifecycle.
func (s *SnapshotStore) Close() error {
	return nil
}
