// Package file provides a JSON-file-backed implementation of
// store.SnapshotStore. It is the durable client-local storage analog for
// single-process deployments: one fixed path holding the whole alert
// collection as a JSON array.
package file

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"quantcasa/internal/domain"
	"quantcasa/internal/metrics"
)

// SnapshotStore persists the alert collection to a single JSON file.
type SnapshotStore struct {
	path   string
	logger *slog.Logger
}

// NewSnapshotStore creates a file-backed snapshot store at the given path.
func NewSnapshotStore(path string, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{
		path:   filepath.Clean(path),
		logger: logger,
	}
}

// Load reads the persisted collection. A missing file, malformed payload, or
// unreadable storage all read as an empty collection; Load never fails.
func (s *SnapshotStore) Load(ctx context.Context) []*domain.Alert {
	start := time.Now()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read alert snapshot, starting empty", "path", s.path, "error", err)
			metrics.SnapshotOperationsTotal.WithLabelValues("file", "load", "failure").Inc()
		}
		return nil
	}

	var alerts []*domain.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		s.logger.Warn("alert snapshot is corrupt, starting empty", "path", s.path, "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("file", "load", "failure").Inc()
		return nil
	}

	metrics.SnapshotOperationsTotal.WithLabelValues("file", "load", "success").Inc()
	metrics.SnapshotOperationLatency.WithLabelValues("file", "load").Observe(time.Since(start).Seconds())
	return alerts
}

// Save writes the collection. Best-effort: a serialization or storage failure
// is logged and swallowed so the running session stays responsive.
func (s *SnapshotStore) Save(ctx context.Context, alerts []*domain.Alert) {
	start := time.Now()

	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		s.logger.Warn("failed to serialize alert snapshot", "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("file", "save", "failure").Inc()
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("failed to create snapshot directory", "path", s.path, "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("file", "save", "failure").Inc()
		return
	}

	// Write-then-rename keeps a crash from leaving a half-written snapshot.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Warn("failed to write alert snapshot", "path", s.path, "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("file", "save", "failure").Inc()
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Warn("failed to replace alert snapshot", "path", s.path, "error", err)
		metrics.SnapshotOperationsTotal.WithLabelValues("file", "save", "failure").Inc()
		return
	}

	metrics.SnapshotOperationsTotal.WithLabelValues("file", "save", "success").Inc()
	metrics.SnapshotOperationLatency.WithLabelValues("file", "save").Observe(time.Since(start).Seconds())
}

// Close is a no-op for the file store.
func (s *SnapshotStore) Close() error {
	return nil
}
