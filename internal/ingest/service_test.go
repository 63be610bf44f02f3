package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"quantcasa/internal/domain"
	"quantcasa/internal/queue"
	"quantcasa/internal/queue/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestService_IngestObservation(t *testing.T) {
	msgQueue := memory.NewQueue(100)
	service := NewService(msgQueue, testLogger())

	obs := &domain.Observation{
		City:  "Pune",
		Area:  "Wagholi",
		Mode:  domain.ModeBuy,
		Price: 7500000,
	}

	err := service.IngestObservation(context.Background(), obs)
	if err != nil {
		t.Errorf("IngestObservation() error = %v", err)
	}

	if msgQueue.Len() != 1 {
		t.Errorf("Queue should have 1 message, got %d", msgQueue.Len())
	}
}

func TestService_IngestObservation_Invalid(t *testing.T) {
	msgQueue := memory.NewQueue(100)
	service := NewService(msgQueue, testLogger())

	tests := []struct {
		name    string
		obs     *domain.Observation
		wantErr error
	}{
		{
			name:    "missing city",
			obs:     &domain.Observation{Mode: domain.ModeBuy, Price: 100},
			wantErr: domain.ErrEmptyObservationCity,
		},
		{
			name:    "invalid mode",
			obs:     &domain.Observation{City: "Pune", Mode: "lease", Price: 100},
			wantErr: domain.ErrInvalidMode,
		},
		{
			name:    "zero price",
			obs:     &domain.Observation{City: "Pune", Mode: domain.ModeBuy, Price: 0},
			wantErr: domain.ErrInvalidPrice,
		},
		{
			name:    "negative price",
			obs:     &domain.Observation{City: "Pune", Mode: domain.ModeBuy, Price: -1},
			wantErr: domain.ErrInvalidPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.IngestObservation(context.Background(), tt.obs)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if msgQueue.Len() != 0 {
		t.Errorf("expected no published messages for invalid observations, got %d", msgQueue.Len())
	}
}

func TestService_IngestObservation_MessageFormat(t *testing.T) {
	msgQueue := memory.NewQueue(100)
	service := NewService(msgQueue, testLogger())

	obs := &domain.Observation{
		City:  "Pune",
		Area:  "Wagholi",
		Mode:  domain.ModeBuy,
		Price: 7500000,
	}
	_ = service.IngestObservation(context.Background(), obs)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var received domain.InternalObservation
	_ = msgQueue.Start(ctx, func(ctx context.Context, msg *queue.Message) error {
		_ = json.Unmarshal(msg.Value, &received)
		return nil
	})

	if received.City != obs.City || received.Price != obs.Price {
		t.Errorf("payload mismatch: got %+v", received.Observation)
	}
	if received.PartitionKey == "" {
		t.Error("PartitionKey should be set")
	}
	if received.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should be set")
	}
}

func TestComputePartitionKey(t *testing.T) {
	key1 := computePartitionKey("Pune", domain.ModeBuy)
	key2 := computePartitionKey("Pune", domain.ModeBuy)
	if key1 != key2 {
		t.Error("Same inputs should produce same partition key")
	}

	// City casing must not split a scope across partitions.
	key3 := computePartitionKey("PUNE", domain.ModeBuy)
	if key1 != key3 {
		t.Error("City casing should not change the partition key")
	}

	key4 := computePartitionKey("Pune", domain.ModeRent)
	if key1 == key4 {
		t.Error("Different modes should produce different partition keys")
	}

	key5 := computePartitionKey("Mumbai", domain.ModeBuy)
	if key1 == key5 {
		t.Error("Different cities should produce different partition keys")
	}

	if key1 == "" {
		t.Error("Partition key should not be empty")
	}
}
