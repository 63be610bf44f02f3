package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quantcasa/internal/domain"
)

func newAlert(id string, status domain.Status) *domain.Alert {
	return &domain.Alert{
		ID:          id,
		Label:       "alert " + id,
		City:        "Bengaluru",
		Mode:        domain.ModeBuy,
		Condition:   domain.ConditionBelow,
		TargetPrice: 7500000,
		Status:      status,
	}
}

func TestAlertRepository_InsertPrepends(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Insert(ctx, newAlert(fmt.Sprintf("a%d", i), domain.StatusActive)); err != nil {
			t.Fatalf("failed to insert alert: %v", err)
		}
	}

	alerts, err := repo.Snapshot(ctx)
	if err != nil {
		t.Fatalf("failed to snapshot: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	// Most recent first.
	for i, want := range []string{"a2", "a1", "a0"} {
		if alerts[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, alerts[i].ID)
		}
	}
}

func TestAlertRepository_InsertStoresCopy(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	alert := newAlert("a1", domain.StatusActive)
	if err := repo.Insert(ctx, alert); err != nil {
		t.Fatalf("failed to insert alert: %v", err)
	}

	alert.Label = "mutated"

	stored, err := repo.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("failed to get alert: %v", err)
	}
	if stored.Label == "mutated" {
		t.Error("expected stored alert to be unaffected by caller mutation")
	}
}

func TestAlertRepository_UpdateKeepsPosition(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	repo.Insert(ctx, newAlert("a1", domain.StatusActive))
	repo.Insert(ctx, newAlert("a2", domain.StatusActive))

	updated := newAlert("a1", domain.StatusTriggered)
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("failed to update alert: %v", err)
	}

	alerts, _ := repo.Snapshot(ctx)
	if alerts[0].ID != "a2" || alerts[1].ID != "a1" {
		t.Errorf("expected order a2, a1 after update, got %s, %s", alerts[0].ID, alerts[1].ID)
	}
	if alerts[1].Status != domain.StatusTriggered {
		t.Errorf("expected updated status triggered, got %s", alerts[1].Status)
	}
}

func TestAlertRepository_UpdateNotFound(t *testing.T) {
	repo := NewAlertRepository()

	err := repo.Update(context.Background(), newAlert("missing", domain.StatusActive))
	if !errors.Is(err, domain.ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestAlertRepository_Delete(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	repo.Insert(ctx, newAlert("a1", domain.StatusActive))

	if err := repo.Delete(ctx, "a1"); err != nil {
		t.Fatalf("failed to delete alert: %v", err)
	}
	if _, err := repo.GetByID(ctx, "a1"); !errors.Is(err, domain.ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "a1"); !errors.Is(err, domain.ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound on second delete, got %v", err)
	}
}

func TestAlertRepository_DeleteByStatus(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	repo.Insert(ctx, newAlert("a1", domain.StatusActive))
	repo.Insert(ctx, newAlert("a2", domain.StatusTriggered))
	repo.Insert(ctx, newAlert("a3", domain.StatusPaused))
	repo.Insert(ctx, newAlert("a4", domain.StatusTriggered))

	removed, err := repo.DeleteByStatus(ctx, domain.StatusTriggered)
	if err != nil {
		t.Fatalf("failed to delete by status: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	alerts, _ := repo.Snapshot(ctx)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(alerts))
	}
	// Untouched alerts keep their relative order.
	if alerts[0].ID != "a3" || alerts[1].ID != "a1" {
		t.Errorf("expected order a3, a1, got %s, %s", alerts[0].ID, alerts[1].ID)
	}
}

func TestAlertRepository_ListFilters(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	a1 := newAlert("a1", domain.StatusActive)
	a2 := newAlert("a2", domain.StatusTriggered)
	a3 := newAlert("a3", domain.StatusActive)
	a3.Mode = domain.ModeRent
	a3.City = "Mumbai"
	repo.Insert(ctx, a1)
	repo.Insert(ctx, a2)
	repo.Insert(ctx, a3)

	active, err := repo.List(ctx, domain.AlertFilter{Status: domain.StatusActive})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active alerts, got %d", len(active))
	}

	rent, _ := repo.List(ctx, domain.AlertFilter{Mode: domain.ModeRent})
	if len(rent) != 1 || rent[0].ID != "a3" {
		t.Errorf("expected only a3 for rent mode, got %d results", len(rent))
	}

	// City matching is case-insensitive.
	mumbai, _ := repo.List(ctx, domain.AlertFilter{City: "MUMBAI"})
	if len(mumbai) != 1 || mumbai[0].ID != "a3" {
		t.Errorf("expected only a3 for MUMBAI, got %d results", len(mumbai))
	}
}

func TestAlertRepository_ListPagination(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		repo.Insert(ctx, newAlert(fmt.Sprintf("a%d", i), domain.StatusActive))
	}

	page, err := repo.List(ctx, domain.AlertFilter{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 results, got %d", len(page))
	}
	if page[0].ID != "a3" || page[1].ID != "a2" {
		t.Errorf("expected a3, a2, got %s, %s", page[0].ID, page[1].ID)
	}

	beyond, _ := repo.List(ctx, domain.AlertFilter{Offset: 10})
	if len(beyond) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(beyond))
	}
}

func TestAlertRepository_SeedReplacesAndDedupes(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	repo.Insert(ctx, newAlert("old", domain.StatusActive))

	seed := []*domain.Alert{
		newAlert("a1", domain.StatusActive),
		newAlert("a2", domain.StatusTriggered),
		newAlert("a1", domain.StatusPaused), // duplicate, first wins
	}
	if err := repo.Seed(ctx, seed); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	alerts, _ := repo.Snapshot(ctx)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts after seed, got %d", len(alerts))
	}
	if alerts[0].ID != "a1" || alerts[1].ID != "a2" {
		t.Errorf("expected seed order a1, a2, got %s, %s", alerts[0].ID, alerts[1].ID)
	}
	if alerts[0].Status != domain.StatusActive {
		t.Errorf("expected first duplicate to win, got status %s", alerts[0].Status)
	}
}

func TestAlertRepository_Counts(t *testing.T) {
	repo := NewAlertRepository()
	ctx := context.Background()

	repo.Insert(ctx, newAlert("a1", domain.StatusActive))
	repo.Insert(ctx, newAlert("a2", domain.StatusActive))
	repo.Insert(ctx, newAlert("a3", domain.StatusTriggered))
	repo.Insert(ctx, newAlert("a4", domain.StatusPaused))

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if counts.Active != 2 || counts.Triggered != 1 || counts.Paused != 1 || counts.Total != 4 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}
