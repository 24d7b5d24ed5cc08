package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hushlane/central/internal/registry/model"
)

func apply(t *testing.T, s *MemStore, id, version string, at time.Time) *HeartbeatResult {
	t.Helper()
	res, err := s.ApplyHeartbeat(context.Background(), &model.InstanceRecord{
		CustomerID:    id,
		Version:       version,
		HealthStatus:  model.HealthHealthy,
		LastHeartbeat: at,
	})
	if err != nil {
		t.Fatalf("apply heartbeat: %v", err)
	}
	return res
}

func TestMemStoreFirstContact(t *testing.T) {
	s := NewMemStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	res := apply(t, s, "acme", "1.0.0", at)

	if res.Previous != nil {
		t.Errorf("previous = %+v, want nil on first contact", res.Previous)
	}
	if !res.Record.FirstSeen.Equal(at) {
		t.Errorf("first_seen = %v, want heartbeat time %v", res.Record.FirstSeen, at)
	}
	if res.Transition == nil {
		t.Fatal("expected a first-contact history entry")
	}
	if res.Transition.OldVersion != "" || res.Transition.NewVersion != "1.0.0" {
		t.Errorf("transition = (%q, %q), want (\"\", \"1.0.0\")", res.Transition.OldVersion, res.Transition.NewVersion)
	}
}

func TestMemStoreUpsertReturnsPrevious(t *testing.T) {
	s := NewMemStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	apply(t, s, "acme", "1.0.0", at)
	res := apply(t, s, "acme", "2.0.0", at.Add(time.Minute))

	if res.Previous == nil || res.Previous.Version != "1.0.0" {
		t.Fatalf("previous = %+v, want version 1.0.0", res.Previous)
	}
	if res.Transition == nil || res.Transition.OldVersion != "1.0.0" {
		t.Fatalf("transition = %+v, want old 1.0.0", res.Transition)
	}
	if !res.Record.FirstSeen.Equal(at) {
		t.Errorf("first_seen changed on upsert: %v", res.Record.FirstSeen)
	}
}

func TestMemStoreNoTransitionOnSameVersion(t *testing.T) {
	s := NewMemStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	apply(t, s, "acme", "1.0.0", at)
	res := apply(t, s, "acme", "1.0.0", at.Add(time.Minute))

	if res.Transition != nil {
		t.Errorf("unexpected transition for unchanged version: %+v", res.Transition)
	}
}

func TestMemStoreHistoryIDsAscendAcrossCustomers(t *testing.T) {
	s := NewMemStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	apply(t, s, "a", "1.0.0", at)
	apply(t, s, "b", "1.0.0", at)
	apply(t, s, "a", "2.0.0", at)

	recent, err := s.RecentHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent history: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(recent))
	}
	// newest first, with ids strictly descending
	for i := 1; i < len(recent); i++ {
		if recent[i].ID >= recent[i-1].ID {
			t.Errorf("recent history not descending by id: %d then %d", recent[i-1].ID, recent[i].ID)
		}
	}

	recent, _ = s.RecentHistory(context.Background(), 2)
	if len(recent) != 2 {
		t.Errorf("limit not honored: got %d entries", len(recent))
	}
}

func TestMemStoreHistoryIsRestartable(t *testing.T) {
	s := NewMemStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	apply(t, s, "acme", "1.0.0", at)
	apply(t, s, "acme", "2.0.0", at)

	first, err := s.HistoryFor(context.Background(), "acme")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	second, err := s.HistoryFor(context.Background(), "acme")
	if err != nil {
		t.Fatalf("history replay: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("replayed history differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if *first[i] != *second[i] {
			t.Errorf("entry %d differs between reads: %+v vs %+v", i, first[i], second[i])
		}
	}

	// mutating a returned entry must not affect the ledger
	first[0].NewVersion = "tampered"
	third, _ := s.HistoryFor(context.Background(), "acme")
	if third[0].NewVersion == "tampered" {
		t.Error("returned history entries alias internal state")
	}
}

func TestMemStoreGetInstanceNotFound(t *testing.T) {
	s := NewMemStore()
	_, err := s.GetInstance(context.Background(), "ghost")
	if !errors.Is(err, model.ErrInstanceNotFound) {
		t.Fatalf("expected ErrInstanceNotFound, got %v", err)
	}
}

func TestMemStoreListOrdersByLastHeartbeat(t *testing.T) {
	s := NewMemStore()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	apply(t, s, "old", "1.0.0", at.Add(-time.Hour))
	apply(t, s, "new", "1.0.0", at)
	apply(t, s, "mid", "1.0.0", at.Add(-30*time.Minute))

	records, err := s.ListInstances(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"new", "mid", "old"}
	for i, id := range want {
		if records[i].CustomerID != id {
			t.Errorf("records[%d] = %s, want %s", i, records[i].CustomerID, id)
		}
	}
}
