package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hushlane/central/internal/registry/model"
)

// MemStore is an in-memory Store used by tests and as a degraded fallback
// when Postgres is unreachable at startup. Same-customer heartbeats are
// serialized by a lazily created per-customer mutex; the store-wide mutex
// only guards map access, so unrelated customers do not contend across the
// read-upsert-append sequence.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]*model.InstanceRecord
	history []*model.HistoryEntry
	nextID  int64

	keyMu sync.Mutex
	keys  map[string]*sync.Mutex
}

func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]*model.InstanceRecord),
		keys:    make(map[string]*sync.Mutex),
		nextID:  1,
	}
}

func (s *MemStore) keyLock(customerID string) *sync.Mutex {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()
	if m, ok := s.keys[customerID]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.keys[customerID] = m
	return m
}

func (s *MemStore) ApplyHeartbeat(ctx context.Context, up *model.InstanceRecord) (*HeartbeatResult, error) {
	lock := s.keyLock(up.CustomerID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &HeartbeatResult{}
	rec := *up

	if prev, ok := s.records[up.CustomerID]; ok {
		prevCopy := *prev
		res.Previous = &prevCopy
		rec.FirstSeen = prev.FirstSeen
	} else {
		rec.FirstSeen = up.LastHeartbeat
	}

	oldVersion := ""
	if res.Previous != nil {
		oldVersion = res.Previous.Version
	}
	if res.Previous == nil || oldVersion != rec.Version {
		entry := &model.HistoryEntry{
			ID:         s.nextID,
			CustomerID: rec.CustomerID,
			OldVersion: oldVersion,
			NewVersion: rec.Version,
			UpdatedAt:  time.Now().UTC(),
		}
		s.nextID++
		s.history = append(s.history, entry)
		entryCopy := *entry
		res.Transition = &entryCopy
	}

	s.records[rec.CustomerID] = &rec
	recCopy := rec
	res.Record = &recCopy
	return res, nil
}

func (s *MemStore) GetInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[customerID]
	if !ok {
		return nil, model.ErrInstanceNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

func (s *MemStore) ListInstances(ctx context.Context) ([]*model.InstanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*model.InstanceRecord, 0, len(s.records))
	for _, rec := range s.records {
		recCopy := *rec
		records = append(records, &recCopy)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastHeartbeat.After(records[j].LastHeartbeat)
	})
	return records, nil
}

func (s *MemStore) HistoryFor(ctx context.Context, customerID string) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*model.HistoryEntry
	for _, entry := range s.history {
		if entry.CustomerID == customerID {
			entryCopy := *entry
			entries = append(entries, &entryCopy)
		}
	}
	return entries, nil
}

func (s *MemStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	entries := make([]*model.HistoryEntry, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(entries) < limit; i-- {
		entryCopy := *s.history[i]
		entries = append(entries, &entryCopy)
	}
	return entries, nil
}

func (s *MemStore) Ping(ctx context.Context) error {
	return nil
}
