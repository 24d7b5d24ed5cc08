package database

import (
	"context"

	"github.com/hushlane/central/internal/registry/model"
)

// HeartbeatResult is the outcome of one atomically applied heartbeat.
// Previous is nil on first contact. Transition is nil when the reported
// version matched the stored one, so unchanged heartbeats never grow the
// ledger.
type HeartbeatResult struct {
	Record     *model.InstanceRecord
	Previous   *model.InstanceRecord
	Transition *model.HistoryEntry
}

// Store is the durable registry state: the instance table plus the
// append-only version history ledger.
//
// ApplyHeartbeat must serialize concurrent calls for the same CustomerID so
// that read-old-version, upsert, and conditional ledger append are one atomic
// unit. Heartbeats for different customers proceed in parallel.
type Store interface {
	ApplyHeartbeat(ctx context.Context, up *model.InstanceRecord) (*HeartbeatResult, error)
	GetInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error)
	ListInstances(ctx context.Context) ([]*model.InstanceRecord, error)
	HistoryFor(ctx context.Context, customerID string) ([]*model.HistoryEntry, error)
	RecentHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error)
	Ping(ctx context.Context) error
}
