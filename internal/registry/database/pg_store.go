package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/hushlane/central/internal/registry/model"
	"github.com/jackc/pgx/v5"
)

// PgStore is the PostgreSQL-backed Store. Same-customer heartbeats are
// serialized with a transaction-scoped advisory lock keyed by
// hashtext(customer_id); unrelated customers never contend.
type PgStore struct {
	db *Database
}

func NewPgStore(db *Database) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) ApplyHeartbeat(ctx context.Context, up *model.InstanceRecord) (*HeartbeatResult, error) {
	tx, err := s.db.Pool().Begin(ctx)
	if err != nil {
		return nil, model.NewStorageError("begin heartbeat tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, up.CustomerID); err != nil {
		return nil, model.NewStorageError("lock customer key", err)
	}

	prev, err := scanInstance(tx.QueryRow(ctx, selectInstanceSQL+` WHERE customer_id = $1`, up.CustomerID))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewStorageError("read previous record", err)
	}

	res := &HeartbeatResult{Previous: prev}

	rec := *up
	if prev != nil {
		rec.FirstSeen = prev.FirstSeen
	} else {
		rec.FirstSeen = up.LastHeartbeat
	}

	const upsert = `
		INSERT INTO customer_instances
			(customer_id, version, url, health_status, last_heartbeat, first_seen, total_users, total_messages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (customer_id) DO UPDATE SET
			version        = EXCLUDED.version,
			url            = EXCLUDED.url,
			health_status  = EXCLUDED.health_status,
			last_heartbeat = EXCLUDED.last_heartbeat,
			total_users    = EXCLUDED.total_users,
			total_messages = EXCLUDED.total_messages
	`
	if _, err := tx.Exec(ctx, upsert,
		rec.CustomerID, rec.Version, rec.URL, string(rec.HealthStatus),
		rec.LastHeartbeat, rec.FirstSeen, rec.TotalUsers, rec.TotalMessages,
	); err != nil {
		return nil, model.NewStorageError("upsert instance", err)
	}

	oldVersion := ""
	if prev != nil {
		oldVersion = prev.Version
	}
	if prev == nil || oldVersion != rec.Version {
		entry := &model.HistoryEntry{
			CustomerID: rec.CustomerID,
			OldVersion: oldVersion,
			NewVersion: rec.Version,
		}
		const appendHistory = `
			INSERT INTO version_history (customer_id, old_version, new_version)
			VALUES ($1, $2, $3)
			RETURNING id, updated_at
		`
		if err := tx.QueryRow(ctx, appendHistory, entry.CustomerID, entry.OldVersion, entry.NewVersion).
			Scan(&entry.ID, &entry.UpdatedAt); err != nil {
			return nil, model.NewStorageError("append version history", err)
		}
		res.Transition = entry
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, model.NewStorageError("commit heartbeat tx", err)
	}

	res.Record = &rec
	return res, nil
}

const selectInstanceSQL = `
	SELECT customer_id, version, url, health_status, last_heartbeat, first_seen, total_users, total_messages
	FROM customer_instances`

func (s *PgStore) GetInstance(ctx context.Context, customerID string) (*model.InstanceRecord, error) {
	rec, err := scanInstance(s.db.Pool().QueryRow(ctx, selectInstanceSQL+` WHERE customer_id = $1`, customerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrInstanceNotFound
	}
	if err != nil {
		return nil, model.NewStorageError("get instance", err)
	}
	return rec, nil
}

func (s *PgStore) ListInstances(ctx context.Context) ([]*model.InstanceRecord, error) {
	rows, err := s.db.Pool().Query(ctx, selectInstanceSQL+` ORDER BY last_heartbeat DESC`)
	if err != nil {
		return nil, model.NewStorageError("list instances", err)
	}
	defer rows.Close()

	var records []*model.InstanceRecord
	for rows.Next() {
		rec, err := scanInstance(rows)
		if err != nil {
			return nil, model.NewStorageError("scan instance", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("iterate instances", err)
	}
	return records, nil
}

func (s *PgStore) HistoryFor(ctx context.Context, customerID string) ([]*model.HistoryEntry, error) {
	const q = `
		SELECT id, customer_id, old_version, new_version, updated_at
		FROM version_history
		WHERE customer_id = $1
		ORDER BY id ASC
	`
	return s.queryHistory(ctx, q, customerID)
}

func (s *PgStore) RecentHistory(ctx context.Context, limit int) ([]*model.HistoryEntry, error) {
	const q = `
		SELECT id, customer_id, old_version, new_version, updated_at
		FROM version_history
		ORDER BY id DESC
		LIMIT $1
	`
	return s.queryHistory(ctx, q, limit)
}

func (s *PgStore) queryHistory(ctx context.Context, query string, args ...any) ([]*model.HistoryEntry, error) {
	rows, err := s.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, model.NewStorageError("query version history", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	for rows.Next() {
		entry := new(model.HistoryEntry)
		if err := rows.Scan(&entry.ID, &entry.CustomerID, &entry.OldVersion, &entry.NewVersion, &entry.UpdatedAt); err != nil {
			return nil, model.NewStorageError("scan version history", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("iterate version history", err)
	}
	return entries, nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("registry store ping: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (*model.InstanceRecord, error) {
	rec := new(model.InstanceRecord)
	var health string
	if err := row.Scan(&rec.CustomerID, &rec.Version, &rec.URL, &health,
		&rec.LastHeartbeat, &rec.FirstSeen, &rec.TotalUsers, &rec.TotalMessages); err != nil {
		return nil, err
	}
	rec.HealthStatus = model.HealthStatus(health)
	return rec, nil
}
