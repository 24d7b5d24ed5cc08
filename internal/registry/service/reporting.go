package service

import (
	"context"
	"sort"
	"time"

	"github.com/hushlane/central/internal/registry/database"
	"github.com/hushlane/central/internal/registry/model"
)

// Reporting aggregates the instance store into the operator dashboard view.
// Reads take no locks; a snapshot that races concurrent heartbeats is fine
// for a dashboard.
type Reporting struct {
	store      database.Store
	latest     model.VersionInfo
	staleAfter time.Duration

	// now is overridable for tests
	now func() time.Time
}

func NewReporting(store database.Store, latest model.VersionInfo, staleAfter time.Duration) *Reporting {
	if staleAfter <= 0 {
		staleAfter = 24 * time.Hour
	}
	return &Reporting{
		store:      store,
		latest:     latest,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Latest returns the catalog record. Pure read, never fails.
func (r *Reporting) Latest() model.VersionInfo {
	return r.latest
}

// StaleAfter exposes the configured staleness threshold.
func (r *Reporting) StaleAfter() time.Duration {
	return r.staleAfter
}

// Summarize scans the instance store and computes counts by health and by
// version, the number of instances behind the catalog version, and the
// stale instances ordered stalest first.
func (r *Reporting) Summarize(ctx context.Context) (*model.Summary, error) {
	records, err := r.store.ListInstances(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	summary := &model.Summary{
		TotalInstances: len(records),
		ByHealth:       make(map[model.HealthStatus]int),
		ByVersion:      make(map[string]int),
	}

	var stale []*model.InstanceRecord
	for _, rec := range records {
		summary.ByHealth[rec.HealthStatus]++
		summary.ByVersion[rec.Version]++
		if rec.Version != r.latest.Version {
			summary.Outdated++
		}
		if rec.Stale(now, r.staleAfter) {
			stale = append(stale, rec)
		}
	}

	sort.Slice(stale, func(i, j int) bool {
		return stale[i].LastHeartbeat.Before(stale[j].LastHeartbeat)
	})
	summary.StaleInstances = make([]string, 0, len(stale))
	for _, rec := range stale {
		summary.StaleInstances = append(summary.StaleInstances, rec.CustomerID)
	}

	return summary, nil
}
