package service

import (
	"context"
	"strings"
	"time"

	"github.com/hushlane/central/internal/registry/database"
	"github.com/hushlane/central/internal/registry/model"
	"github.com/rs/zerolog/log"
)

// Processor is the single write path for customer heartbeats: validate the
// payload, normalize it, and apply it to the store as one atomic unit.
type Processor struct {
	store database.Store
	cache InstanceCache

	// now is overridable for tests
	now func() time.Time
}

func NewProcessor(store database.Store, cache InstanceCache) *Processor {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Processor{
		store: store,
		cache: cache,
		now:   time.Now,
	}
}

// Process applies one heartbeat. On ValidationError nothing is written; on
// StorageError the heartbeat is dropped whole and the caller may retry.
func (p *Processor) Process(ctx context.Context, hb *model.Heartbeat) (*model.InstanceRecord, error) {
	if err := validateHeartbeat(hb); err != nil {
		heartbeatsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// The reported timestamp is advisory only; receipt time is authoritative
	// so client clock skew cannot corrupt staleness classification.
	now := p.now().UTC()

	up := &model.InstanceRecord{
		CustomerID:    strings.TrimSpace(hb.CustomerID),
		Version:       strings.TrimSpace(hb.Version),
		URL:           strings.TrimSpace(hb.URL),
		HealthStatus:  model.ParseHealthStatus(hb.Health),
		LastHeartbeat: now,
		TotalUsers:    hb.TotalUsers,
		TotalMessages: hb.TotalMessages,
	}

	res, err := p.store.ApplyHeartbeat(ctx, up)
	if err != nil {
		heartbeatsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	heartbeatsTotal.WithLabelValues("accepted").Inc()

	if res.Previous == nil {
		instancesTracked.Inc()
		log.Info().
			Str("customer_id", res.Record.CustomerID).
			Str("version", res.Record.Version).
			Msg("new customer instance registered")
	}
	if res.Transition != nil {
		versionChangesTotal.Inc()
		log.Info().
			Str("customer_id", res.Transition.CustomerID).
			Str("old_version", res.Transition.OldVersion).
			Str("new_version", res.Transition.NewVersion).
			Int64("history_id", res.Transition.ID).
			Msg("version transition recorded")
	}

	// Write-through to cache. Errors are logged, never surfaced: the store
	// already holds the authoritative record.
	if err := p.cache.WriteInstance(ctx, res.Record); err != nil {
		log.Error().Err(err).Str("customer_id", res.Record.CustomerID).Msg("failed to cache instance state")
	}

	return res.Record, nil
}

func validateHeartbeat(hb *model.Heartbeat) error {
	if strings.TrimSpace(hb.CustomerID) == "" {
		return model.NewValidationError("customer_id", "is required")
	}
	if strings.TrimSpace(hb.Version) == "" {
		return model.NewValidationError("version", "is required")
	}
	// Negative totals are rejected rather than clamped; clamping would
	// silently corrupt usage statistics.
	if hb.TotalUsers < 0 {
		return model.NewValidationError("total_users", "must not be negative")
	}
	if hb.TotalMessages < 0 {
		return model.NewValidationError("total_messages", "must not be negative")
	}
	return nil
}
