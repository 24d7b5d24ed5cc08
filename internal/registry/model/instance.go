package model

import (
	"strings"
	"time"
)

// HealthStatus is the coarse health classification reported by a customer
// instance. Self-reported values are advisory; anything unrecognized is
// normalized to HealthUnknown rather than rejected.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// ParseHealthStatus maps a reported health string to a known status.
// Empty or unrecognized input yields HealthUnknown.
func ParseHealthStatus(s string) HealthStatus {
	switch HealthStatus(strings.ToLower(strings.TrimSpace(s))) {
	case HealthHealthy:
		return HealthHealthy
	case HealthDegraded:
		return HealthDegraded
	case HealthUnhealthy:
		return HealthUnhealthy
	default:
		return HealthUnknown
	}
}

// InstanceRecord is the registry's view of one deployed customer instance,
// keyed by CustomerID. FirstSeen is set on first contact and never changes;
// every other mutable field reflects the most recent accepted heartbeat.
type InstanceRecord struct {
	CustomerID    string       `json:"customer_id"`
	Version       string       `json:"version"`
	URL           string       `json:"url"`
	HealthStatus  HealthStatus `json:"health_status"`
	LastHeartbeat time.Time    `json:"last_heartbeat"`
	FirstSeen     time.Time    `json:"first_seen"`
	TotalUsers    int64        `json:"total_users"`
	TotalMessages int64        `json:"total_messages"`
}

// Stale reports whether the record's last heartbeat is older than threshold
// at the given reference time.
func (r *InstanceRecord) Stale(now time.Time, threshold time.Duration) bool {
	return now.Sub(r.LastHeartbeat) > threshold
}

// Heartbeat is the self-report payload posted by a customer instance.
// Timestamp is an informational hint only; the server's receipt time is
// authoritative for freshness.
type Heartbeat struct {
	CustomerID    string `json:"customer_id"`
	Version       string `json:"version"`
	URL           string `json:"url"`
	Health        string `json:"health"`
	Timestamp     string `json:"timestamp"`
	TotalUsers    int64  `json:"total_users"`
	TotalMessages int64  `json:"total_messages"`
}

// HistoryEntry is one detected version transition. OldVersion is empty for
// the first-ever heartbeat of a customer. Entries for a customer ordered by
// ID form a chain: each OldVersion equals the previous entry's NewVersion.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	CustomerID string    `json:"customer_id"`
	OldVersion string    `json:"old_version"`
	NewVersion string    `json:"new_version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// VersionInfo is the catalog record describing the latest available release.
type VersionInfo struct {
	Version      string `json:"version"`
	Released     string `json:"released"`
	ChangelogURL string `json:"changelog_url"`
	Critical     bool   `json:"critical"`
}

// Summary is the aggregate dashboard view over the instance store.
type Summary struct {
	TotalInstances int                  `json:"total_instances"`
	ByHealth       map[HealthStatus]int `json:"by_health"`
	ByVersion      map[string]int       `json:"by_version"`
	Outdated       int                  `json:"outdated"`
	StaleInstances []string             `json:"stale_instances"`
}
