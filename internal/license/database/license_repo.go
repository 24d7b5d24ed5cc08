package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	lmodel "github.com/hushlane/central/internal/license/model"
	rdb "github.com/hushlane/central/internal/registry/database"
	"github.com/jackc/pgx/v5"
)

// LicenseRepo reads and touches licenses over the shared registry pool.
// License issuance happens out-of-band through licensectl.
type LicenseRepo struct {
	db *rdb.Database
}

func NewLicenseRepo(db *rdb.Database) *LicenseRepo {
	return &LicenseRepo{db: db}
}

// EnsureSchema creates the licenses table when missing.
func (r *LicenseRepo) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS licenses (
		license_key    TEXT PRIMARY KEY,
		customer_id    TEXT NOT NULL UNIQUE,
		customer_name  TEXT NOT NULL,
		plan           TEXT NOT NULL DEFAULT 'standard',
		status         TEXT NOT NULL DEFAULT 'active',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at     TIMESTAMPTZ,
		last_validated TIMESTAMPTZ
	)`
	if _, err := r.db.Pool().Exec(ctx, q); err != nil {
		return fmt.Errorf("failed to ensure licenses schema: %w", err)
	}
	return nil
}

func (r *LicenseRepo) GetByKey(ctx context.Context, licenseKey string) (*lmodel.License, error) {
	const q = `
		SELECT license_key, customer_id, customer_name, plan, status, created_at, expires_at, last_validated
		FROM licenses
		WHERE license_key = $1
	`
	lic := new(lmodel.License)
	err := r.db.Pool().QueryRow(ctx, q, licenseKey).Scan(
		&lic.LicenseKey, &lic.CustomerID, &lic.CustomerName, &lic.Plan, &lic.Status,
		&lic.CreatedAt, &lic.ExpiresAt, &lic.LastValidated,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, lmodel.ErrLicenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get license: %w", err)
	}
	return lic, nil
}

// TouchValidated records a successful validation time.
func (r *LicenseRepo) TouchValidated(ctx context.Context, licenseKey string, at time.Time) error {
	const q = `UPDATE licenses SET last_validated = $2 WHERE license_key = $1`
	if _, err := r.db.Pool().Exec(ctx, q, licenseKey, at); err != nil {
		return fmt.Errorf("touch license: %w", err)
	}
	return nil
}
