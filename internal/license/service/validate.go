package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hushlane/central/internal/license/model"
	"github.com/rs/zerolog/log"
)

// LicenseStore is what validation needs from persistence.
type LicenseStore interface {
	GetByKey(ctx context.Context, licenseKey string) (*model.License, error)
	TouchValidated(ctx context.Context, licenseKey string, at time.Time) error
}

// Service checks presented license keys against issued licenses.
type Service struct {
	store LicenseStore

	// now is overridable for tests
	now func() time.Time
}

func NewService(store LicenseStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Validate runs the check chain: key exists, license active, not expired,
// customer matches. The first failing check decides the verdict; storage
// failures are returned as errors, not verdicts.
func (s *Service) Validate(ctx context.Context, req *model.ValidationRequest) (*model.Verdict, error) {
	lic, err := s.store.GetByKey(ctx, req.LicenseKey)
	if errors.Is(err, model.ErrLicenseNotFound) {
		return &model.Verdict{Code: model.CodeInvalidLicense, Message: "License key not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	if lic.Status != model.StatusActive {
		return &model.Verdict{
			Code:    model.CodeLicenseInactive,
			Message: fmt.Sprintf("License status: %s", lic.Status),
		}, nil
	}

	now := s.now().UTC()
	if lic.ExpiresAt != nil && now.After(*lic.ExpiresAt) {
		return &model.Verdict{
			Code:    model.CodeLicenseExpired,
			Message: fmt.Sprintf("License expired on %s", lic.ExpiresAt.Format("2006-01-02")),
		}, nil
	}

	if lic.CustomerID != req.CustomerID {
		return &model.Verdict{
			Code:    model.CodeCustomerMismatch,
			Message: "License key does not match customer ID",
		}, nil
	}

	if err := s.store.TouchValidated(ctx, lic.LicenseKey, now); err != nil {
		// Validation already succeeded; a failed touch is not worth a 5xx.
		log.Error().Err(err).Str("customer_id", lic.CustomerID).Msg("failed to record license validation time")
	}

	return &model.Verdict{Valid: true, Message: "License valid", License: lic}, nil
}
