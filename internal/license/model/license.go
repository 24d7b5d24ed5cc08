package model

import (
	"errors"
	"time"
)

// License plans mirror what sales actually issues.
const (
	PlanStandard   = "standard"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// License statuses. Only an active license validates.
const (
	StatusActive    = "active"
	StatusRevoked   = "revoked"
	StatusSuspended = "suspended"
)

// ErrLicenseNotFound is returned when no license matches the presented key.
var ErrLicenseNotFound = errors.New("license not found")

// License is one issued customer license. ExpiresAt nil means lifetime.
type License struct {
	LicenseKey    string     `json:"license_key"`
	CustomerID    string     `json:"customer_id"`
	CustomerName  string     `json:"customer_name"`
	Plan          string     `json:"plan"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
	LastValidated *time.Time `json:"last_validated"`
}

// ValidationRequest is the payload posted by a customer instance checking
// its license. AppVersion and Timestamp are informational.
type ValidationRequest struct {
	LicenseKey string `json:"license_key"`
	CustomerID string `json:"customer_id"`
	AppVersion string `json:"app_version"`
	Timestamp  string `json:"timestamp"`
}

// Verdict codes, surfaced verbatim to the caller.
const (
	CodeInvalidLicense   = "INVALID_LICENSE"
	CodeLicenseInactive  = "LICENSE_INACTIVE"
	CodeLicenseExpired   = "LICENSE_EXPIRED"
	CodeCustomerMismatch = "CUSTOMER_MISMATCH"
)

// Verdict is the outcome of a validation check. License is set only when
// Valid is true.
type Verdict struct {
	Valid   bool
	Code    string
	Message string
	License *License
}
