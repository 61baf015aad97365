package entity

import (
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// LicenseStatus estado de una licencia de módulo.
type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "active"
	LicenseInactive  LicenseStatus = "inactive"
	LicenseTrial     LicenseStatus = "trial"
	LicenseExpired   LicenseStatus = "expired"
	LicenseSuspended LicenseStatus = "suspended"
)

// ModuleLicense es el derecho de una organización a usar un módulo.
// Existe a lo sumo una por (OrganizationID, ModuleCode) y nunca se borra.
type ModuleLicense struct {
	ID             string
	OrganizationID string
	ModuleCode     licensing.ModuleCode
	Status         LicenseStatus
	TierLevel      string
	ActivatedAt    time.Time
	ExpiresAt      *time.Time // nil = sin vencimiento
	MaxUsers       *int       // nil = sin límite
	UsageLimits    *UsageLimits
	ActivatedByID  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpiredAt indica si la licencia tiene fecha de vencimiento anterior a now.
func (l *ModuleLicense) IsExpiredAt(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// IsActiveAt aplica la regla de licencia vigente: status active y sin vencer.
// Las licencias trial no cuentan como activas.
func (l *ModuleLicense) IsActiveAt(now time.Time) bool {
	return l.Status == LicenseActive && !l.IsExpiredAt(now)
}
