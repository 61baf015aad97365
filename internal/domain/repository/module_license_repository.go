package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// ModuleLicenseRepository persistencia de licencias. Las licencias nunca se
// borran: los cambios de estado se hacen con UpdateStatus.
type ModuleLicenseRepository interface {
	// Get devuelve nil, nil si la organización no tiene licencia del módulo.
	Get(ctx context.Context, organizationID string, code licensing.ModuleCode) (*entity.ModuleLicense, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*entity.ModuleLicense, error)
	// UpsertActivation crea o reactiva la licencia sobrescribiendo vencimiento,
	// límites y usuario que activa.
	UpsertActivation(ctx context.Context, l *entity.ModuleLicense) (*entity.ModuleLicense, error)
	// UpsertTrial crea o pasa a trial la licencia; solo toca estado, fechas y TierLevel.
	UpsertTrial(ctx context.Context, l *entity.ModuleLicense) (*entity.ModuleLicense, error)
	UpdateStatus(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.LicenseStatus) error
	// ListExpiringBetween licencias active/trial con vencimiento en [from, to].
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.ModuleLicense, error)
	// ListExpiredBefore licencias con los estados dados y vencimiento anterior a cutoff.
	ListExpiredBefore(ctx context.Context, cutoff time.Time, statuses ...entity.LicenseStatus) ([]*entity.ModuleLicense, error)
	ListByStatus(ctx context.Context, status entity.LicenseStatus) ([]*entity.ModuleLicense, error)
}
