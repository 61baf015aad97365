package repository

import (
	"context"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
)

// OrganizationRepository define el puerto de persistencia para Organization (DIP).
// La implementación vive en infrastructure. GetByID devuelve nil, nil si no existe.
type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	UpdateTier(ctx context.Context, id, tier string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Organization, error)
}
