package repository

import (
	"context"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
)

// ModuleRequestRepository solicitudes de módulos.
type ModuleRequestRepository interface {
	Create(ctx context.Context, r *entity.ModuleRequest) error
	GetByID(ctx context.Context, id string) (*entity.ModuleRequest, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*entity.ModuleRequest, error)
	ListPending(ctx context.Context) ([]*entity.ModuleRequest, error)
	UpdateReview(ctx context.Context, r *entity.ModuleRequest) error
}
