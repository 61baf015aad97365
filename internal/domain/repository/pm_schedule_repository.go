package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
)

// PMScheduleRepository define el puerto de persistencia para PMSchedule (DIP).
type PMScheduleRepository interface {
	Create(ctx context.Context, s *entity.PMSchedule) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.PMSchedule, error)
	Update(ctx context.Context, s *entity.PMSchedule) error
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.PMSchedule, error)
	ListDueBefore(ctx context.Context, organizationID string, until time.Time) ([]*entity.PMSchedule, error)
}
