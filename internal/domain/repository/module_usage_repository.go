package repository

import (
	"context"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// ModuleUsageRepository contadores diarios de uso.
type ModuleUsageRepository interface {
	// Upsert crea la fila del día o sobrescribe solo los contadores no nil.
	Upsert(ctx context.Context, organizationID string, code licensing.ModuleCode, day time.Time, counters entity.UsageCounters) (*entity.ModuleUsage, error)
	// IncrementAPICalls suma delta a api_calls de la fila del día, creándola si falta.
	IncrementAPICalls(ctx context.Context, organizationID string, code licensing.ModuleCode, day time.Time, delta int64) error
	// ListRecent filas más recientes por fecha descendente; code "" = todos los módulos.
	ListRecent(ctx context.Context, organizationID string, code licensing.ModuleCode, limit int) ([]*entity.ModuleUsage, error)
}
