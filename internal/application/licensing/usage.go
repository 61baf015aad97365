package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// UsageStatsLimit filas devueltas por Stats.
const UsageStatsLimit = 30

// UsageRecorder registra contadores diarios de uso por módulo.
type UsageRecorder struct {
	usage repository.ModuleUsageRepository
	now   Clock
}

// NewUsageRecorder construye el registrador.
func NewUsageRecorder(usage repository.ModuleUsageRepository) *UsageRecorder {
	return &UsageRecorder{usage: usage, now: time.Now}
}

// Track crea o actualiza la fila del día (UTC). Solo se sobrescriben los
// contadores presentes en la entrada.
func (r *UsageRecorder) Track(ctx context.Context, in dto.TrackUsageRequest) (*dto.ModuleUsageResponse, error) {
	code, err := ParseModule(in.ModuleCode)
	if err != nil {
		return nil, err
	}
	day := r.now().UTC().Truncate(24 * time.Hour)
	u, err := r.usage.Upsert(ctx, in.OrganizationID, code, day, entity.UsageCounters{
		ActiveUsers:  in.ActiveUsers,
		Transactions: in.Transactions,
		APICalls:     in.APICalls,
		StorageUsed:  in.StorageUsed,
	})
	if err != nil {
		return nil, fmt.Errorf("track usage: %w", err)
	}
	return toModuleUsageResponse(u), nil
}

// CountAPICall suma una llamada a api_calls del día (UTC).
func (r *UsageRecorder) CountAPICall(ctx context.Context, organizationID string, code licensing.ModuleCode) error {
	day := r.now().UTC().Truncate(24 * time.Hour)
	return r.usage.IncrementAPICalls(ctx, organizationID, code, day, 1)
}

// Stats devuelve las últimas filas por fecha descendente; code "" = todos.
func (r *UsageRecorder) Stats(ctx context.Context, organizationID string, code licensing.ModuleCode) ([]dto.ModuleUsageResponse, error) {
	list, err := r.usage.ListRecent(ctx, organizationID, code, UsageStatsLimit)
	if err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}
	out := make([]dto.ModuleUsageResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *toModuleUsageResponse(u))
	}
	return out, nil
}

func toModuleUsageResponse(u *entity.ModuleUsage) *dto.ModuleUsageResponse {
	return &dto.ModuleUsageResponse{
		OrganizationID: u.OrganizationID,
		ModuleCode:     string(u.ModuleCode),
		Date:           u.Date,
		ActiveUsers:    u.ActiveUsers,
		Transactions:   u.Transactions,
		APICalls:       u.APICalls,
		StorageUsed:    u.StorageUsed,
		UpdatedAt:      u.UpdatedAt,
	}
}
