package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.ModuleUsageRepository = (*ModuleUsageRepo)(nil)

// ModuleUsageRepo contadores diarios por (organización, módulo, día).
type ModuleUsageRepo struct {
	pool *pgxpool.Pool
}

// NewModuleUsageRepository construye el adaptador.
func NewModuleUsageRepository(pool *pgxpool.Pool) *ModuleUsageRepo {
	return &ModuleUsageRepo{pool: pool}
}

const usageColumns = `id, organization_id, module_code, usage_date, active_users,
	transactions, api_calls, storage_used, created_at, updated_at`

// Upsert crea la fila del día; en conflicto solo sobrescribe los contadores
// enviados (los NULL conservan el valor previo).
func (r *ModuleUsageRepo) Upsert(ctx context.Context, organizationID string, code licensing.ModuleCode, day time.Time, c entity.UsageCounters) (*entity.ModuleUsage, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO module_usage_tracking (`+usageColumns+`)
		VALUES ($1, $2, $3, $4,
			COALESCE($5::bigint, 0), COALESCE($6::bigint, 0), COALESCE($7::bigint, 0), COALESCE($8::bigint, 0),
			now(), now())
		ON CONFLICT (organization_id, module_code, usage_date) DO UPDATE SET
			active_users = COALESCE($5::bigint, module_usage_tracking.active_users),
			transactions = COALESCE($6::bigint, module_usage_tracking.transactions),
			api_calls = COALESCE($7::bigint, module_usage_tracking.api_calls),
			storage_used = COALESCE($8::bigint, module_usage_tracking.storage_used),
			updated_at = now()
		RETURNING `+usageColumns,
		uuid.New().String(), organizationID, string(code), day,
		c.ActiveUsers, c.Transactions, c.APICalls, c.StorageUsed,
	)
	u, err := scanUsage(row)
	if err != nil {
		return nil, fmt.Errorf("upsert module usage: %w", err)
	}
	return u, nil
}

// IncrementAPICalls suma delta en una sola sentencia para que accesos
// concurrentes no pierdan incrementos.
func (r *ModuleUsageRepo) IncrementAPICalls(ctx context.Context, organizationID string, code licensing.ModuleCode, day time.Time, delta int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO module_usage_tracking (`+usageColumns+`)
		VALUES ($1, $2, $3, $4, 0, 0, $5, 0, now(), now())
		ON CONFLICT (organization_id, module_code, usage_date) DO UPDATE SET
			api_calls = module_usage_tracking.api_calls + EXCLUDED.api_calls,
			updated_at = now()`,
		uuid.New().String(), organizationID, string(code), day, delta,
	)
	if err != nil {
		return fmt.Errorf("increment api calls: %w", err)
	}
	return nil
}

// ListRecent filas por fecha descendente; code "" = todos los módulos.
func (r *ModuleUsageRepo) ListRecent(ctx context.Context, organizationID string, code licensing.ModuleCode, limit int) ([]*entity.ModuleUsage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+usageColumns+` FROM module_usage_tracking
		WHERE organization_id = $1 AND ($2::text = '' OR module_code = $2)
		ORDER BY usage_date DESC, module_code
		LIMIT $3`, organizationID, string(code), limit)
	if err != nil {
		return nil, fmt.Errorf("list module usage: %w", err)
	}
	defer rows.Close()
	var out []*entity.ModuleUsage
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUsage(row rowScanner) (*entity.ModuleUsage, error) {
	var (
		u    entity.ModuleUsage
		code string
	)
	if err := row.Scan(&u.ID, &u.OrganizationID, &code, &u.Date, &u.ActiveUsers,
		&u.Transactions, &u.APICalls, &u.StorageUsed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.ModuleCode = licensing.ModuleCode(code)
	return &u, nil
}
