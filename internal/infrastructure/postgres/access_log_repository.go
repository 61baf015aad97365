package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.AccessLogRepository = (*AccessLogRepo)(nil)

// AccessLogRepo bitácora de acceso a módulos (solo INSERT).
type AccessLogRepo struct {
	pool *pgxpool.Pool
}

// NewAccessLogRepository construye el adaptador.
func NewAccessLogRepository(pool *pgxpool.Pool) *AccessLogRepo {
	return &AccessLogRepo{pool: pool}
}

// Append inserta una entrada.
func (r *AccessLogRepo) Append(ctx context.Context, e *entity.ModuleAccessLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO module_access_logs (id, organization_id, module_code, user_id, action, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OrganizationID, string(e.ModuleCode), e.UserID, string(e.Action), e.IPAddress, e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert access log: %w", err)
	}
	return nil
}

// CountDistinctUsers usuarios distintos con acceso concedido desde since.
func (r *AccessLogRepo) CountDistinctUsers(ctx context.Context, organizationID string, code licensing.ModuleCode, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT user_id) FROM module_access_logs
		WHERE organization_id = $1 AND module_code = $2 AND action = 'accessed' AND created_at >= $3`,
		organizationID, string(code), since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count distinct users: %w", err)
	}
	return n, nil
}

// HasAccessedSince indica si el usuario tiene un acceso concedido desde since.
func (r *AccessLogRepo) HasAccessedSince(ctx context.Context, organizationID string, code licensing.ModuleCode, userID string, since time.Time) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM module_access_logs
			WHERE organization_id = $1 AND module_code = $2 AND user_id = $3
			  AND action = 'accessed' AND created_at >= $4
		)`, organizationID, string(code), userID, since,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check user access: %w", err)
	}
	return ok, nil
}
