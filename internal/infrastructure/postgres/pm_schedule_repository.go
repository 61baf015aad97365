package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.PMScheduleRepository = (*PMScheduleRepo)(nil)

// PMScheduleRepo implementación del repositorio de programas de mantenimiento preventivo.
type PMScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewPMScheduleRepository construye el repositorio.
func NewPMScheduleRepository(pool *pgxpool.Pool) *PMScheduleRepo {
	return &PMScheduleRepo{pool: pool}
}

const pmColumns = `id, organization_id, asset_id, title, frequency_days, next_due_at, created_at, updated_at`

// Create inserta un programa.
func (r *PMScheduleRepo) Create(ctx context.Context, s *entity.PMSchedule) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pm_schedules (`+pmColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.OrganizationID, s.AssetID, s.Title, s.FrequencyDays, s.NextDueAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("pm schedule duplicado: %w", err)
		}
		return fmt.Errorf("insert pm schedule: %w", err)
	}
	return nil
}

// GetByID busca dentro de la organización; nil, nil si no existe.
func (r *PMScheduleRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.PMSchedule, error) {
	s, err := scanPMSchedule(r.pool.QueryRow(ctx,
		`SELECT `+pmColumns+` FROM pm_schedules WHERE organization_id = $1 AND id = $2`,
		organizationID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pm schedule: %w", err)
	}
	return s, nil
}

// Update actualiza título, frecuencia y próxima fecha.
func (r *PMScheduleRepo) Update(ctx context.Context, s *entity.PMSchedule) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pm_schedules
		SET asset_id = $3, title = $4, frequency_days = $5, next_due_at = $6, updated_at = $7
		WHERE organization_id = $1 AND id = $2`,
		s.OrganizationID, s.ID, s.AssetID, s.Title, s.FrequencyDays, s.NextDueAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update pm schedule: %w", err)
	}
	return nil
}

// ListByOrganization lista paginada por próxima fecha.
func (r *PMScheduleRepo) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]*entity.PMSchedule, error) {
	return r.list(ctx, `SELECT `+pmColumns+` FROM pm_schedules
		WHERE organization_id = $1 ORDER BY next_due_at, id LIMIT $2 OFFSET $3`,
		organizationID, limit, offset)
}

// ListDueBefore programas con próxima fecha hasta until.
func (r *PMScheduleRepo) ListDueBefore(ctx context.Context, organizationID string, until time.Time) ([]*entity.PMSchedule, error) {
	return r.list(ctx, `SELECT `+pmColumns+` FROM pm_schedules
		WHERE organization_id = $1 AND next_due_at <= $2 ORDER BY next_due_at, id`,
		organizationID, until)
}

func (r *PMScheduleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.PMSchedule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pm schedules: %w", err)
	}
	defer rows.Close()
	var out []*entity.PMSchedule
	for rows.Next() {
		s, err := scanPMSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pm schedule: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanPMSchedule(row rowScanner) (*entity.PMSchedule, error) {
	var s entity.PMSchedule
	if err := row.Scan(&s.ID, &s.OrganizationID, &s.AssetID, &s.Title, &s.FrequencyDays,
		&s.NextDueAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
