package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.ModuleRequestRepository = (*ModuleRequestRepo)(nil)

// ModuleRequestRepo solicitudes de prueba/activación.
type ModuleRequestRepo struct {
	pool *pgxpool.Pool
}

// NewModuleRequestRepository construye el adaptador.
func NewModuleRequestRepository(pool *pgxpool.Pool) *ModuleRequestRepo {
	return &ModuleRequestRepo{pool: pool}
}

const requestColumns = `id, organization_id, requested_by_id, module_code, request_type, justification,
	expected_usage, status, review_notes, reviewed_by_id, reviewed_at, created_at, updated_at`

// Create inserta la solicitud.
func (r *ModuleRequestRepo) Create(ctx context.Context, m *entity.ModuleRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO module_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.OrganizationID, m.RequestedByID, string(m.ModuleCode), m.RequestType, m.Justification,
		m.ExpectedUsage, m.Status, m.ReviewNotes, m.ReviewedByID, m.ReviewedAt, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert module request: %w", err)
	}
	return nil
}

// GetByID nil, nil si no existe.
func (r *ModuleRequestRepo) GetByID(ctx context.Context, id string) (*entity.ModuleRequest, error) {
	m, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM module_requests WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get module request: %w", err)
	}
	return m, nil
}

// ListByOrganization solicitudes de la organización, más recientes primero.
func (r *ModuleRequestRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*entity.ModuleRequest, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM module_requests
		WHERE organization_id = $1 ORDER BY created_at DESC`, organizationID)
}

// ListPending cola de revisión, más antiguas primero.
func (r *ModuleRequestRepo) ListPending(ctx context.Context) ([]*entity.ModuleRequest, error) {
	return r.list(ctx, `SELECT `+requestColumns+` FROM module_requests
		WHERE status = 'pending' ORDER BY created_at`)
}

// UpdateReview guarda el resultado de la revisión.
func (r *ModuleRequestRepo) UpdateReview(ctx context.Context, m *entity.ModuleRequest) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE module_requests
		SET status = $2, review_notes = $3, reviewed_by_id = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1`,
		m.ID, m.Status, m.ReviewNotes, m.ReviewedByID, m.ReviewedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update module request: %w", err)
	}
	return nil
}

func (r *ModuleRequestRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ModuleRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list module requests: %w", err)
	}
	defer rows.Close()
	var out []*entity.ModuleRequest
	for rows.Next() {
		m, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module request: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanRequest(row rowScanner) (*entity.ModuleRequest, error) {
	var (
		m    entity.ModuleRequest
		code string
	)
	if err := row.Scan(&m.ID, &m.OrganizationID, &m.RequestedByID, &code, &m.RequestType, &m.Justification,
		&m.ExpectedUsage, &m.Status, &m.ReviewNotes, &m.ReviewedByID, &m.ReviewedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.ModuleCode = licensing.ModuleCode(code)
	return &m, nil
}
