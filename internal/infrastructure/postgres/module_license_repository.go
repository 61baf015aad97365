package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.ModuleLicenseRepository = (*ModuleLicenseRepo)(nil)

// ModuleLicenseRepo licencias de módulos sobre PostgreSQL. La unicidad por
// (organization_id, module_code) la garantiza un UNIQUE de la tabla.
type ModuleLicenseRepo struct {
	pool *pgxpool.Pool
}

// NewModuleLicenseRepository construye el adaptador.
func NewModuleLicenseRepository(pool *pgxpool.Pool) *ModuleLicenseRepo {
	return &ModuleLicenseRepo{pool: pool}
}

const licenseColumns = `id, organization_id, module_code, status, tier_level, activated_at,
	expires_at, max_users, usage_limits, activated_by_id, created_at, updated_at`

// Get obtiene la licencia de un módulo; nil, nil si no existe.
func (r *ModuleLicenseRepo) Get(ctx context.Context, organizationID string, code licensing.ModuleCode) (*entity.ModuleLicense, error) {
	l, err := scanLicense(r.pool.QueryRow(ctx,
		`SELECT `+licenseColumns+` FROM module_licenses WHERE organization_id = $1 AND module_code = $2`,
		organizationID, string(code)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get module license: %w", err)
	}
	return l, nil
}

// ListByOrganization licencias de la organización.
func (r *ModuleLicenseRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*entity.ModuleLicense, error) {
	return r.list(ctx,
		`SELECT `+licenseColumns+` FROM module_licenses WHERE organization_id = $1 ORDER BY module_code`,
		organizationID)
}

// UpsertActivation inserta o reactiva la licencia.
func (r *ModuleLicenseRepo) UpsertActivation(ctx context.Context, l *entity.ModuleLicense) (*entity.ModuleLicense, error) {
	limits, err := jsonParam(l.UsageLimits)
	if err != nil {
		return nil, err
	}
	if l.UsageLimits == nil {
		limits = nil
	}
	query := `
		INSERT INTO module_licenses (` + licenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (organization_id, module_code) DO UPDATE SET
			status = EXCLUDED.status,
			tier_level = EXCLUDED.tier_level,
			activated_at = EXCLUDED.activated_at,
			expires_at = EXCLUDED.expires_at,
			max_users = EXCLUDED.max_users,
			usage_limits = EXCLUDED.usage_limits,
			activated_by_id = EXCLUDED.activated_by_id,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + licenseColumns
	out, err := scanLicense(r.pool.QueryRow(ctx, query,
		l.ID, l.OrganizationID, string(l.ModuleCode), string(l.Status), l.TierLevel, l.ActivatedAt,
		l.ExpiresAt, l.MaxUsers, limits, l.ActivatedByID, l.CreatedAt, l.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert module license: %w", err)
	}
	return out, nil
}

// UpsertTrial inserta o pasa a trial la licencia conservando límites y usuario.
func (r *ModuleLicenseRepo) UpsertTrial(ctx context.Context, l *entity.ModuleLicense) (*entity.ModuleLicense, error) {
	query := `
		INSERT INTO module_licenses (` + licenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, NULL, $8, $9, $10)
		ON CONFLICT (organization_id, module_code) DO UPDATE SET
			status = EXCLUDED.status,
			tier_level = EXCLUDED.tier_level,
			activated_at = EXCLUDED.activated_at,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + licenseColumns
	out, err := scanLicense(r.pool.QueryRow(ctx, query,
		l.ID, l.OrganizationID, string(l.ModuleCode), string(l.Status), l.TierLevel, l.ActivatedAt,
		l.ExpiresAt, l.ActivatedByID, l.CreatedAt, l.UpdatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert trial license: %w", err)
	}
	return out, nil
}

// UpdateStatus cambia el estado sin borrar la fila.
func (r *ModuleLicenseRepo) UpdateStatus(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.LicenseStatus) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE module_licenses SET status = $3, updated_at = now()
		WHERE organization_id = $1 AND module_code = $2`,
		organizationID, string(code), string(status))
	if err != nil {
		return fmt.Errorf("update module license status: %w", err)
	}
	return nil
}

// ListExpiringBetween licencias active/trial con vencimiento en [from, to].
func (r *ModuleLicenseRepo) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*entity.ModuleLicense, error) {
	return r.list(ctx, `
		SELECT `+licenseColumns+` FROM module_licenses
		WHERE status IN ('active', 'trial') AND expires_at BETWEEN $1 AND $2
		ORDER BY expires_at`, from, to)
}

// ListExpiredBefore licencias con alguno de los estados y vencidas antes de cutoff.
func (r *ModuleLicenseRepo) ListExpiredBefore(ctx context.Context, cutoff time.Time, statuses ...entity.LicenseStatus) ([]*entity.ModuleLicense, error) {
	st := make([]string, 0, len(statuses))
	for _, s := range statuses {
		st = append(st, string(s))
	}
	return r.list(ctx, `
		SELECT `+licenseColumns+` FROM module_licenses
		WHERE status = ANY($1) AND expires_at < $2
		ORDER BY expires_at`, st, cutoff)
}

// ListByStatus licencias en un estado.
func (r *ModuleLicenseRepo) ListByStatus(ctx context.Context, status entity.LicenseStatus) ([]*entity.ModuleLicense, error) {
	return r.list(ctx, `
		SELECT `+licenseColumns+` FROM module_licenses
		WHERE status = $1 ORDER BY organization_id, module_code`, string(status))
}

func (r *ModuleLicenseRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ModuleLicense, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list module licenses: %w", err)
	}
	defer rows.Close()
	var out []*entity.ModuleLicense
	for rows.Next() {
		l, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module license: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLicense(row rowScanner) (*entity.ModuleLicense, error) {
	var (
		l      entity.ModuleLicense
		code   string
		status string
		limits []byte
	)
	err := row.Scan(&l.ID, &l.OrganizationID, &code, &status, &l.TierLevel, &l.ActivatedAt,
		&l.ExpiresAt, &l.MaxUsers, &limits, &l.ActivatedByID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.ModuleCode = licensing.ModuleCode(code)
	l.Status = entity.LicenseStatus(status)
	if len(limits) > 0 {
		var u entity.UsageLimits
		if err := json.Unmarshal(limits, &u); err != nil {
			return nil, fmt.Errorf("decode usage limits: %w", err)
		}
		l.UsageLimits = &u
	}
	return &l, nil
}
