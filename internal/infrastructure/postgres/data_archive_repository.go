package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.DataArchiveRepository = (*DataArchiveRepo)(nil)

// DataArchiveRepo copias archivadas. Recibe un Querier para poder operar
// dentro de la transacción de ArchiveTxRunner.
type DataArchiveRepo struct {
	db Querier
}

// NewDataArchiveRepository construye el adaptador sobre un pool o una tx.
func NewDataArchiveRepository(db Querier) *DataArchiveRepo {
	return &DataArchiveRepo{db: db}
}

const archiveColumns = `id, organization_id, module_code, table_name, record_id, snapshot,
	archived_at, expires_at, status, updated_at`

// InsertBatch inserta todas las copias en un único round-trip.
func (r *DataArchiveRepo) InsertBatch(ctx context.Context, archives []*entity.DataArchive) error {
	if len(archives) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range archives {
		batch.Queue(`
			INSERT INTO data_archives (`+archiveColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)`,
			a.ID, a.OrganizationID, string(a.ModuleCode), a.TableName, a.RecordID, string(a.Snapshot),
			a.ArchivedAt, a.ExpiresAt, string(a.Status), a.UpdatedAt,
		)
	}
	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for range archives {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert data archive: %w", err)
		}
	}
	return nil
}

// List copias de la organización con módulo y estado opcionales.
func (r *DataArchiveRepo) List(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.ArchiveStatus) ([]*entity.DataArchive, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+archiveColumns+` FROM data_archives
		WHERE organization_id = $1
		  AND ($2::text = '' OR module_code = $2)
		  AND ($3::text = '' OR status = $3)
		ORDER BY archived_at, table_name, record_id`,
		organizationID, string(code), string(status))
	if err != nil {
		return nil, fmt.Errorf("list data archives: %w", err)
	}
	defer rows.Close()
	var out []*entity.DataArchive
	for rows.Next() {
		var (
			a       entity.DataArchive
			code    string
			status  string
			payload []byte
		)
		if err := rows.Scan(&a.ID, &a.OrganizationID, &code, &a.TableName, &a.RecordID, &payload,
			&a.ArchivedAt, &a.ExpiresAt, &status, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan data archive: %w", err)
		}
		a.ModuleCode = licensing.ModuleCode(code)
		a.Status = entity.ArchiveStatus(status)
		a.Snapshot = payload
		out = append(out, &a)
	}
	return out, rows.Err()
}

// HasStatus indica si existe al menos una copia del par en el estado dado.
func (r *DataArchiveRepo) HasStatus(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.ArchiveStatus) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM data_archives
			WHERE organization_id = $1 AND module_code = $2 AND status = $3
		)`, organizationID, string(code), string(status)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check data archive status: %w", err)
	}
	return ok, nil
}

// UpdateStatus cambia el estado de una copia.
func (r *DataArchiveRepo) UpdateStatus(ctx context.Context, id string, status entity.ArchiveStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE data_archives SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update data archive: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update data archive %s: no rows", id)
	}
	return nil
}

// TombstoneExpired marca deleted las copias archived vencidas.
func (r *DataArchiveRepo) TombstoneExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE data_archives SET status = 'deleted', updated_at = $1
		WHERE status = 'archived' AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("tombstone data archives: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SnapshotBytes tamaño de texto de las copias archived de la organización.
func (r *DataArchiveRepo) SnapshotBytes(ctx context.Context, organizationID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(octet_length(snapshot::text)), 0)::bigint
		FROM data_archives WHERE organization_id = $1 AND status = 'archived'`,
		organizationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum data archive size: %w", err)
	}
	return n, nil
}
