package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ repository.RowStore = (*RowStore)(nil)

// RowStore lee y reinserta filas de las tablas de dominio como JSON.
// El nombre de tabla se valida contra el mapeo de archivado antes de
// interpolarlo en el SQL.
type RowStore struct {
	db Querier
}

// NewRowStore construye el adaptador.
func NewRowStore(db Querier) *RowStore {
	return &RowStore{db: db}
}

func tableIdent(table string) (string, error) {
	if !licensing.IsArchivedTable(table) {
		return "", fmt.Errorf("tabla no archivable: %q", table)
	}
	return pgx.Identifier{table}.Sanitize(), nil
}

// ListByOrganization todas las filas de la organización serializadas con to_jsonb.
func (s *RowStore) ListByOrganization(ctx context.Context, table, organizationID string) ([]repository.RowSnapshot, error) {
	ident, err := tableIdent(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT t.id::text, to_jsonb(t) FROM `+ident+` t WHERE t.organization_id = $1 ORDER BY t.id`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	var out []repository.RowSnapshot
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, repository.RowSnapshot{ID: id, Data: data})
	}
	return out, rows.Err()
}

// Exists indica si la fila sigue presente.
func (s *RowStore) Exists(ctx context.Context, table, id string) (bool, error) {
	ident, err := tableIdent(table)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+ident+` WHERE id::text = $1)`, id,
	).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists %s: %w", table, err)
	}
	return ok, nil
}

// Insert reconstruye la fila desde su copia JSON.
func (s *RowStore) Insert(ctx context.Context, table string, data json.RawMessage) error {
	ident, err := tableIdent(table)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO `+ident+` SELECT * FROM jsonb_populate_record(NULL::`+ident+`, $1::jsonb)`,
		string(data))
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
