package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// DataArchiveRepository persistencia de las copias archivadas.
type DataArchiveRepository interface {
	InsertBatch(ctx context.Context, archives []*entity.DataArchive) error
	// List filtra por organización, módulo opcional ("" = todos) y estado opcional ("" = todos).
	List(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.ArchiveStatus) ([]*entity.DataArchive, error)
	HasStatus(ctx context.Context, organizationID string, code licensing.ModuleCode, status entity.ArchiveStatus) (bool, error)
	UpdateStatus(ctx context.Context, id string, status entity.ArchiveStatus) error
	// TombstoneExpired marca deleted las filas archived con ExpiresAt anterior a now.
	TombstoneExpired(ctx context.Context, now time.Time) (int64, error)
	// SnapshotBytes suma el tamaño serializado de las copias archived.
	SnapshotBytes(ctx context.Context, organizationID string) (int64, error)
}

// RowSnapshot fila de una tabla de dominio serializada como JSON.
type RowSnapshot struct {
	ID   string
	Data json.RawMessage
}

// RowStore acceso genérico a las tablas de dominio que se archivan.
// Solo acepta tablas del mapeo licensing.ArchivedTables.
type RowStore interface {
	ListByOrganization(ctx context.Context, table, organizationID string) ([]RowSnapshot, error)
	Exists(ctx context.Context, table, id string) (bool, error)
	Insert(ctx context.Context, table string, data json.RawMessage) error
}
