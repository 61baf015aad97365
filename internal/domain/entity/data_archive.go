package entity

import (
	"encoding/json"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// ArchiveStatus ciclo de vida de una fila archivada.
type ArchiveStatus string

const (
	ArchiveArchived ArchiveStatus = "archived"
	ArchiveRestored ArchiveStatus = "restored"
	ArchiveDeleted  ArchiveStatus = "deleted" // lápida lógica, la fila se conserva
)

// DataArchive es la copia JSON de una fila de dominio de un módulo vencido.
type DataArchive struct {
	ID             string
	OrganizationID string
	ModuleCode     licensing.ModuleCode
	TableName      string
	RecordID       string
	Snapshot       json.RawMessage
	ArchivedAt     time.Time
	ExpiresAt      time.Time
	Status         ArchiveStatus
	UpdatedAt      time.Time
}
