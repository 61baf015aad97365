package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
)

// ActivateModuleRequest entrada para activar un módulo de una organización.
type ActivateModuleRequest struct {
	OrganizationID string              `json:"organizationId" validate:"required"`
	ModuleCode     string              `json:"moduleCode" validate:"required"`
	ExpiresAt      *time.Time          `json:"expiresAt"`
	MaxUsers       *int                `json:"maxUsers" validate:"omitempty,min=1"`
	UsageLimits    *entity.UsageLimits `json:"usageLimits"`
	ActivatedByID  string              `json:"activatedById"`
}

// DeactivateModuleRequest entrada para desactivar un módulo.
type DeactivateModuleRequest struct {
	OrganizationID  string `json:"organizationId" validate:"required"`
	ModuleCode      string `json:"moduleCode" validate:"required"`
	DeactivatedByID string `json:"deactivatedById"`
}

// ActivateTierRequest entrada para activar todos los módulos de un plan.
type ActivateTierRequest struct {
	OrganizationID string     `json:"organizationId" validate:"required"`
	Tier           string     `json:"tier" validate:"required,oneof=starter professional enterprise enterprise_plus"`
	ActivatedByID  string     `json:"activatedById"`
	ExpiresAt      *time.Time `json:"expiresAt"`
}

// StartTrialRequest entrada para iniciar una prueba de un módulo.
type StartTrialRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	ModuleCode     string `json:"moduleCode" validate:"required"`
	UserID         string `json:"userId"`
	TrialDays      int    `json:"days" validate:"omitempty,min=1,max=365"`
}

// TrackUsageRequest contadores del día; los omitidos no se modifican.
type TrackUsageRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	ModuleCode     string `json:"moduleCode" validate:"required"`
	ActiveUsers    *int64 `json:"activeUsers" validate:"omitempty,min=0"`
	Transactions   *int64 `json:"transactions" validate:"omitempty,min=0"`
	APICalls       *int64 `json:"apiCalls" validate:"omitempty,min=0"`
	StorageUsed    *int64 `json:"storageUsed" validate:"omitempty,min=0"`
}

// ArchiveModuleRequest entrada para archivar manualmente los datos de un módulo.
type ArchiveModuleRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	ModuleCode     string `json:"moduleCode" validate:"required"`
	RetentionDays  int    `json:"retentionDays" validate:"omitempty,min=1,max=3650"`
}

// RestoreModuleRequest entrada para restaurar datos archivados.
type RestoreModuleRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	ModuleCode     string `json:"moduleCode" validate:"required"`
}

// ModuleLicenseResponse salida de una licencia.
type ModuleLicenseResponse struct {
	ID             string              `json:"id"`
	OrganizationID string              `json:"organizationId"`
	ModuleCode     string              `json:"moduleCode"`
	Status         string              `json:"status"`
	TierLevel      string              `json:"tierLevel,omitempty"`
	ActivatedAt    time.Time           `json:"activatedAt"`
	ExpiresAt      *time.Time          `json:"expiresAt,omitempty"`
	MaxUsers       *int                `json:"maxUsers,omitempty"`
	UsageLimits    *entity.UsageLimits `json:"usageLimits,omitempty"`
	ActivatedByID  string              `json:"activatedById,omitempty"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// OrganizationModuleResponse módulo del catálogo anotado con el estado de la licencia.
type OrganizationModuleResponse struct {
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Tier         string     `json:"tier"`
	Dependencies []string   `json:"dependencies"`
	Features     []string   `json:"features"`
	IsCore       bool       `json:"isCore"`
	IsLicensed   bool       `json:"isLicensed"`
	IsActive     bool       `json:"isActive"`
	Status       string     `json:"status,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	MaxUsers     *int       `json:"maxUsers,omitempty"`
}

// OrganizationModulesResponse catálogo completo para una organización.
type OrganizationModulesResponse struct {
	OrganizationID string                       `json:"organizationId"`
	Tier           string                       `json:"tier,omitempty"`
	Modules        []OrganizationModuleResponse `json:"modules"`
}

// ModuleAccessResponse resultado de la consulta de acceso.
type ModuleAccessResponse struct {
	OrganizationID string `json:"organizationId"`
	ModuleCode     string `json:"moduleCode"`
	HasAccess      bool   `json:"hasAccess"`
}

// TierModuleResult resultado por módulo de ActivateTier.
type TierModuleResult struct {
	ModuleCode string                 `json:"moduleCode"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	License    *ModuleLicenseResponse `json:"license,omitempty"`
}

// ActivateTierResponse resultado agregado de ActivateTier.
type ActivateTierResponse struct {
	OrganizationID string             `json:"organizationId"`
	Tier           string             `json:"tier"`
	Activated      int                `json:"activated"`
	Failed         int                `json:"failed"`
	Results        []TierModuleResult `json:"results"`
}

// ModuleUsageResponse contadores de un día.
type ModuleUsageResponse struct {
	OrganizationID string    `json:"organizationId"`
	ModuleCode     string    `json:"moduleCode"`
	Date           time.Time `json:"date"`
	ActiveUsers    int64     `json:"activeUsers"`
	Transactions   int64     `json:"transactions"`
	APICalls       int64     `json:"apiCalls"`
	StorageUsed    int64     `json:"storageUsed"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ArchiveResultResponse resultado de archivar un módulo.
type ArchiveResultResponse struct {
	OrganizationID string         `json:"organizationId"`
	ModuleCode     string         `json:"moduleCode"`
	ArchivedCount  int            `json:"archivedCount"`
	Tables         map[string]int `json:"tables"`
	FailedTables   []string       `json:"failedTables,omitempty"`
	ExpiresAt      time.Time      `json:"expiresAt"`
}

// RestoreResultResponse resultado de restaurar un módulo. RestoredCount
// cuenta las copias procesadas; ReinsertedCount solo las que no existían.
type RestoreResultResponse struct {
	OrganizationID  string `json:"organizationId"`
	ModuleCode      string `json:"moduleCode"`
	RestoredCount   int    `json:"restoredCount"`
	ReinsertedCount int    `json:"reinsertedCount"`
	FailedCount     int    `json:"failedCount,omitempty"`
}

// ArchiveRecordResponse metadatos de una copia archivada.
type ArchiveRecordResponse struct {
	ID         string          `json:"id"`
	ModuleCode string          `json:"moduleCode"`
	TableName  string          `json:"tableName"`
	RecordID   string          `json:"recordId"`
	Status     string          `json:"status"`
	ArchivedAt time.Time       `json:"archivedAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
}

// ArchiveExportResponse exportación de las copias archived agrupadas por tabla.
type ArchiveExportResponse struct {
	OrganizationID string                       `json:"organizationId"`
	ModuleCode     string                       `json:"moduleCode"`
	ArchivedAt     time.Time                    `json:"archivedAt"`
	RetentionDays  int                          `json:"retentionDays"`
	Data           map[string][]json.RawMessage `json:"data"`
}

// ArchiveSizeResponse tamaño total de las copias archived de una organización.
type ArchiveSizeResponse struct {
	OrganizationID string          `json:"organizationId"`
	SizeBytes      int64           `json:"sizeBytes"`
	SizeMB         decimal.Decimal `json:"sizeMb"`
}

// JobReportResponse resumen de una ejecución del planificador.
type JobReportResponse struct {
	Job       string `json:"job"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
	Skipped   bool   `json:"skipped"`
}
