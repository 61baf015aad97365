package licensing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// DefaultRetentionDays días que se conserva una copia archivada antes de la purga.
const DefaultRetentionDays = 90

var bytesPerMB = decimal.NewFromInt(1024 * 1024)

// ArchivalService copia, restaura, exporta y purga los datos de módulos vencidos.
type ArchivalService struct {
	archives  repository.DataArchiveRepository
	rows      repository.RowStore
	tx        ArchiveTxRunner
	metrics   Metrics
	log       zerolog.Logger
	now       Clock
	retention int
}

// NewArchivalService construye el servicio. retentionDays <= 0 usa 90.
func NewArchivalService(
	archives repository.DataArchiveRepository,
	rows repository.RowStore,
	tx ArchiveTxRunner,
	metrics Metrics,
	log zerolog.Logger,
	retentionDays int,
) *ArchivalService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	return &ArchivalService{
		archives:  archives,
		rows:      rows,
		tx:        tx,
		metrics:   metrics,
		log:       log.With().Str("component", "archival").Logger(),
		now:       time.Now,
		retention: retentionDays,
	}
}

// Archive copia cada fila de las tablas del módulo para la organización.
// No deduplica: archivar dos veces produce dos copias por fila. Un fallo en
// una tabla se registra y se continúa con la siguiente; las copias de cada
// tabla se escriben en una sola transacción.
func (a *ArchivalService) Archive(ctx context.Context, organizationID string, code licensing.ModuleCode, retentionDays int) (*dto.ArchiveResultResponse, error) {
	if retentionDays <= 0 {
		retentionDays = a.retention
	}
	now := a.now()
	expires := now.Add(time.Duration(retentionDays) * 24 * time.Hour)
	out := &dto.ArchiveResultResponse{
		OrganizationID: organizationID,
		ModuleCode:     string(code),
		Tables:         map[string]int{},
		ExpiresAt:      expires,
	}

	tables := licensing.ArchivedTables(code)
	if len(tables) == 0 {
		a.metrics.UnmappedArchive(ctx, code)
		a.log.Warn().
			Str("organization_id", organizationID).
			Str("module", string(code)).
			Msg("módulo sin tablas de archivado")
		return out, nil
	}

	for _, table := range tables {
		rows, err := a.rows.ListByOrganization(ctx, table, organizationID)
		if err != nil {
			a.tableFailed(out, table, organizationID, code, err)
			continue
		}
		if len(rows) == 0 {
			out.Tables[table] = 0
			continue
		}
		batch := make([]*entity.DataArchive, 0, len(rows))
		for _, r := range rows {
			batch = append(batch, &entity.DataArchive{
				ID:             uuid.New().String(),
				OrganizationID: organizationID,
				ModuleCode:     code,
				TableName:      table,
				RecordID:       r.ID,
				Snapshot:       r.Data,
				ArchivedAt:     now,
				ExpiresAt:      expires,
				Status:         entity.ArchiveArchived,
				UpdatedAt:      now,
			})
		}
		err = a.tx.RunArchive(ctx, func(archives repository.DataArchiveRepository) error {
			return archives.InsertBatch(ctx, batch)
		})
		if err != nil {
			a.tableFailed(out, table, organizationID, code, err)
			continue
		}
		out.Tables[table] = len(batch)
		out.ArchivedCount += len(batch)
	}

	a.metrics.ArchivedRecords(ctx, code, out.ArchivedCount)
	a.log.Info().
		Str("organization_id", organizationID).
		Str("module", string(code)).
		Int("records", out.ArchivedCount).
		Msg("datos archivados")
	return out, nil
}

func (a *ArchivalService) tableFailed(out *dto.ArchiveResultResponse, table, organizationID string, code licensing.ModuleCode, err error) {
	out.FailedTables = append(out.FailedTables, table)
	a.log.Error().Err(err).
		Str("organization_id", organizationID).
		Str("module", string(code)).
		Str("table", table).
		Msg("archivar tabla falló")
}

// Restore reinserta las filas archivadas que ya no existen y marca todas las
// copias procesadas como restored. Restaurar dos veces no duplica filas.
func (a *ArchivalService) Restore(ctx context.Context, organizationID string, code licensing.ModuleCode) (*dto.RestoreResultResponse, error) {
	list, err := a.archives.List(ctx, organizationID, code, entity.ArchiveArchived)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	out := &dto.RestoreResultResponse{OrganizationID: organizationID, ModuleCode: string(code)}
	for _, arc := range list {
		inserted, err := a.restoreOne(ctx, arc)
		if err != nil {
			out.FailedCount++
			a.log.Error().Err(err).
				Str("archive_id", arc.ID).
				Str("table", arc.TableName).
				Msg("restaurar copia falló")
			continue
		}
		out.RestoredCount++
		if inserted {
			out.ReinsertedCount++
		}
	}
	a.log.Info().
		Str("organization_id", organizationID).
		Str("module", string(code)).
		Int("restored", out.RestoredCount).
		Int("reinserted", out.ReinsertedCount).
		Msg("datos restaurados")
	return out, nil
}

func (a *ArchivalService) restoreOne(ctx context.Context, arc *entity.DataArchive) (bool, error) {
	exists, err := a.rows.Exists(ctx, arc.TableName, arc.RecordID)
	if err != nil {
		return false, err
	}
	if !exists {
		if err := a.rows.Insert(ctx, arc.TableName, arc.Snapshot); err != nil {
			return false, err
		}
	}
	if err := a.archives.UpdateStatus(ctx, arc.ID, entity.ArchiveRestored); err != nil {
		return false, err
	}
	return !exists, nil
}

// Export agrupa por tabla las copias archived del módulo.
func (a *ArchivalService) Export(ctx context.Context, organizationID string, code licensing.ModuleCode) (*dto.ArchiveExportResponse, error) {
	list, err := a.archives.List(ctx, organizationID, code, entity.ArchiveArchived)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	out := &dto.ArchiveExportResponse{
		OrganizationID: organizationID,
		ModuleCode:     string(code),
		ArchivedAt:     a.now(),
		RetentionDays:  a.retention,
		Data:           map[string][]json.RawMessage{},
	}
	for _, arc := range list {
		out.Data[arc.TableName] = append(out.Data[arc.TableName], arc.Snapshot)
	}
	return out, nil
}

// List metadatos de las copias de la organización; code "" = todos los módulos.
func (a *ArchivalService) List(ctx context.Context, organizationID string, code licensing.ModuleCode) ([]dto.ArchiveRecordResponse, error) {
	list, err := a.archives.List(ctx, organizationID, code, "")
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	out := make([]dto.ArchiveRecordResponse, 0, len(list))
	for _, arc := range list {
		out = append(out, dto.ArchiveRecordResponse{
			ID:         arc.ID,
			ModuleCode: string(arc.ModuleCode),
			TableName:  arc.TableName,
			RecordID:   arc.RecordID,
			Status:     string(arc.Status),
			ArchivedAt: arc.ArchivedAt,
			ExpiresAt:  arc.ExpiresAt,
		})
	}
	return out, nil
}

// Size bytes serializados de las copias archived de la organización.
func (a *ArchivalService) Size(ctx context.Context, organizationID string) (*dto.ArchiveSizeResponse, error) {
	n, err := a.archives.SnapshotBytes(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("archive size: %w", err)
	}
	return &dto.ArchiveSizeResponse{
		OrganizationID: organizationID,
		SizeBytes:      n,
		SizeMB:         decimal.NewFromInt(n).Div(bytesPerMB).Round(2),
	}, nil
}

// HasArchived indica si el par (organización, módulo) ya tiene copias archived.
func (a *ArchivalService) HasArchived(ctx context.Context, organizationID string, code licensing.ModuleCode) (bool, error) {
	ok, err := a.archives.HasStatus(ctx, organizationID, code, entity.ArchiveArchived)
	if err != nil {
		return false, fmt.Errorf("check archived: %w", err)
	}
	return ok, nil
}

// PurgeExpired marca deleted las copias archived cuya retención terminó.
// Las filas se conservan como lápida.
func (a *ArchivalService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := a.archives.TombstoneExpired(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("purge archives: %w", err)
	}
	return n, nil
}

// ParseModule valida un código recibido por la API de archivado.
func ParseModule(s string) (licensing.ModuleCode, error) {
	code := licensing.ModuleCode(s)
	if !licensing.IsKnown(code) {
		return "", domain.NewLicenseError(domain.ErrUnknownModule, s)
	}
	return code, nil
}
