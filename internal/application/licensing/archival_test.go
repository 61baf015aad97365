package licensing

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

func seedPMRows(f *fixture) {
	f.store.AddRow("pm_schedules", map[string]any{"id": "pm-1", "organization_id": testOrg, "title": "Lubricar bomba"})
	f.store.AddRow("pm_schedules", map[string]any{"id": "pm-2", "organization_id": testOrg, "title": "Cambiar filtros"})
	f.store.AddRow("pm_schedules", map[string]any{"id": "pm-9", "organization_id": "org-2", "title": "Otra planta"})
	f.store.AddRow("pm_tasks", map[string]any{"id": "task-1", "organization_id": testOrg, "schedule_id": "pm-1"})
}

func TestArchive_CopiaFilasDeLaOrganizacion(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)

	out, err := f.archival.Archive(context.Background(), testOrg, licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)

	assert.Equal(t, 3, out.ArchivedCount)
	assert.Equal(t, map[string]int{"pm_schedules": 2, "pm_tasks": 1}, out.Tables)
	assert.WithinDuration(t, t0.Add(90*24*time.Hour), out.ExpiresAt, time.Second)
	for _, a := range f.store.Archives() {
		assert.Equal(t, entity.ArchiveArchived, a.Status)
		assert.Equal(t, testOrg, a.OrganizationID)
	}
}

func TestArchive_DosVecesDuplicaCopias(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	ctx := context.Background()

	_, err := f.archival.Archive(ctx, testOrg, licensing.PreventiveMaintenance, 30)
	require.NoError(t, err)
	_, err = f.archival.Archive(ctx, testOrg, licensing.PreventiveMaintenance, 30)
	require.NoError(t, err)

	assert.Len(t, f.store.Archives(), 6)
}

func TestArchive_ModuloSinMapeoNoArchivaNada(t *testing.T) {
	f := newFixture(t)
	out, err := f.archival.Archive(context.Background(), testOrg, licensing.MeterReading, 0)
	require.NoError(t, err)
	assert.Zero(t, out.ArchivedCount)
	assert.Empty(t, f.store.Archives())
}

func TestArchive_FalloDeTablaContinuaConLaSiguiente(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	f.store.FailReadRows["pm_schedules"] = true

	out, err := f.archival.Archive(context.Background(), testOrg, licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, out.ArchivedCount)
	assert.Equal(t, []string{"pm_schedules"}, out.FailedTables)
}

func TestArchive_FalloAlEscribirDescartaLaTabla(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	f.store.FailInsertRows["pm_tasks"] = true

	out, err := f.archival.Archive(context.Background(), testOrg, licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, out.ArchivedCount)
	assert.Equal(t, []string{"pm_tasks"}, out.FailedTables)
	assert.Len(t, f.store.Archives(), 2)
}

func TestRestore_ReinsertaSoloFaltantesYNoDuplica(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	ctx := context.Background()
	_, err := f.archival.Archive(ctx, testOrg, licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)

	f.store.DeleteRows("pm_tasks")

	out, err := f.archival.Restore(ctx, testOrg, licensing.PreventiveMaintenance)
	require.NoError(t, err)
	assert.Equal(t, 3, out.RestoredCount)
	assert.Equal(t, 1, out.ReinsertedCount)
	assert.Equal(t, 3, f.store.RowCount("pm_schedules"))
	assert.Equal(t, 1, f.store.RowCount("pm_tasks"))

	again, err := f.archival.Restore(ctx, testOrg, licensing.PreventiveMaintenance)
	require.NoError(t, err)
	assert.Zero(t, again.RestoredCount)
	assert.Equal(t, 3, f.store.RowCount("pm_schedules"))
	assert.Equal(t, 1, f.store.RowCount("pm_tasks"))

	for _, a := range f.store.Archives() {
		assert.Equal(t, entity.ArchiveRestored, a.Status)
	}
}

func TestExport_AgrupaPorTabla(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	ctx := context.Background()
	_, err := f.archival.Archive(ctx, testOrg, licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)

	out, err := f.archival.Export(ctx, testOrg, licensing.PreventiveMaintenance)
	require.NoError(t, err)

	assert.Equal(t, 90, out.RetentionDays)
	require.Len(t, out.Data["pm_schedules"], 2)
	require.Len(t, out.Data["pm_tasks"], 1)
	var row map[string]any
	require.NoError(t, json.Unmarshal(out.Data["pm_tasks"][0], &row))
	assert.Equal(t, "pm-1", row["schedule_id"])
}

func TestSize_SumaBytesDeCopiasArchivadas(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	ctx := context.Background()
	_, err := f.archival.Archive(ctx, testOrg, licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)

	var want int64
	for _, a := range f.store.Archives() {
		want += int64(len(a.Snapshot))
	}
	out, err := f.archival.Size(ctx, testOrg)
	require.NoError(t, err)
	assert.Equal(t, want, out.SizeBytes)
	assert.Equal(t, "0", out.SizeMB.String())
}

func TestPurgeExpired_DejaLapida(t *testing.T) {
	f := newFixture(t)
	seedPMRows(f)
	ctx := context.Background()
	_, err := f.archival.Archive(ctx, testOrg, licensing.PreventiveMaintenance, 30)
	require.NoError(t, err)

	n, err := f.archival.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.advance(31 * 24 * time.Hour)
	n, err = f.archival.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	archives := f.store.Archives()
	require.Len(t, archives, 3)
	for _, a := range archives {
		assert.Equal(t, entity.ArchiveDeleted, a.Status)
	}
}
