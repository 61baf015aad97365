//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cmms-api/pkg/config"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("cmms_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, dsn))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func seedOrganization(t *testing.T, pool *pgxpool.Pool, id string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, postgres.NewOrganizationRepository(pool).Create(context.Background(), &entity.Organization{
		ID: id, Name: "Planta " + id, Status: entity.OrganizationActive, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestIntegration_ModuleLicense_UpsertMantieneUnaFila(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	seedOrganization(t, pool, "org-1")
	repo := postgres.NewModuleLicenseRepository(pool)

	now := time.Now().UTC().Truncate(time.Second)
	exp := now.Add(48 * time.Hour)
	maxUsers := 5
	first, err := repo.UpsertActivation(ctx, &entity.ModuleLicense{
		ID: "lic-1", OrganizationID: "org-1", ModuleCode: licensing.PreventiveMaintenance,
		Status: entity.LicenseActive, ActivatedAt: now, ExpiresAt: &exp, MaxUsers: &maxUsers,
		UsageLimits: &entity.UsageLimits{Extra: map[string]any{"max_sites": float64(3)}},
		CreatedAt:   now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "lic-1", first.ID)
	require.NotNil(t, first.UsageLimits)
	assert.Equal(t, float64(3), first.UsageLimits.Extra["max_sites"])

	trialExp := now.Add(24 * time.Hour)
	trial, err := repo.UpsertTrial(ctx, &entity.ModuleLicense{
		ID: "lic-2", OrganizationID: "org-1", ModuleCode: licensing.PreventiveMaintenance,
		Status: entity.LicenseTrial, TierLevel: "trial", ActivatedAt: now, ExpiresAt: &trialExp,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, "lic-1", trial.ID, "el upsert conserva la fila existente")
	assert.Equal(t, entity.LicenseTrial, trial.Status)
	require.NotNil(t, trial.MaxUsers)
	assert.Equal(t, 5, *trial.MaxUsers)

	list, err := repo.ListByOrganization(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	expiring, err := repo.ListExpiringBetween(ctx, now, now.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Len(t, expiring, 1)
}

func TestIntegration_AccessLog_VentanaDeUsuarios(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := postgres.NewAccessLogRepository(pool)
	now := time.Now().UTC()

	for i, u := range []string{"u1", "u2", "u1"} {
		require.NoError(t, repo.Append(ctx, &entity.ModuleAccessLog{
			ID: "log-" + string(rune('a'+i)), OrganizationID: "org-1", ModuleCode: licensing.InventoryManagement,
			UserID: u, Action: entity.ActionAccessed, CreatedAt: now,
		}))
	}
	require.NoError(t, repo.Append(ctx, &entity.ModuleAccessLog{
		ID: "log-z", OrganizationID: "org-1", ModuleCode: licensing.InventoryManagement,
		UserID: "u3", Action: entity.ActionDenied, CreatedAt: now,
	}))

	n, err := repo.CountDistinctUsers(ctx, "org-1", licensing.InventoryManagement, now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := repo.HasAccessedSince(ctx, "org-1", licensing.InventoryManagement, "u3", now.Add(-5*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIntegration_Archival_ArchivaYRestaura(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO pm_schedules (id, organization_id, asset_id, title, frequency_days, next_due_at)
		VALUES ('pm-1', 'org-1', 'asset-1', 'Lubricación', 30, now()),
		       ('pm-2', 'org-1', 'asset-2', 'Inspección', 7, now()),
		       ('pm-9', 'org-2', 'asset-9', 'Otra planta', 7, now())`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO pm_tasks (id, organization_id, data) VALUES ('task-1', 'org-1', '{"step": 1}')`)
	require.NoError(t, err)

	svc := applicensing.NewArchivalService(
		postgres.NewDataArchiveRepository(pool),
		postgres.NewRowStore(pool),
		postgres.NewTxRunner(pool),
		nil, zerolog.Nop(), 90,
	)

	res, err := svc.Archive(ctx, "org-1", licensing.PreventiveMaintenance, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.ArchivedCount)
	assert.Equal(t, map[string]int{"pm_schedules": 2, "pm_tasks": 1}, res.Tables)

	_, err = pool.Exec(ctx, `DELETE FROM pm_schedules WHERE id = 'pm-1'`)
	require.NoError(t, err)

	restored, err := svc.Restore(ctx, "org-1", licensing.PreventiveMaintenance)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.RestoredCount)
	assert.Equal(t, 1, restored.ReinsertedCount)

	var title string
	require.NoError(t, pool.QueryRow(ctx, `SELECT title FROM pm_schedules WHERE id = 'pm-1'`).Scan(&title))
	assert.Equal(t, "Lubricación", title)

	size, err := svc.Size(ctx, "org-1")
	require.NoError(t, err)
	assert.Zero(t, size.SizeBytes, "las copias restauradas no cuentan")
}

func TestIntegration_ModuleUsage_SobrescrituraParcial(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := postgres.NewModuleUsageRepository(pool)
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ten, five := int64(10), int64(5)

	_, err := repo.Upsert(ctx, "org-1", licensing.WorkOrderBasic, day, entity.UsageCounters{Transactions: &ten, APICalls: &ten})
	require.NoError(t, err)
	u, err := repo.Upsert(ctx, "org-1", licensing.WorkOrderBasic, day, entity.UsageCounters{APICalls: &five})
	require.NoError(t, err)
	assert.Equal(t, int64(10), u.Transactions)
	assert.Equal(t, int64(5), u.APICalls)

	list, err := repo.ListRecent(ctx, "org-1", "", 30)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIntegration_ModuleUsage_IncrementaLlamadas(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := postgres.NewModuleUsageRepository(pool)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	seven := int64(7)

	require.NoError(t, repo.IncrementAPICalls(ctx, "org-1", licensing.MeterReading, day, 1))
	_, err := repo.Upsert(ctx, "org-1", licensing.MeterReading, day, entity.UsageCounters{Transactions: &seven})
	require.NoError(t, err)
	require.NoError(t, repo.IncrementAPICalls(ctx, "org-1", licensing.MeterReading, day, 1))

	list, err := repo.ListRecent(ctx, "org-1", licensing.MeterReading, 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].APICalls)
	assert.Equal(t, int64(7), list[0].Transactions)
}
