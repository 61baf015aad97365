package licensing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// ──────────────────────────────────────────────────────────────────────────
// Activate
// ──────────────────────────────────────────────────────────────────────────

func TestActivate_DependenciaNoActivaFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Activate(ctx, dto.ActivateModuleRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.PredictiveMaintenance),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDependencyNotMet))
	var le *domain.LicenseError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, string(licensing.AssetManagementAdvanced), le.Dependency)
	assert.Nil(t, f.store.License(testOrg, licensing.PredictiveMaintenance))
}

func TestActivate_ConDependenciasActivas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, code := range []licensing.ModuleCode{licensing.AssetManagementAdvanced, licensing.MeterReading, licensing.PredictiveMaintenance} {
		_, err := f.svc.Activate(ctx, dto.ActivateModuleRequest{
			OrganizationID: testOrg,
			ModuleCode:     string(code),
			ActivatedByID:  "admin-1",
		})
		require.NoError(t, err, code)
	}

	lic := f.store.License(testOrg, licensing.PredictiveMaintenance)
	require.NotNil(t, lic)
	assert.Equal(t, entity.LicenseActive, lic.Status)
	assert.Equal(t, "admin-1", lic.ActivatedByID)

	logs := f.store.AccessLogs()
	require.Len(t, logs, 3)
	for _, l := range logs {
		assert.Equal(t, entity.ActionActivated, l.Action)
	}
}

func TestActivate_DependenciaVencidaNoCuenta(t *testing.T) {
	f := newFixture(t)
	f.store.PutLicense(&entity.ModuleLicense{
		ID: "l-1", OrganizationID: testOrg, ModuleCode: licensing.WorkOrderAdvanced,
		Status: entity.LicenseActive, ExpiresAt: f.at(-time.Hour),
	})

	_, err := f.svc.Activate(context.Background(), dto.ActivateModuleRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.ProjectManagement),
	})
	assert.ErrorIs(t, err, domain.ErrDependencyNotMet)
}

func TestActivate_DependenciaCoreSiempreCumple(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Activate(context.Background(), dto.ActivateModuleRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.PurchasingProcurement),
	})
	assert.NoError(t, err)
}

func TestActivate_OrganizacionInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Activate(context.Background(), dto.ActivateModuleRequest{
		OrganizationID: "org-x",
		ModuleCode:     string(licensing.MeterReading),
	})
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
}

func TestActivate_CodigoDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Activate(context.Background(), dto.ActivateModuleRequest{
		OrganizationID: testOrg,
		ModuleCode:     "teleportation",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownModule)
}

func TestActivate_ReactivaSobrescribeLimites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.StartTrial(ctx, dto.StartTrialRequest{OrganizationID: testOrg, ModuleCode: string(licensing.MeterReading)})
	require.NoError(t, err)

	out, err := f.svc.Activate(ctx, dto.ActivateModuleRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.MeterReading),
		MaxUsers:       intPtr(10),
		UsageLimits:    &entity.UsageLimits{MaxRecords: int64Ptr(500)},
	})
	require.NoError(t, err)
	assert.Equal(t, "active", out.Status)
	assert.Nil(t, out.ExpiresAt)
	require.NotNil(t, out.MaxUsers)
	assert.Equal(t, 10, *out.MaxUsers)
	assert.EqualValues(t, 500, *out.UsageLimits.MaxRecords)
}

// ──────────────────────────────────────────────────────────────────────────
// Deactivate
// ──────────────────────────────────────────────────────────────────────────

func TestDeactivate_ModulosCoreProtegidos(t *testing.T) {
	f := newFixture(t)
	for _, code := range licensing.CoreModules() {
		err := f.svc.Deactivate(context.Background(), dto.DeactivateModuleRequest{
			OrganizationID: testOrg,
			ModuleCode:     string(code),
		})
		assert.ErrorIs(t, err, domain.ErrCoreModuleProtected, code)
	}
}

func TestDeactivate_SinLicencia(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Deactivate(context.Background(), dto.DeactivateModuleRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.MeterReading),
	})
	assert.ErrorIs(t, err, domain.ErrModuleLicenseNotFound)
}

func TestDeactivate_SeReflejaEnAcceso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Activate(ctx, dto.ActivateModuleRequest{OrganizationID: testOrg, ModuleCode: string(licensing.MeterReading)})
	require.NoError(t, err)

	ok, err := f.svc.HasModuleAccess(ctx, testOrg, licensing.MeterReading)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.svc.Deactivate(ctx, dto.DeactivateModuleRequest{
		OrganizationID:  testOrg,
		ModuleCode:      string(licensing.MeterReading),
		DeactivatedByID: "admin-1",
	}))

	ok, err = f.svc.HasModuleAccess(ctx, testOrg, licensing.MeterReading)
	require.NoError(t, err)
	assert.False(t, ok)

	lic := f.store.License(testOrg, licensing.MeterReading)
	require.NotNil(t, lic, "la licencia no se borra")
	assert.Equal(t, entity.LicenseInactive, lic.Status)

	logs := f.store.AccessLogs()
	assert.Equal(t, entity.ActionDeactivated, logs[len(logs)-1].Action)
}

// ──────────────────────────────────────────────────────────────────────────
// HasModuleAccess
// ──────────────────────────────────────────────────────────────────────────

func TestHasModuleAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.PutLicense(&entity.ModuleLicense{ID: "a", OrganizationID: testOrg, ModuleCode: licensing.DocumentManagement, Status: entity.LicenseActive, ExpiresAt: f.at(time.Hour)})
	f.store.PutLicense(&entity.ModuleLicense{ID: "b", OrganizationID: testOrg, ModuleCode: licensing.MeterReading, Status: entity.LicenseActive, ExpiresAt: f.at(-time.Second)})
	f.store.PutLicense(&entity.ModuleLicense{ID: "c", OrganizationID: testOrg, ModuleCode: licensing.SchedulingPlanning, Status: entity.LicenseTrial, ExpiresAt: f.at(time.Hour)})

	tests := []struct {
		code licensing.ModuleCode
		want bool
	}{
		{licensing.WorkOrderBasic, true},
		{licensing.DocumentManagement, true},
		{licensing.MeterReading, false},
		{licensing.SchedulingPlanning, false},
		{licensing.AuditQuality, false},
	}
	for _, tt := range tests {
		ok, err := f.svc.HasModuleAccess(ctx, testOrg, tt.code)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, tt.code)
	}
}

// ──────────────────────────────────────────────────────────────────────────
// ActivateTier
// ──────────────────────────────────────────────────────────────────────────

func TestActivateTier_EnterpriseActivaTodoEnOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.svc.ActivateTier(ctx, dto.ActivateTierRequest{
		OrganizationID: testOrg,
		Tier:           string(licensing.SubscriptionEnterprise),
		ActivatedByID:  "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Failed)
	assert.Equal(t, 14, out.Activated)
	for _, code := range licensing.ModulesForTier(licensing.SubscriptionEnterprise) {
		if licensing.IsCore(code) {
			assert.Nil(t, f.store.License(testOrg, code), "core no genera licencia")
			continue
		}
		ok, err := f.svc.HasModuleAccess(ctx, testOrg, code)
		require.NoError(t, err)
		assert.True(t, ok, code)
	}
	assert.Equal(t, "enterprise", f.store.Organization(testOrg).Tier)
}

func TestActivateTier_PlanInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ActivateTier(context.Background(), dto.ActivateTierRequest{OrganizationID: testOrg, Tier: "gold"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────
// StartTrial
// ──────────────────────────────────────────────────────────────────────────

func TestStartTrial_VenceEnTreintaDias(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.StartTrial(context.Background(), dto.StartTrialRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.AdvancedAnalytics),
		UserID:         "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "trial", out.Status)
	require.NotNil(t, out.ExpiresAt)
	assert.WithinDuration(t, t0.Add(30*24*time.Hour), *out.ExpiresAt, time.Second)
}

func TestStartTrial_ConservaMaxUsers(t *testing.T) {
	f := newFixture(t)
	f.store.PutLicense(&entity.ModuleLicense{
		ID: "l-1", OrganizationID: testOrg, ModuleCode: licensing.AdvancedAnalytics,
		Status: entity.LicenseInactive, MaxUsers: intPtr(3),
	})
	out, err := f.svc.StartTrial(context.Background(), dto.StartTrialRequest{
		OrganizationID: testOrg,
		ModuleCode:     string(licensing.AdvancedAnalytics),
		TrialDays:      14,
	})
	require.NoError(t, err)
	assert.Equal(t, "l-1", out.ID)
	require.NotNil(t, out.MaxUsers)
	assert.Equal(t, 3, *out.MaxUsers)
	assert.WithinDuration(t, t0.Add(14*24*time.Hour), *out.ExpiresAt, time.Second)
}

func TestStartTrial_LicenciaActiva_RetornaConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Activate(ctx, dto.ActivateModuleRequest{OrganizationID: testOrg, ModuleCode: string(licensing.MeterReading)})
	require.NoError(t, err)

	_, err = f.svc.StartTrial(ctx, dto.StartTrialRequest{OrganizationID: testOrg, ModuleCode: string(licensing.MeterReading)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, entity.LicenseActive, f.store.License(testOrg, licensing.MeterReading).Status)
	ok, err := f.svc.HasModuleAccess(ctx, testOrg, licensing.MeterReading)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStartTrial_LicenciaActivaVencida_PermitePrueba(t *testing.T) {
	f := newFixture(t)
	f.store.PutLicense(&entity.ModuleLicense{
		ID: "l-1", OrganizationID: testOrg, ModuleCode: licensing.MeterReading,
		Status: entity.LicenseActive, ExpiresAt: f.at(-24 * time.Hour),
	})
	out, err := f.svc.StartTrial(context.Background(), dto.StartTrialRequest{OrganizationID: testOrg, ModuleCode: string(licensing.MeterReading)})
	require.NoError(t, err)
	assert.Equal(t, "trial", out.Status)
}

// ──────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────

func TestOrganizationModules_CatalogoAnotado(t *testing.T) {
	f := newFixture(t)
	f.store.PutLicense(&entity.ModuleLicense{ID: "a", OrganizationID: testOrg, ModuleCode: licensing.MeterReading, Status: entity.LicenseActive})

	out, err := f.svc.OrganizationModules(context.Background(), testOrg)
	require.NoError(t, err)
	require.Len(t, out.Modules, 27)

	byCode := map[string]dto.OrganizationModuleResponse{}
	for _, m := range out.Modules {
		byCode[m.Code] = m
	}
	assert.True(t, byCode["user_management"].IsActive)
	assert.True(t, byCode["user_management"].IsCore)
	assert.Equal(t, "active", byCode["user_management"].Status)
	assert.Equal(t, "active", byCode["meter_reading"].Status)
	assert.Empty(t, byCode["audit_quality"].Status)
	assert.True(t, byCode["meter_reading"].IsLicensed)
	assert.True(t, byCode["meter_reading"].IsActive)
	assert.False(t, byCode["audit_quality"].IsLicensed)
	assert.Equal(t, []string{"meter_reading", "advanced_analytics"}, byCode["energy_management"].Dependencies)
}

func TestOrganizationModules_OrganizacionInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.OrganizationModules(context.Background(), "org-x")
	assert.ErrorIs(t, err, domain.ErrOrganizationNotFound)
}

func TestInGracePeriod(t *testing.T) {
	f := newFixture(t)
	f.store.PutLicense(&entity.ModuleLicense{ID: "a", OrganizationID: testOrg, ModuleCode: licensing.MeterReading, Status: entity.LicenseActive, ExpiresAt: f.at(-3 * 24 * time.Hour)})
	f.store.PutLicense(&entity.ModuleLicense{ID: "b", OrganizationID: testOrg, ModuleCode: licensing.DocumentManagement, Status: entity.LicenseActive, ExpiresAt: f.at(-10 * 24 * time.Hour)})
	f.store.PutLicense(&entity.ModuleLicense{ID: "c", OrganizationID: testOrg, ModuleCode: licensing.AuditQuality, Status: entity.LicenseActive, ExpiresAt: f.at(24 * time.Hour)})

	list, err := f.svc.InGracePeriod(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, licensing.MeterReading, list[0].ModuleCode)

	past, err := f.svc.ExpiredPastGrace(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, licensing.DocumentManagement, past[0].ModuleCode)
}
