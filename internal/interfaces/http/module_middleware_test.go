package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain"
	catalog "github.com/jhoicas/cmms-api/internal/domain/licensing"
	apphttp "github.com/jhoicas/cmms-api/internal/interfaces/http"
)

// fakeEvaluator registra el módulo evaluado y devuelve err.
type fakeEvaluator struct {
	err       error
	evaluated catalog.ModuleCode
	principal *licensing.Principal
}

func (f *fakeEvaluator) Evaluate(_ context.Context, code catalog.ModuleCode, p *licensing.Principal) error {
	f.evaluated = code
	f.principal = p
	if p == nil {
		return domain.ErrNotAuthenticated
	}
	return f.err
}

func guardedApp(ev *fakeEvaluator, withAuth bool) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{}
	if withAuth {
		handlers = append(handlers, apphttp.AuthMiddleware(testJWTSecret))
	}
	handlers = append(handlers, apphttp.RequireModule(catalog.PreventiveMaintenance))
	grp := app.Group("/pm", handlers...)
	guard := apphttp.ModuleGuard(ev, zerolog.Nop())
	grp.Get("/", guard, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	grp.Get("/forecast", apphttp.RequireModule(catalog.PredictiveMaintenance), guard,
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/open", guard, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func getWithToken(t *testing.T, app *fiber.App, path, auth string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body dto.ErrorResponse
	if resp.StatusCode != http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	resp.Body.Close()
	return resp, body
}

func TestModuleGuard_LicenciaValida_Pasa(t *testing.T) {
	ev := &fakeEvaluator{}
	resp, _ := getWithToken(t, guardedApp(ev, true), "/pm/", tokenForRole(t, "technician"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, catalog.PreventiveMaintenance, ev.evaluated)
	require.NotNil(t, ev.principal)
	assert.Equal(t, testUserID, ev.principal.UserID)
	assert.Equal(t, testOrgID, ev.principal.OrganizationID)
}

func TestModuleGuard_DeclaracionDeRutaPrevalece(t *testing.T) {
	ev := &fakeEvaluator{}
	resp, _ := getWithToken(t, guardedApp(ev, true), "/pm/forecast", tokenForRole(t, "technician"))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, catalog.PredictiveMaintenance, ev.evaluated)
}

func TestModuleGuard_SinDeclaracion_NoEvalua(t *testing.T) {
	ev := &fakeEvaluator{err: errors.New("no debería llamarse")}
	resp, _ := getWithToken(t, guardedApp(ev, false), "/open", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, ev.evaluated)
}

func TestModuleGuard_SinUsuario_Retorna401(t *testing.T) {
	ev := &fakeEvaluator{}
	resp, body := getWithToken(t, guardedApp(ev, false), "/pm/", "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "NOT_AUTHENTICATED", body.Code)
}

func TestModuleGuard_NoLicenciado_Retorna403ConUpgradeURL(t *testing.T) {
	ev := &fakeEvaluator{err: domain.NewLicenseError(domain.ErrModuleNotLicensed, string(catalog.PreventiveMaintenance))}
	resp, body := getWithToken(t, guardedApp(ev, true), "/pm/", tokenForRole(t, "technician"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_NOT_LICENSED", body.Code)
	assert.Equal(t, "/pricing", body.Details["upgradeUrl"])
	assert.Equal(t, true, body.Details["contactSupport"])
	assert.Equal(t, string(catalog.PreventiveMaintenance), body.Details["module"])
}

func TestModuleGuard_Vencida_Retorna403ConRenewURL(t *testing.T) {
	ev := &fakeEvaluator{err: domain.NewLicenseError(domain.ErrLicenseExpired, string(catalog.PreventiveMaintenance))}
	resp, body := getWithToken(t, guardedApp(ev, true), "/pm/", tokenForRole(t, "technician"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "LICENSE_EXPIRED", body.Code)
	assert.Equal(t, "/settings/modules", body.Details["renewUrl"])
}

func TestModuleGuard_LimiteDeUsuarios_Retorna403ConConteos(t *testing.T) {
	lerr := domain.NewLicenseError(domain.ErrUserLimitExceeded, string(catalog.PreventiveMaintenance))
	lerr.MaxUsers = 5
	lerr.Current = 5
	ev := &fakeEvaluator{err: lerr}
	resp, body := getWithToken(t, guardedApp(ev, true), "/pm/", tokenForRole(t, "technician"))

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "USER_LIMIT_EXCEEDED", body.Code)
	assert.EqualValues(t, 5, body.Details["maxUsers"])
	assert.EqualValues(t, 5, body.Details["currentUsers"])
}

func TestModuleGuard_FalloDeInfraestructura_Retorna503(t *testing.T) {
	ev := &fakeEvaluator{err: errors.New("connection refused")}
	resp, body := getWithToken(t, guardedApp(ev, true), "/pm/", tokenForRole(t, "technician"))

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MODULE_CHECK_FAILED", body.Code)
	assert.NotContains(t, body.Message, "connection refused")
}
