package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_ExportaContadores(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	ctx := context.Background()

	m.AccessDecision(ctx, licensing.PreventiveMaintenance, "allowed")
	m.AccessDecision(ctx, licensing.PreventiveMaintenance, "user_limit")
	m.UnmappedArchive(ctx, licensing.MeterReading)
	m.ArchivedRecords(ctx, licensing.PreventiveMaintenance, 3)
	m.JobRun(ctx, "purge-sweep", nil)
	m.JobRun(ctx, "purge-sweep", errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, "license_access_decisions_total")
	assert.Contains(t, body, `outcome="user_limit"`)
	assert.Contains(t, body, "archival_unmapped_modules_total")
	assert.Contains(t, body, `module="meter_reading"`)
	assert.Contains(t, body, "archival_records_total")
	assert.Contains(t, body, `status="error"`)
}

func TestMetrics_ArchivadoSinFilasNoCuenta(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	m.ArchivedRecords(context.Background(), licensing.PreventiveMaintenance, 0)
	assert.NotContains(t, scrape(t, m), "archival_records_total")
}
