// Package telemetry expone las métricas del motor de licencias con
// OpenTelemetry y un exportador Prometheus.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// MeterName nombre del instrumentation scope.
const MeterName = "github.com/jhoicas/cmms-api/licensing"

var _ applicensing.Metrics = (*Metrics)(nil)

// Metrics implementa licensing.Metrics.
type Metrics struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider

	accessDecisions metric.Int64Counter
	unmapped        metric.Int64Counter
	archived        metric.Int64Counter
	jobRuns         metric.Int64Counter
}

// New crea el proveedor con un registro Prometheus propio.
func New() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter(MeterName)

	m := &Metrics{registry: reg, provider: provider}
	if m.accessDecisions, err = meter.Int64Counter("license_access_decisions",
		metric.WithDescription("Decisiones del guardia de módulos por resultado")); err != nil {
		return nil, err
	}
	if m.unmapped, err = meter.Int64Counter("archival_unmapped_modules",
		metric.WithDescription("Archivados pedidos para módulos sin tablas mapeadas")); err != nil {
		return nil, err
	}
	if m.archived, err = meter.Int64Counter("archival_records",
		metric.WithDescription("Filas copiadas a data_archives")); err != nil {
		return nil, err
	}
	if m.jobRuns, err = meter.Int64Counter("license_job_runs",
		metric.WithDescription("Ejecuciones de trabajos programados por estado")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) AccessDecision(ctx context.Context, code licensing.ModuleCode, outcome string) {
	m.accessDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", string(code)),
		attribute.String("outcome", outcome),
	))
}

func (m *Metrics) UnmappedArchive(ctx context.Context, code licensing.ModuleCode) {
	m.unmapped.Add(ctx, 1, metric.WithAttributes(attribute.String("module", string(code))))
}

func (m *Metrics) ArchivedRecords(ctx context.Context, code licensing.ModuleCode, n int) {
	if n <= 0 {
		return
	}
	m.archived.Add(ctx, int64(n), metric.WithAttributes(attribute.String("module", string(code))))
}

func (m *Metrics) JobRun(ctx context.Context, job string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.jobRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("status", status),
	))
}

// Handler endpoint de scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Shutdown vacía y cierra el proveedor.
func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
