package licensing

import (
	"context"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// Clock fuente de tiempo inyectable.
type Clock func() time.Time

// Principal identidad explícita de quien hace la petición.
type Principal struct {
	UserID         string
	OrganizationID string
	Role           string
	IPAddress      string
	UserAgent      string
}

// LicenseCache caché local de licencias. La implementación con ristretto vive
// en infrastructure/cache.
type LicenseCache interface {
	Get(organizationID string, code licensing.ModuleCode) (*entity.ModuleLicense, bool)
	Set(l *entity.ModuleLicense)
	Invalidate(organizationID string, code licensing.ModuleCode)
}

// Notifier entrega una notificación a un usuario (bandeja + evento saliente).
type Notifier interface {
	Notify(ctx context.Context, n *entity.Notification) error
}

// LeaderLock ejecuta fn solo si se obtiene el candado de la clave.
// Devuelve false sin error cuando otra instancia lo tiene.
type LeaderLock interface {
	RunExclusive(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error)
}

// Metrics contadores del motor de licencias.
type Metrics interface {
	AccessDecision(ctx context.Context, code licensing.ModuleCode, outcome string)
	UnmappedArchive(ctx context.Context, code licensing.ModuleCode)
	ArchivedRecords(ctx context.Context, code licensing.ModuleCode, n int)
	JobRun(ctx context.Context, job string, err error)
}

// ArchiveTxRunner ejecuta fn dentro de una transacción con el repositorio de
// archivos atado a ella.
type ArchiveTxRunner interface {
	RunArchive(ctx context.Context, fn func(archives repository.DataArchiveRepository) error) error
}

type nopCache struct{}

func (nopCache) Get(string, licensing.ModuleCode) (*entity.ModuleLicense, bool) { return nil, false }
func (nopCache) Set(*entity.ModuleLicense)                                      {}
func (nopCache) Invalidate(string, licensing.ModuleCode)                        {}

// NopMetrics descarta todas las métricas.
type NopMetrics struct{}

func (NopMetrics) AccessDecision(context.Context, licensing.ModuleCode, string) {}
func (NopMetrics) UnmappedArchive(context.Context, licensing.ModuleCode)        {}
func (NopMetrics) ArchivedRecords(context.Context, licensing.ModuleCode, int)   {}
func (NopMetrics) JobRun(context.Context, string, error)                        {}

// LocalLock candado de proceso para despliegues de una sola instancia.
type LocalLock struct{}

func (LocalLock) RunExclusive(ctx context.Context, _ string, fn func(ctx context.Context) error) (bool, error) {
	return true, fn(ctx)
}
