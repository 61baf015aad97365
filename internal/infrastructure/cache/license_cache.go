// Package cache implementa la caché local de licencias con ristretto.
package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
)

var _ applicensing.LicenseCache = (*LicenseCache)(nil)

// LicenseCache guarda licencias por (organización, módulo) durante ttl.
// Es por proceso: otras instancias ven los cambios cuando vence la entrada.
type LicenseCache struct {
	c   *ristretto.Cache[string, entity.ModuleLicense]
	ttl time.Duration
}

// NewLicenseCache maxEntries acota el número de licencias en memoria.
func NewLicenseCache(maxEntries int64, ttl time.Duration) (*LicenseCache, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, entity.ModuleLicense]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LicenseCache{c: c, ttl: ttl}, nil
}

func key(organizationID string, code licensing.ModuleCode) string {
	return organizationID + "/" + string(code)
}

// Get devuelve una copia de la licencia cacheada.
func (lc *LicenseCache) Get(organizationID string, code licensing.ModuleCode) (*entity.ModuleLicense, bool) {
	l, ok := lc.c.Get(key(organizationID, code))
	if !ok {
		return nil, false
	}
	return &l, true
}

// Set guarda una copia; la escritura es asíncrona salvo que se llame Wait.
func (lc *LicenseCache) Set(l *entity.ModuleLicense) {
	if l == nil {
		return
	}
	lc.c.SetWithTTL(key(l.OrganizationID, l.ModuleCode), *l, 1, lc.ttl)
}

// Invalidate descarta la entrada.
func (lc *LicenseCache) Invalidate(organizationID string, code licensing.ModuleCode) {
	lc.c.Del(key(organizationID, code))
}

// Wait bloquea hasta aplicar las escrituras pendientes.
func (lc *LicenseCache) Wait() {
	lc.c.Wait()
}

// Close libera los recursos de ristretto.
func (lc *LicenseCache) Close() {
	lc.c.Close()
}
