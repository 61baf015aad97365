package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// DefaultConcurrencyWindow ventana para contar usuarios concurrentes.
const DefaultConcurrencyWindow = 5 * time.Minute

// ConcurrencyTracker deriva los usuarios concurrentes de la bitácora de acceso.
// La cuenta no reserva cupo: dos peticiones simultáneas pueden pasar ambas.
type ConcurrencyTracker struct {
	logs   repository.AccessLogRepository
	window time.Duration
	now    Clock
}

// NewConcurrencyTracker construye el tracker; window <= 0 usa el valor por defecto.
func NewConcurrencyTracker(logs repository.AccessLogRepository, window time.Duration) *ConcurrencyTracker {
	if window <= 0 {
		window = DefaultConcurrencyWindow
	}
	return &ConcurrencyTracker{logs: logs, window: window, now: time.Now}
}

// ConcurrentUsers usuarios distintos con acceso concedido dentro de la ventana.
func (t *ConcurrencyTracker) ConcurrentUsers(ctx context.Context, organizationID string, code licensing.ModuleCode) (int, error) {
	n, err := t.logs.CountDistinctUsers(ctx, organizationID, code, t.now().Add(-t.window))
	if err != nil {
		return 0, fmt.Errorf("count concurrent users: %w", err)
	}
	return n, nil
}

// IsActiveUser indica si el usuario ya cuenta dentro de la ventana.
func (t *ConcurrencyTracker) IsActiveUser(ctx context.Context, organizationID string, code licensing.ModuleCode, userID string) (bool, error) {
	ok, err := t.logs.HasAccessedSince(ctx, organizationID, code, userID, t.now().Add(-t.window))
	if err != nil {
		return false, fmt.Errorf("check active user: %w", err)
	}
	return ok, nil
}
