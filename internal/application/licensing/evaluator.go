package licensing

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// Resultados de una evaluación para métricas.
const (
	OutcomeAllowed          = "allowed"
	OutcomeCore             = "core"
	OutcomeSuperAdmin       = "superadmin"
	OutcomeNotLicensed      = "not_licensed"
	OutcomeExpired          = "expired"
	OutcomeUserLimit        = "user_limit"
	OutcomeNotAuthenticated = "not_authenticated"
	OutcomeError            = "error"
)

// Evaluator decide por petición si la organización del principal puede usar
// un módulo. No guarda estado entre peticiones.
type Evaluator struct {
	licenses repository.ModuleLicenseRepository
	logs     repository.AccessLogRepository
	tracker  *ConcurrencyTracker
	cache    LicenseCache
	metrics  Metrics
	usage    *UsageRecorder
	log      zerolog.Logger
	now      Clock
}

// NewEvaluator construye el evaluador. cache y metrics pueden ser nil.
func NewEvaluator(
	licenses repository.ModuleLicenseRepository,
	logs repository.AccessLogRepository,
	tracker *ConcurrencyTracker,
	cache LicenseCache,
	metrics Metrics,
	log zerolog.Logger,
) *Evaluator {
	if cache == nil {
		cache = nopCache{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Evaluator{
		licenses: licenses,
		logs:     logs,
		tracker:  tracker,
		cache:    cache,
		metrics:  metrics,
		log:      log.With().Str("component", "module_guard").Logger(),
		now:      time.Now,
	}
}

// WithUsage hace que cada acceso permitido sume una llamada a api_calls del
// día. Un fallo al contar no rechaza la petición.
func (e *Evaluator) WithUsage(u *UsageRecorder) *Evaluator {
	e.usage = u
	return e
}

// Evaluate devuelve nil si se permite el acceso. Los rechazos son
// *domain.LicenseError (o domain.ErrNotAuthenticated); cualquier otro error
// es de infraestructura.
func (e *Evaluator) Evaluate(ctx context.Context, required licensing.ModuleCode, p *Principal) error {
	if required == "" {
		return nil
	}
	if licensing.IsCore(required) {
		e.metrics.AccessDecision(ctx, required, OutcomeCore)
		return nil
	}
	if p == nil || p.OrganizationID == "" {
		e.metrics.AccessDecision(ctx, required, OutcomeNotAuthenticated)
		return domain.ErrNotAuthenticated
	}
	// superadmin opera sobre cualquier organización sin licencia propia
	if p.Role == entity.RoleSuperAdmin {
		e.metrics.AccessDecision(ctx, required, OutcomeSuperAdmin)
		return nil
	}

	l, err := lookupLicense(ctx, e.licenses, e.cache, p.OrganizationID, required)
	if err != nil {
		e.metrics.AccessDecision(ctx, required, OutcomeError)
		return err
	}
	if l == nil || l.Status != entity.LicenseActive {
		e.deny(ctx, required, p, OutcomeNotLicensed)
		return domain.NewLicenseError(domain.ErrModuleNotLicensed, string(required))
	}
	if l.IsExpiredAt(e.now()) {
		e.deny(ctx, required, p, OutcomeExpired)
		return domain.NewLicenseError(domain.ErrLicenseExpired, string(required))
	}

	if l.MaxUsers != nil {
		current, err := e.tracker.ConcurrentUsers(ctx, p.OrganizationID, required)
		if err != nil {
			e.metrics.AccessDecision(ctx, required, OutcomeError)
			return err
		}
		if current >= *l.MaxUsers {
			// un usuario que ya está dentro de la ventana no ocupa un cupo nuevo
			counted, err := e.tracker.IsActiveUser(ctx, p.OrganizationID, required, p.UserID)
			if err != nil {
				e.metrics.AccessDecision(ctx, required, OutcomeError)
				return err
			}
			if !counted {
				e.deny(ctx, required, p, OutcomeUserLimit)
				return &domain.LicenseError{
					Kind:     domain.ErrUserLimitExceeded,
					Module:   string(required),
					MaxUsers: *l.MaxUsers,
					Current:  current,
				}
			}
		}
	}

	e.record(ctx, required, p, entity.ActionAccessed)
	e.countCall(ctx, required, p)
	e.metrics.AccessDecision(ctx, required, OutcomeAllowed)
	return nil
}

func (e *Evaluator) countCall(ctx context.Context, code licensing.ModuleCode, p *Principal) {
	if e.usage == nil {
		return
	}
	if err := e.usage.CountAPICall(ctx, p.OrganizationID, code); err != nil {
		e.log.Warn().Err(err).
			Str("organization_id", p.OrganizationID).
			Str("module", string(code)).
			Msg("no se pudo contar la llamada")
	}
}

func (e *Evaluator) deny(ctx context.Context, code licensing.ModuleCode, p *Principal, outcome string) {
	e.record(ctx, code, p, entity.ActionDenied)
	e.metrics.AccessDecision(ctx, code, outcome)
}

func (e *Evaluator) record(ctx context.Context, code licensing.ModuleCode, p *Principal, action entity.AccessAction) {
	appendLog(ctx, e.logs, e.log, &entity.ModuleAccessLog{
		OrganizationID: p.OrganizationID,
		ModuleCode:     code,
		UserID:         p.UserID,
		Action:         action,
		IPAddress:      p.IPAddress,
		UserAgent:      p.UserAgent,
		CreatedAt:      e.now(),
	})
}
