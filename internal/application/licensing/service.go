// Package licensing implementa el motor de licencias de módulos: almacén de
// licencias, evaluador de acceso, seguimiento de concurrencia, planificador de
// vencimientos, archivado de datos y telemetría de uso.
package licensing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// DefaultTrialDays duración de una prueba cuando no se indica.
const DefaultTrialDays = 30

// Service almacén de licencias. Es el único punto que muta ModuleLicense.
type Service struct {
	orgs     repository.OrganizationRepository
	licenses repository.ModuleLicenseRepository
	logs     repository.AccessLogRepository
	cache    LicenseCache
	log      zerolog.Logger
	now      Clock
}

// NewService construye el almacén. cache puede ser nil (sin caché).
func NewService(
	orgs repository.OrganizationRepository,
	licenses repository.ModuleLicenseRepository,
	logs repository.AccessLogRepository,
	cache LicenseCache,
	log zerolog.Logger,
) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{
		orgs:     orgs,
		licenses: licenses,
		logs:     logs,
		cache:    cache,
		log:      log.With().Str("component", "licensing").Logger(),
		now:      time.Now,
	}
}

// HasModuleAccess indica si la organización puede usar el módulo ahora.
// Los módulos core siempre están disponibles.
func (s *Service) HasModuleAccess(ctx context.Context, organizationID string, code licensing.ModuleCode) (bool, error) {
	if licensing.IsCore(code) {
		return true, nil
	}
	l, err := lookupLicense(ctx, s.licenses, s.cache, organizationID, code)
	if err != nil {
		return false, err
	}
	return l != nil && l.IsActiveAt(s.now()), nil
}

// OrganizationModules devuelve el catálogo completo anotado con el estado de
// las licencias de la organización.
func (s *Service) OrganizationModules(ctx context.Context, organizationID string) (*dto.OrganizationModulesResponse, error) {
	org, err := s.orgs.GetByID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	if org == nil {
		return nil, domain.ErrOrganizationNotFound
	}
	list, err := s.licenses.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list module licenses: %w", err)
	}
	byCode := make(map[licensing.ModuleCode]*entity.ModuleLicense, len(list))
	for _, l := range list {
		byCode[l.ModuleCode] = l
	}

	now := s.now()
	defs := licensing.All()
	out := &dto.OrganizationModulesResponse{
		OrganizationID: organizationID,
		Tier:           org.Tier,
		Modules:        make([]dto.OrganizationModuleResponse, 0, len(defs)),
	}
	for _, d := range defs {
		m := dto.OrganizationModuleResponse{
			Code:         string(d.Code),
			Name:         d.Name,
			Description:  d.Description,
			Tier:         string(d.Tier),
			Dependencies: codesToStrings(d.Dependencies),
			Features:     d.Features,
			IsCore:       licensing.IsCore(d.Code),
		}
		m.IsActive = m.IsCore
		if l, ok := byCode[d.Code]; ok {
			m.Status = string(l.Status)
			m.ExpiresAt = l.ExpiresAt
			m.MaxUsers = l.MaxUsers
			m.IsLicensed = l.Status == entity.LicenseActive || l.Status == entity.LicenseTrial
			m.IsActive = m.IsActive || l.IsActiveAt(now)
		} else if m.IsCore {
			m.Status = string(entity.LicenseActive)
		}
		out.Modules = append(out.Modules, m)
	}
	return out, nil
}

// Activate activa (o reactiva) un módulo. Falla si la organización no existe
// o si alguna dependencia directa no está activa.
func (s *Service) Activate(ctx context.Context, in dto.ActivateModuleRequest) (*dto.ModuleLicenseResponse, error) {
	code := licensing.ModuleCode(in.ModuleCode)
	def, ok := licensing.Definition(code)
	if !ok {
		return nil, domain.NewLicenseError(domain.ErrUnknownModule, in.ModuleCode)
	}
	if err := s.requireOrganization(ctx, in.OrganizationID); err != nil {
		return nil, err
	}
	for _, dep := range def.Dependencies {
		active, err := s.HasModuleAccess(ctx, in.OrganizationID, dep)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, &domain.LicenseError{
				Kind:       domain.ErrDependencyNotMet,
				Module:     string(code),
				Dependency: string(dep),
			}
		}
	}

	now := s.now()
	saved, err := s.licenses.UpsertActivation(ctx, &entity.ModuleLicense{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ModuleCode:     code,
		Status:         entity.LicenseActive,
		TierLevel:      string(def.Tier),
		ActivatedAt:    now,
		ExpiresAt:      in.ExpiresAt,
		MaxUsers:       in.MaxUsers,
		UsageLimits:    in.UsageLimits,
		ActivatedByID:  in.ActivatedByID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert module license: %w", err)
	}
	s.cache.Invalidate(in.OrganizationID, code)
	appendLog(ctx, s.logs, s.log, &entity.ModuleAccessLog{
		OrganizationID: in.OrganizationID,
		ModuleCode:     code,
		UserID:         in.ActivatedByID,
		Action:         entity.ActionActivated,
		CreatedAt:      now,
	})
	s.log.Info().
		Str("organization_id", in.OrganizationID).
		Str("module", string(code)).
		Msg("módulo activado")
	return toModuleLicenseResponse(saved), nil
}

// Deactivate pasa la licencia a inactive. Los módulos core no se pueden desactivar.
func (s *Service) Deactivate(ctx context.Context, in dto.DeactivateModuleRequest) error {
	code := licensing.ModuleCode(in.ModuleCode)
	if licensing.IsCore(code) {
		return domain.NewLicenseError(domain.ErrCoreModuleProtected, in.ModuleCode)
	}
	if !licensing.IsKnown(code) {
		return domain.NewLicenseError(domain.ErrUnknownModule, in.ModuleCode)
	}
	l, err := s.licenses.Get(ctx, in.OrganizationID, code)
	if err != nil {
		return fmt.Errorf("get module license: %w", err)
	}
	if l == nil {
		return domain.NewLicenseError(domain.ErrModuleLicenseNotFound, in.ModuleCode)
	}
	if err := s.licenses.UpdateStatus(ctx, in.OrganizationID, code, entity.LicenseInactive); err != nil {
		return fmt.Errorf("deactivate module license: %w", err)
	}
	s.cache.Invalidate(in.OrganizationID, code)
	appendLog(ctx, s.logs, s.log, &entity.ModuleAccessLog{
		OrganizationID: in.OrganizationID,
		ModuleCode:     code,
		UserID:         in.DeactivatedByID,
		Action:         entity.ActionDeactivated,
		CreatedAt:      s.now(),
	})
	s.log.Info().
		Str("organization_id", in.OrganizationID).
		Str("module", string(code)).
		Msg("módulo desactivado")
	return nil
}

// ActivateTier activa en orden de catálogo los módulos no core del plan y
// luego registra el plan en la organización. Los fallos por módulo se
// reportan en el resultado sin detener el resto.
func (s *Service) ActivateTier(ctx context.Context, in dto.ActivateTierRequest) (*dto.ActivateTierResponse, error) {
	tier, ok := licensing.ParseTier(in.Tier)
	if !ok {
		return nil, fmt.Errorf("%w: plan %q", domain.ErrInvalidInput, in.Tier)
	}
	if err := s.requireOrganization(ctx, in.OrganizationID); err != nil {
		return nil, err
	}

	out := &dto.ActivateTierResponse{OrganizationID: in.OrganizationID, Tier: string(tier)}
	for _, code := range licensing.ModulesForTier(tier) {
		if licensing.IsCore(code) {
			continue
		}
		res := dto.TierModuleResult{ModuleCode: string(code)}
		lic, err := s.Activate(ctx, dto.ActivateModuleRequest{
			OrganizationID: in.OrganizationID,
			ModuleCode:     string(code),
			ExpiresAt:      in.ExpiresAt,
			ActivatedByID:  in.ActivatedByID,
		})
		if err != nil {
			res.Error = err.Error()
			out.Failed++
			s.log.Warn().Err(err).
				Str("organization_id", in.OrganizationID).
				Str("module", string(code)).
				Msg("activar plan: módulo falló")
		} else {
			res.Success = true
			res.License = lic
			out.Activated++
		}
		out.Results = append(out.Results, res)
	}
	if err := s.orgs.UpdateTier(ctx, in.OrganizationID, string(tier)); err != nil {
		return nil, fmt.Errorf("update organization tier: %w", err)
	}
	return out, nil
}

// StartTrial crea o pasa a trial la licencia con vencimiento now + días.
func (s *Service) StartTrial(ctx context.Context, in dto.StartTrialRequest) (*dto.ModuleLicenseResponse, error) {
	code := licensing.ModuleCode(in.ModuleCode)
	def, ok := licensing.Definition(code)
	if !ok {
		return nil, domain.NewLicenseError(domain.ErrUnknownModule, in.ModuleCode)
	}
	if err := s.requireOrganization(ctx, in.OrganizationID); err != nil {
		return nil, err
	}
	now := s.now()
	current, err := lookupLicense(ctx, s.licenses, s.cache, in.OrganizationID, code)
	if err != nil {
		return nil, err
	}
	// Una prueba nunca reemplaza una licencia pagada vigente.
	if current != nil && current.IsActiveAt(now) {
		return nil, fmt.Errorf("%w: el módulo ya tiene una licencia activa", domain.ErrConflict)
	}
	days := in.TrialDays
	if days <= 0 {
		days = DefaultTrialDays
	}
	expires := now.Add(time.Duration(days) * 24 * time.Hour)
	saved, err := s.licenses.UpsertTrial(ctx, &entity.ModuleLicense{
		ID:             uuid.New().String(),
		OrganizationID: in.OrganizationID,
		ModuleCode:     code,
		Status:         entity.LicenseTrial,
		TierLevel:      string(def.Tier),
		ActivatedAt:    now,
		ExpiresAt:      &expires,
		ActivatedByID:  in.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert trial license: %w", err)
	}
	s.cache.Invalidate(in.OrganizationID, code)
	s.log.Info().
		Str("organization_id", in.OrganizationID).
		Str("module", string(code)).
		Int("days", days).
		Msg("prueba iniciada")
	return toModuleLicenseResponse(saved), nil
}

// ExpiringWithin licencias active/trial que vencen entre ahora y ahora + días.
func (s *Service) ExpiringWithin(ctx context.Context, days int) ([]*entity.ModuleLicense, error) {
	now := s.now()
	list, err := s.licenses.ListExpiringBetween(ctx, now, now.Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("list expiring licenses: %w", err)
	}
	return list, nil
}

// ExpiredPastGrace licencias active/trial vencidas hace más de grace.
func (s *Service) ExpiredPastGrace(ctx context.Context, grace time.Duration) ([]*entity.ModuleLicense, error) {
	list, err := s.licenses.ListExpiredBefore(ctx, s.now().Add(-grace), entity.LicenseActive, entity.LicenseTrial)
	if err != nil {
		return nil, fmt.Errorf("list licenses past grace: %w", err)
	}
	return list, nil
}

// InGracePeriod licencias active/trial ya vencidas pero dentro del periodo de gracia.
func (s *Service) InGracePeriod(ctx context.Context, grace time.Duration) ([]*entity.ModuleLicense, error) {
	now := s.now()
	list, err := s.licenses.ListExpiredBefore(ctx, now, entity.LicenseActive, entity.LicenseTrial)
	if err != nil {
		return nil, fmt.Errorf("list licenses in grace: %w", err)
	}
	cutoff := now.Add(-grace)
	out := make([]*entity.ModuleLicense, 0, len(list))
	for _, l := range list {
		if l.ExpiresAt != nil && !l.ExpiresAt.Before(cutoff) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Expire marca la licencia como expired.
func (s *Service) Expire(ctx context.Context, l *entity.ModuleLicense) error {
	if err := s.licenses.UpdateStatus(ctx, l.OrganizationID, l.ModuleCode, entity.LicenseExpired); err != nil {
		return fmt.Errorf("expire module license: %w", err)
	}
	s.cache.Invalidate(l.OrganizationID, l.ModuleCode)
	return nil
}

// ExpiredLicenses licencias en estado expired (candidatas a archivado).
func (s *Service) ExpiredLicenses(ctx context.Context) ([]*entity.ModuleLicense, error) {
	list, err := s.licenses.ListByStatus(ctx, entity.LicenseExpired)
	if err != nil {
		return nil, fmt.Errorf("list expired licenses: %w", err)
	}
	return list, nil
}

func (s *Service) requireOrganization(ctx context.Context, id string) error {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get organization: %w", err)
	}
	if org == nil {
		return domain.ErrOrganizationNotFound
	}
	return nil
}

// lookupLicense lee la licencia pasando por la caché local.
func lookupLicense(ctx context.Context, repo repository.ModuleLicenseRepository, cache LicenseCache, organizationID string, code licensing.ModuleCode) (*entity.ModuleLicense, error) {
	if l, ok := cache.Get(organizationID, code); ok {
		return l, nil
	}
	l, err := repo.Get(ctx, organizationID, code)
	if err != nil {
		return nil, fmt.Errorf("get module license: %w", err)
	}
	if l != nil {
		cache.Set(l)
	}
	return l, nil
}

// appendLog escribe en la bitácora; un fallo se registra y se descarta.
func appendLog(ctx context.Context, logs repository.AccessLogRepository, log zerolog.Logger, entry *entity.ModuleAccessLog) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := logs.Append(ctx, entry); err != nil {
		log.Warn().Err(err).
			Str("organization_id", entry.OrganizationID).
			Str("module", string(entry.ModuleCode)).
			Str("action", string(entry.Action)).
			Msg("no se pudo escribir la bitácora de acceso")
	}
}

// ToModuleLicenseResponse convierte la entidad al DTO de salida.
func ToModuleLicenseResponse(l *entity.ModuleLicense) *dto.ModuleLicenseResponse {
	return toModuleLicenseResponse(l)
}

func toModuleLicenseResponse(l *entity.ModuleLicense) *dto.ModuleLicenseResponse {
	if l == nil {
		return nil
	}
	return &dto.ModuleLicenseResponse{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		ModuleCode:     string(l.ModuleCode),
		Status:         string(l.Status),
		TierLevel:      l.TierLevel,
		ActivatedAt:    l.ActivatedAt,
		ExpiresAt:      l.ExpiresAt,
		MaxUsers:       l.MaxUsers,
		UsageLimits:    l.UsageLimits,
		ActivatedByID:  l.ActivatedByID,
		UpdatedAt:      l.UpdatedAt,
	}
}

func codesToStrings(codes []licensing.ModuleCode) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, string(c))
	}
	return out
}
