package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	catalog "github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// DefaultExpiringDays ventana de /expiring cuando no llega ?days.
const DefaultExpiringDays = 30

type statementRenderer interface {
	Generate(ctx context.Context, in *dto.OrganizationModulesResponse, issuedAt time.Time) ([]byte, error)
}

// LicensingHandler expone el almacén de licencias y la telemetría de uso.
type LicensingHandler struct {
	svc       *licensing.Service
	usage     *licensing.UsageRecorder
	statement statementRenderer
	grace     time.Duration
	log       zerolog.Logger
}

// NewLicensingHandler construye el handler.
func NewLicensingHandler(svc *licensing.Service, usage *licensing.UsageRecorder, statement statementRenderer, grace time.Duration, log zerolog.Logger) *LicensingHandler {
	return &LicensingHandler{svc: svc, usage: usage, statement: statement, grace: grace, log: log}
}

// OrganizationModules godoc
// @Summary      Catálogo de módulos con el estado de licencia de la organización
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        orgId  path  string  true  "ID de la organización"
// @Success      200  {object}  dto.OrganizationModulesResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /module-licensing/organization/{orgId}/modules [get]
func (h *LicensingHandler) OrganizationModules(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	out, err := h.svc.OrganizationModules(c.UserContext(), orgID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// CheckAccess godoc
// @Summary      Indica si la organización tiene acceso al módulo
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        orgId  path  string  true  "ID de la organización"
// @Param        code   path  string  true  "Código del módulo"
// @Success      200  {object}  dto.ModuleAccessResponse
// @Router       /module-licensing/organization/{orgId}/module/{code}/access [get]
func (h *LicensingHandler) CheckAccess(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	code := catalog.ModuleCode(c.Params("code"))
	ok, err := h.svc.HasModuleAccess(c.UserContext(), orgID, code)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.ModuleAccessResponse{OrganizationID: orgID, ModuleCode: string(code), HasAccess: ok})
}

// Activate godoc
// @Summary      Activar un módulo (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ActivateModuleRequest  true  "Licencia a activar"
// @Success      201  {object}  dto.ModuleLicenseResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /module-licensing/activate [post]
func (h *LicensingHandler) Activate(c *fiber.Ctx) error {
	var in dto.ActivateModuleRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	if in.ActivatedByID == "" {
		in.ActivatedByID = GetUserID(c)
	}
	out, err := h.svc.Activate(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Deactivate godoc
// @Summary      Desactivar un módulo (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DeactivateModuleRequest  true  "Licencia a desactivar"
// @Success      200  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /module-licensing/deactivate [delete]
func (h *LicensingHandler) Deactivate(c *fiber.Ctx) error {
	var in dto.DeactivateModuleRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	if in.DeactivatedByID == "" {
		in.DeactivatedByID = GetUserID(c)
	}
	if err := h.svc.Deactivate(c.UserContext(), in); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "módulo desactivado"})
}

// ActivateTier godoc
// @Summary      Activar todos los módulos de un plan (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ActivateTierRequest  true  "Organización y plan"
// @Success      200  {object}  dto.ActivateTierResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /module-licensing/activate-tier [post]
func (h *LicensingHandler) ActivateTier(c *fiber.Ctx) error {
	var in dto.ActivateTierRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	if in.ActivatedByID == "" {
		in.ActivatedByID = GetUserID(c)
	}
	out, err := h.svc.ActivateTier(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// StartTrial godoc
// @Summary      Iniciar prueba de un módulo
// @Description  Superadmin para cualquier organización; admin solo para la suya.
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartTrialRequest  true  "Organización, módulo y días"
// @Success      201  {object}  dto.ModuleLicenseResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "el módulo ya tiene licencia activa"
// @Router       /module-licensing/start-trial [post]
func (h *LicensingHandler) StartTrial(c *fiber.Ctx) error {
	var in dto.StartTrialRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	if !canManageOrganization(c, in.OrganizationID) {
		return forbiddenOrganization(c)
	}
	if in.UserID == "" {
		in.UserID = GetUserID(c)
	}
	out, err := h.svc.StartTrial(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Usage godoc
// @Summary      Uso diario de módulos (últimos 30 registros)
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        orgId       path   string  true   "ID de la organización"
// @Param        moduleCode  query  string  false  "Filtrar por módulo"
// @Success      200  {array}  dto.ModuleUsageResponse
// @Router       /module-licensing/organization/{orgId}/usage [get]
func (h *LicensingHandler) Usage(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	var code catalog.ModuleCode
	if raw := c.Query("moduleCode"); raw != "" {
		parsed, err := licensing.ParseModule(raw)
		if err != nil {
			return h.fail(c, err)
		}
		code = parsed
	}
	out, err := h.usage.Stats(c.UserContext(), orgID, code)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// TrackUsage godoc
// @Summary      Registrar contadores de uso del día
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TrackUsageRequest  true  "Contadores; los omitidos no cambian"
// @Success      200  {object}  dto.ModuleUsageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /module-licensing/track-usage [post]
func (h *LicensingHandler) TrackUsage(c *fiber.Ctx) error {
	var in dto.TrackUsageRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	if !canReadOrganization(c, in.OrganizationID) {
		return forbiddenOrganization(c)
	}
	out, err := h.usage.Track(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Licencias que vencen pronto (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días"  default(30)
// @Success      200  {array}  dto.ModuleLicenseResponse
// @Router       /module-licensing/expiring [get]
func (h *LicensingHandler) Expiring(c *fiber.Ctx) error {
	days := c.QueryInt("days", DefaultExpiringDays)
	if days <= 0 {
		days = DefaultExpiringDays
	}
	list, err := h.svc.ExpiringWithin(c.UserContext(), days)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toLicenseResponses(list))
}

// GracePeriod godoc
// @Summary      Licencias vencidas dentro del periodo de gracia (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ModuleLicenseResponse
// @Router       /module-licensing/grace-period [get]
func (h *LicensingHandler) GracePeriod(c *fiber.Ctx) error {
	list, err := h.svc.InGracePeriod(c.UserContext(), h.grace)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(toLicenseResponses(list))
}

// Statement godoc
// @Summary      Estado de licencias en PDF
// @Tags         module-licensing
// @Security     Bearer
// @Produce      application/pdf
// @Param        orgId  path  string  true  "ID de la organización"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /module-licensing/organization/{orgId}/statement.pdf [get]
func (h *LicensingHandler) Statement(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	mods, err := h.svc.OrganizationModules(c.UserContext(), orgID)
	if err != nil {
		return h.fail(c, err)
	}
	pdf, err := h.statement.Generate(c.UserContext(), mods, time.Now())
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="modulos-`+orgID+`.pdf"`)
	return c.Send(pdf)
}

func (h *LicensingHandler) fail(c *fiber.Ctx, err error) error {
	return failWith(c, h.log, err)
}

// failWith responde el error mapeado y registra los que no son de dominio.
func failWith(c *fiber.Ctx, log zerolog.Logger, err error) error {
	if status := statusFor(err); status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error en handler")
	}
	return writeError(c, err)
}

func toLicenseResponses(list []*entity.ModuleLicense) []dto.ModuleLicenseResponse {
	out := make([]dto.ModuleLicenseResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *licensing.ToModuleLicenseResponse(l))
	}
	return out
}
