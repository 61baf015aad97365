package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
)

// ModuleRequestHandler solicitudes de módulos de las organizaciones.
type ModuleRequestHandler struct {
	svc *licensing.RequestService
	log zerolog.Logger
}

// NewModuleRequestHandler construye el handler.
func NewModuleRequestHandler(svc *licensing.RequestService, log zerolog.Logger) *ModuleRequestHandler {
	return &ModuleRequestHandler{svc: svc, log: log}
}

// Create godoc
// @Summary      Solicitar un módulo para la organización del usuario
// @Tags         module-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateModuleRequestRequest  true  "Módulo, tipo y justificación"
// @Success      201  {object}  dto.ModuleRequestResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /module-requests [post]
func (h *ModuleRequestHandler) Create(c *fiber.Ctx) error {
	p := principalFrom(c)
	if p == nil || p.OrganizationID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	var in dto.CreateModuleRequestRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.Create(c.UserContext(), *p, in)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Solicitudes de la organización del usuario
// @Tags         module-requests
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ModuleRequestResponse
// @Router       /module-requests [get]
func (h *ModuleRequestHandler) List(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	out, err := h.svc.ListByOrganization(c.UserContext(), orgID)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Pending godoc
// @Summary      Solicitudes pendientes de revisión (superadmin)
// @Tags         module-requests
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ModuleRequestResponse
// @Router       /module-requests/pending [get]
func (h *ModuleRequestHandler) Pending(c *fiber.Ctx) error {
	out, err := h.svc.ListPending(c.UserContext())
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Review godoc
// @Summary      Aprobar o rechazar una solicitud (superadmin)
// @Tags         module-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                          true  "ID de la solicitud"
// @Param        body  body  dto.ReviewModuleRequestRequest  true  "Decisión"
// @Success      200  {object}  dto.ModuleRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /module-requests/{id}/review [patch]
func (h *ModuleRequestHandler) Review(c *fiber.Ctx) error {
	var in dto.ReviewModuleRequestRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.svc.Review(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}
