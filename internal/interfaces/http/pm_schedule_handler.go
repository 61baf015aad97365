package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/usecase"
)

// PMScheduleHandler maneja las peticiones HTTP de programas preventivos (protegido por módulo).
type PMScheduleHandler struct {
	uc  *usecase.PMScheduleUseCase
	log zerolog.Logger
}

// NewPMScheduleHandler construye el handler.
func NewPMScheduleHandler(uc *usecase.PMScheduleUseCase, log zerolog.Logger) *PMScheduleHandler {
	return &PMScheduleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear programa preventivo
// @Tags         pm-schedules
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePMScheduleRequest  true  "Datos del programa"
// @Success      201   {object}  dto.PMScheduleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/pm-schedules [post]
func (h *PMScheduleHandler) Create(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "organization_id requerido"})
	}
	var in dto.CreatePMScheduleRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.uc.Create(c.UserContext(), orgID, in)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener programa por ID
// @Tags         pm-schedules
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del programa"
// @Success      200  {object}  dto.PMScheduleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pm-schedules/{id} [get]
func (h *PMScheduleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar programa
// @Tags         pm-schedules
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del programa"
// @Param        body  body  dto.UpdatePMScheduleRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.PMScheduleResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/pm-schedules/{id} [put]
func (h *PMScheduleHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePMScheduleRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.uc.Update(c.UserContext(), GetOrganizationID(c), c.Params("id"), in)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Registrar ejecución y avanzar la próxima fecha
// @Tags         pm-schedules
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del programa"
// @Success      200  {object}  dto.PMScheduleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/pm-schedules/{id}/complete [post]
func (h *PMScheduleHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetOrganizationID(c), c.Params("id"))
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar programas preventivos
// @Tags         pm-schedules
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.PMScheduleListResponse
// @Router       /api/pm-schedules [get]
func (h *PMScheduleHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	out, err := h.uc.List(c.UserContext(), GetOrganizationID(c), page.Limit, page.Offset)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Forecast godoc
// @Summary      Pronóstico de ejecuciones (mantenimiento predictivo)
// @Tags         pm-schedules
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Ventana en días"  default(30)
// @Success      200   {object}  dto.PMForecastResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/pm-schedules/forecast [get]
func (h *PMScheduleHandler) Forecast(c *fiber.Ctx) error {
	out, err := h.uc.Forecast(c.UserContext(), GetOrganizationID(c), c.QueryInt("days", usecase.DefaultForecastDays))
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}
