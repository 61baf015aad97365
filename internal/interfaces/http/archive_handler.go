package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
	catalog "github.com/jhoicas/cmms-api/internal/domain/licensing"
	"github.com/jhoicas/cmms-api/internal/infrastructure/export"
)

// ArchiveHandler archivado, restauración y exportación de datos de módulos.
type ArchiveHandler struct {
	archival *licensing.ArchivalService
	log      zerolog.Logger
}

// NewArchiveHandler construye el handler.
func NewArchiveHandler(archival *licensing.ArchivalService, log zerolog.Logger) *ArchiveHandler {
	return &ArchiveHandler{archival: archival, log: log}
}

// Archive godoc
// @Summary      Archivar los datos de un módulo (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ArchiveModuleRequest  true  "Organización, módulo y retención"
// @Success      200  {object}  dto.ArchiveResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /module-licensing/archive [post]
func (h *ArchiveHandler) Archive(c *fiber.Ctx) error {
	var in dto.ArchiveModuleRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	code, err := licensing.ParseModule(in.ModuleCode)
	if err != nil {
		return failWith(c, h.log, err)
	}
	out, err := h.archival.Archive(c.UserContext(), in.OrganizationID, code, in.RetentionDays)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar los datos archivados de un módulo (superadmin)
// @Tags         module-licensing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RestoreModuleRequest  true  "Organización y módulo"
// @Success      200  {object}  dto.RestoreResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /module-licensing/restore [post]
func (h *ArchiveHandler) Restore(c *fiber.Ctx) error {
	var in dto.RestoreModuleRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	code, err := licensing.ParseModule(in.ModuleCode)
	if err != nil {
		return failWith(c, h.log, err)
	}
	out, err := h.archival.Restore(c.UserContext(), in.OrganizationID, code)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Copias archivadas de la organización
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        orgId       path   string  true   "ID de la organización"
// @Param        moduleCode  query  string  false  "Filtrar por módulo"
// @Success      200  {array}  dto.ArchiveRecordResponse
// @Router       /module-licensing/organization/{orgId}/archives [get]
func (h *ArchiveHandler) List(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	var code catalog.ModuleCode
	if raw := c.Query("moduleCode"); raw != "" {
		parsed, err := licensing.ParseModule(raw)
		if err != nil {
			return failWith(c, h.log, err)
		}
		code = parsed
	}
	out, err := h.archival.List(c.UserContext(), orgID, code)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar las copias archivadas de un módulo
// @Description  JSON agrupado por tabla; con format=xlsx un libro con una hoja por tabla.
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        orgId   path   string  true   "ID de la organización"
// @Param        code    path   string  true   "Código del módulo"
// @Param        format  query  string  false  "json | xlsx"
// @Success      200  {object}  dto.ArchiveExportResponse
// @Router       /module-licensing/organization/{orgId}/module/{code}/export [get]
func (h *ArchiveHandler) Export(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	code, err := licensing.ParseModule(c.Params("code"))
	if err != nil {
		return failWith(c, h.log, err)
	}
	out, err := h.archival.Export(c.UserContext(), orgID, code)
	if err != nil {
		return failWith(c, h.log, err)
	}
	switch c.Query("format", "json") {
	case "json":
		return c.JSON(out)
	case "xlsx":
		book, err := export.ArchiveXLSX(out)
		if err != nil {
			return failWith(c, h.log, err)
		}
		c.Set(fiber.HeaderContentType, export.ContentTypeXLSX)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="archivo-`+string(code)+`.xlsx"`)
		return c.Send(book)
	default:
		return badRequest(c, "INVALID_FORMAT", "format debe ser json o xlsx")
	}
}

// Size godoc
// @Summary      Tamaño de las copias archivadas
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        orgId  path  string  true  "ID de la organización"
// @Success      200  {object}  dto.ArchiveSizeResponse
// @Router       /module-licensing/organization/{orgId}/archive-size [get]
func (h *ArchiveHandler) Size(c *fiber.Ctx) error {
	orgID := c.Params("orgId")
	if !canReadOrganization(c, orgID) {
		return forbiddenOrganization(c)
	}
	out, err := h.archival.Size(c.UserContext(), orgID)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}
