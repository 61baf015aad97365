package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/auth"
	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/usecase"
)

// UserHandler consultas y alta de usuarios de una organización.
type UserHandler struct {
	uc       *usecase.UserUseCase
	accounts *auth.AuthUseCase
	log      zerolog.Logger
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *usecase.UserUseCase, accounts *auth.AuthUseCase, log zerolog.Logger) *UserHandler {
	return &UserHandler{uc: uc, accounts: accounts, log: log}
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetUserID(c))
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Admins godoc
// @Summary      Administradores de la organización
// @Tags         organizations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la organización"
// @Success      200  {array}  dto.UserResponse
// @Router       /api/organizations/{id}/admins [get]
func (h *UserHandler) Admins(c *fiber.Ctx) error {
	id := c.Params("id")
	if !canReadOrganization(c, id) {
		return forbiddenOrganization(c)
	}
	out, err := h.uc.Admins(c.UserContext(), id)
	if err != nil {
		return failWith(c, h.log, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear usuario en la organización
// @Description  Superadmin para cualquier organización; admin solo para la suya.
// @Tags         organizations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la organización"
// @Param        body  body  dto.CreateUserRequest   true  "email, password, name, role"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/organizations/{id}/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	id := c.Params("id")
	if !canManageOrganization(c, id) {
		return forbiddenOrganization(c)
	}
	var in dto.CreateUserRequest
	if e := bindJSON(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.accounts.CreateUser(c.UserContext(), id, in)
	if err != nil {
		return failWith(c, h.log, err)
	}
	h.log.Info().
		Str("organization_id", id).
		Str("role", out.Role).
		Str("created_by", GetUserID(c)).
		Msg("usuario creado")
	return c.Status(fiber.StatusCreated).JSON(out)
}
