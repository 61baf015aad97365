package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain"
)

// URLs que acompañan los rechazos de licencia.
const (
	UpgradeURL = "/pricing"
	RenewURL   = "/settings/modules"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los errores de licencia envuelven a los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrNotAuthenticated, fiber.StatusUnauthorized, "NOT_AUTHENTICATED"},
	{domain.ErrModuleNotLicensed, fiber.StatusForbidden, "MODULE_NOT_LICENSED"},
	{domain.ErrLicenseExpired, fiber.StatusForbidden, "LICENSE_EXPIRED"},
	{domain.ErrUserLimitExceeded, fiber.StatusForbidden, "USER_LIMIT_EXCEEDED"},
	{domain.ErrDependencyNotMet, fiber.StatusBadRequest, "DEPENDENCY_NOT_MET"},
	{domain.ErrCoreModuleProtected, fiber.StatusBadRequest, "CORE_MODULE_PROTECTED"},
	{domain.ErrUnknownModule, fiber.StatusBadRequest, "UNKNOWN_MODULE"},
	{domain.ErrOrganizationNotFound, fiber.StatusNotFound, "ORGANIZATION_NOT_FOUND"},
	{domain.ErrModuleLicenseNotFound, fiber.StatusNotFound, "MODULE_LICENSE_NOT_FOUND"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
}

// statusFor código HTTP que writeError usaría para err.
func statusFor(err error) int {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

// writeError traduce un error de dominio a dto.ErrorResponse. Lo que no es de
// dominio responde 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Code:    m.code,
				Message: err.Error(),
				Details: licenseDetails(err),
			})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func licenseDetails(err error) map[string]any {
	var lerr *domain.LicenseError
	if !errors.As(err, &lerr) {
		return nil
	}
	details := map[string]any{"module": lerr.Module}
	switch {
	case errors.Is(lerr.Kind, domain.ErrModuleNotLicensed):
		details["upgradeUrl"] = UpgradeURL
		details["contactSupport"] = true
	case errors.Is(lerr.Kind, domain.ErrLicenseExpired):
		details["renewUrl"] = RenewURL
		details["contactSupport"] = true
	case errors.Is(lerr.Kind, domain.ErrUserLimitExceeded):
		details["maxUsers"] = lerr.MaxUsers
		details["currentUsers"] = lerr.Current
	case errors.Is(lerr.Kind, domain.ErrDependencyNotMet):
		details["dependency"] = lerr.Dependency
	}
	return details
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func forbiddenOrganization(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin acceso a esta organización"})
}
