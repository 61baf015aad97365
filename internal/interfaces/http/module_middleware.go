package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain"
	catalog "github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// LocalRequiredModule módulo declarado para la ruta.
const LocalRequiredModule = "required_module"

// moduleEvaluator contrato mínimo del guard. Lo implementa *licensing.Evaluator.
type moduleEvaluator interface {
	Evaluate(ctx context.Context, required catalog.ModuleCode, p *licensing.Principal) error
}

// RequireModule declara el módulo que exige la ruta. Se puede usar en el grupo
// y en la ruta; la última declaración en ejecutarse (la de la ruta) prevalece.
func RequireModule(code catalog.ModuleCode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(LocalRequiredModule, code)
		return c.Next()
	}
}

// GetRequiredModule módulo declarado para la petición; "" si ninguno.
func GetRequiredModule(c *fiber.Ctx) catalog.ModuleCode {
	code, _ := c.Locals(LocalRequiredModule).(catalog.ModuleCode)
	return code
}

// ModuleGuard evalúa el módulo declarado con RequireModule. Debe ir después de
// AuthMiddleware y de todas las declaraciones.
//
//   - 401 sin usuario autenticado.
//   - 403 módulo no licenciado, vencido o límite de usuarios alcanzado.
//   - 503 fallo de infraestructura al consultar la licencia.
func ModuleGuard(ev moduleEvaluator, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := GetRequiredModule(c)
		if code == "" {
			return c.Next()
		}
		err := ev.Evaluate(c.UserContext(), code, principalFrom(c))
		if err == nil {
			return c.Next()
		}
		var lerr *domain.LicenseError
		if errors.Is(err, domain.ErrNotAuthenticated) || errors.As(err, &lerr) {
			return writeError(c, err)
		}
		log.Error().Err(err).Str("module", string(code)).Msg("verificación de módulo falló")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code:    "MODULE_CHECK_FAILED",
			Message: "no se pudo verificar el módulo, intente más tarde",
		})
	}
}
