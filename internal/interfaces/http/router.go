package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/auth"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/application/usecase"
	catalog "github.com/jhoicas/cmms-api/internal/domain/licensing"
)

// pinger lo cumple *pgxpool.Pool.
type pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	Licensing      *licensing.Service
	Usage          *licensing.UsageRecorder
	Archival       *licensing.ArchivalService
	Requests       *licensing.RequestService
	Evaluator      *licensing.Evaluator
	Jobs           jobRunner
	Statement      statementRenderer
	PMScheduleUC   *usecase.PMScheduleUseCase
	NotificationUC *usecase.NotificationUseCase
	OrganizationUC *usecase.OrganizationUseCase
	UserUC         *usecase.UserUseCase
	GracePeriod    time.Duration
	JWTSecret      string
	AppName        string
	Metrics        nethttp.Handler // nil = sin /metrics
	DB             pinger          // nil = /health no consulta la base
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.DB.Ping(ctx); err != nil {
				deps.Log.Warn().Err(err).Msg("health: base de datos no responde")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.AppName})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	authMW := AuthMiddleware(deps.JWTSecret)
	superadmin := RequireSuperAdmin()
	guard := ModuleGuard(deps.Evaluator, deps.Log)

	// Auth (público)
	api := app.Group("/api")
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Organizaciones
	orgs := api.Group("/organizations", authMW)
	orgHandler := NewOrganizationHandler(deps.OrganizationUC, deps.Log)
	orgs.Post("/", superadmin, orgHandler.Create)
	orgs.Get("/", superadmin, orgHandler.List)
	orgs.Get("/:id", orgHandler.GetByID)

	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC, deps.Log)
	orgs.Get("/:id/admins", userHandler.Admins)
	orgs.Post("/:id/users", userHandler.Create)
	api.Get("/users/me", authMW, userHandler.Me)

	// Licenciamiento de módulos
	ml := app.Group("/module-licensing", authMW)
	lic := NewLicensingHandler(deps.Licensing, deps.Usage, deps.Statement, deps.GracePeriod, deps.Log)
	arc := NewArchiveHandler(deps.Archival, deps.Log)
	trg := NewTriggerHandler(deps.Jobs, deps.Log)

	ml.Get("/organization/:orgId/modules", lic.OrganizationModules)
	ml.Get("/organization/:orgId/module/:code/access", lic.CheckAccess)
	ml.Get("/organization/:orgId/usage", lic.Usage)
	ml.Get("/organization/:orgId/statement.pdf", lic.Statement)
	ml.Get("/organization/:orgId/archives", arc.List)
	ml.Get("/organization/:orgId/module/:code/export", arc.Export)
	ml.Get("/organization/:orgId/archive-size", arc.Size)
	ml.Post("/start-trial", lic.StartTrial)
	ml.Post("/track-usage", lic.TrackUsage)

	ml.Post("/activate", superadmin, lic.Activate)
	ml.Delete("/deactivate", superadmin, lic.Deactivate)
	ml.Post("/activate-tier", superadmin, lic.ActivateTier)
	ml.Get("/expiring", superadmin, lic.Expiring)
	ml.Get("/grace-period", superadmin, lic.GracePeriod)
	ml.Post("/archive", superadmin, arc.Archive)
	ml.Post("/restore", superadmin, arc.Restore)
	ml.Post("/trigger/:job", superadmin, trg.Trigger)

	// Solicitudes de módulos
	reqs := app.Group("/module-requests", authMW)
	reqHandler := NewModuleRequestHandler(deps.Requests, deps.Log)
	reqs.Post("/", reqHandler.Create)
	reqs.Get("/", reqHandler.List)
	reqs.Get("/pending", superadmin, reqHandler.Pending)
	reqs.Patch("/:id/review", superadmin, reqHandler.Review)

	// Notificaciones del usuario
	notes := app.Group("/notifications", authMW)
	noteHandler := NewNotificationHandler(deps.NotificationUC, deps.Log)
	notes.Get("/", noteHandler.List)
	notes.Patch("/:id/read", noteHandler.MarkRead)

	// Programas preventivos: el grupo exige preventive_maintenance y el
	// pronóstico lo reemplaza por predictive_maintenance.
	pm := api.Group("/pm-schedules", authMW, RequireModule(catalog.PreventiveMaintenance))
	pmHandler := NewPMScheduleHandler(deps.PMScheduleUC, deps.Log)
	pm.Get("/forecast", RequireModule(catalog.PredictiveMaintenance), guard, pmHandler.Forecast)
	pm.Post("/", guard, pmHandler.Create)
	pm.Get("/", guard, pmHandler.List)
	pm.Get("/:id", guard, pmHandler.GetByID)
	pm.Put("/:id", guard, pmHandler.Update)
	pm.Post("/:id/complete", guard, pmHandler.Complete)
}
