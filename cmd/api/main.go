package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/cmms-api/internal/application/auth"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/application/usecase"
	"github.com/jhoicas/cmms-api/internal/infrastructure/cache"
	"github.com/jhoicas/cmms-api/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/cmms-api/internal/infrastructure/pdf"
	"github.com/jhoicas/cmms-api/internal/infrastructure/postgres"
	"github.com/jhoicas/cmms-api/internal/infrastructure/redislock"
	"github.com/jhoicas/cmms-api/internal/infrastructure/scheduler"
	"github.com/jhoicas/cmms-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/cmms-api/internal/interfaces/http"
	"github.com/jhoicas/cmms-api/pkg/config"
	"github.com/jhoicas/cmms-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	orgRepo := postgres.NewOrganizationRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	licenseRepo := postgres.NewModuleLicenseRepository(pool)
	accessLogRepo := postgres.NewAccessLogRepository(pool)
	archiveRepo := postgres.NewDataArchiveRepository(pool)
	rowStore := postgres.NewRowStore(pool)
	usageRepo := postgres.NewModuleUsageRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	requestRepo := postgres.NewModuleRequestRepository(pool)
	scheduleRepo := postgres.NewPMScheduleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	metrics, err := telemetry.New()
	if err != nil {
		log.Fatal().Err(err).Msg("métricas")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metrics.Shutdown(shutdownCtx)
	}()

	// Caché de licencias solo si LICENSE_CACHE_TTL > 0.
	var licenseCache licensing.LicenseCache
	if cfg.License.CacheTTL > 0 {
		lc, err := cache.NewLicenseCache(10_000, cfg.License.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("caché de licencias")
		}
		defer lc.Close()
		licenseCache = lc
	}

	// Eventos de notificación hacia NATS si NATS_URL está definido.
	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.NATS.URL != "" {
		nc, err := notify.ConnectNATS(cfg.NATS.URL, log.Component("nats"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a NATS")
		}
		defer nc.Close()
		publisher = nc
	}
	notifier := notify.NewDispatcher(notificationRepo, publisher, log.Component("notifications"))

	// Candado de líder: Redis si REDIS_ADDR está definido, si no local.
	var leaderLock licensing.LeaderLock = licensing.LocalLock{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis no responde; los trabajos se omitirán hasta que vuelva")
		}
		leaderLock = redislock.New(rdb, cfg.Scheduler.LockTTL, log.Component("redislock"))
	}

	zl := log.Zerolog()
	licensingSvc := licensing.NewService(orgRepo, licenseRepo, accessLogRepo, licenseCache, zl)
	tracker := licensing.NewConcurrencyTracker(accessLogRepo, cfg.License.ConcurrencyWindow)
	usageRecorder := licensing.NewUsageRecorder(usageRepo)
	evaluator := licensing.NewEvaluator(licenseRepo, accessLogRepo, tracker, licenseCache, metrics, zl).WithUsage(usageRecorder)
	archivalSvc := licensing.NewArchivalService(archiveRepo, rowStore, txRunner, metrics, zl, cfg.License.RetentionDays)
	requestSvc := licensing.NewRequestService(requestRepo, licensingSvc)
	jobs := licensing.NewScheduler(licensingSvc, archivalSvc, userRepo, notifier, leaderLock, metrics, zl, licensing.SchedulerConfig{
		GracePeriod:   cfg.License.GracePeriod,
		RetentionDays: cfg.License.RetentionDays,
	})

	authUC := auth.NewAuthUseCase(userRepo, orgRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	pmScheduleUC := usecase.NewPMScheduleUseCase(scheduleRepo)
	notificationUC := usecase.NewNotificationUseCase(notificationRepo)
	organizationUC := usecase.NewOrganizationUseCase(orgRepo)
	userUC := usecase.NewUserUseCase(userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "CMMS API",
		}))
	}

	deps := httpRouter.RouterDeps{
		AuthUC:         authUC,
		Licensing:      licensingSvc,
		Usage:          usageRecorder,
		Archival:       archivalSvc,
		Requests:       requestSvc,
		Evaluator:      evaluator,
		Jobs:           jobs,
		Statement:      infrapdf.NewStatementGenerator(),
		PMScheduleUC:   pmScheduleUC,
		NotificationUC: notificationUC,
		OrganizationUC: organizationUC,
		UserUC:         userUC,
		GracePeriod:    cfg.License.GracePeriod,
		JWTSecret:      cfg.JWT.Secret,
		AppName:        cfg.App.Name,
		DB:             pool,
		Log:            log.Component("http"),
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.Handler()
	}
	httpRouter.Router(app, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})
	if cfg.Scheduler.Enabled {
		cronRunner, err := scheduler.New(jobs, scheduler.Specs(cfg.Scheduler), log.Component("cron"))
		if err != nil {
			log.Fatal().Err(err).Msg("planificador")
		}
		g.Go(func() error {
			return cronRunner.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}
