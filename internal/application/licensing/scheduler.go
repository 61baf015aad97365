package licensing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

// Nombres de los trabajos periódicos (también claves del candado).
const (
	JobExpirationWarnings    = "expiration-warnings"
	JobExpirationEnforcement = "expiration-enforcement"
	JobArchivalSweep         = "archival-sweep"
	JobPurgeSweep            = "purge-sweep"
)

// ExpiringSoonTitle título de la notificación de vencimiento próximo.
const ExpiringSoonTitle = "Module Expiring Soon"

// DefaultWarningThresholds umbrales de aviso en días.
var DefaultWarningThresholds = []int{30, 14, 7}

// SchedulerConfig parámetros de los trabajos de vencimiento.
type SchedulerConfig struct {
	GracePeriod       time.Duration
	RetentionDays     int
	WarningThresholds []int
}

// Scheduler agrupa los cuatro trabajos de ciclo de vida de las licencias.
// Cada trabajo se ejecuta bajo el candado de líder y aísla los fallos por
// unidad (licencia o par organización/módulo).
type Scheduler struct {
	svc      *Service
	archival *ArchivalService
	users    repository.UserRepository
	notifier Notifier
	lock     LeaderLock
	metrics  Metrics
	log      zerolog.Logger
	cfg      SchedulerConfig
}

// NewScheduler construye el planificador. lock nil usa LocalLock.
func NewScheduler(
	svc *Service,
	archival *ArchivalService,
	users repository.UserRepository,
	notifier Notifier,
	lock LeaderLock,
	metrics Metrics,
	log zerolog.Logger,
	cfg SchedulerConfig,
) *Scheduler {
	if lock == nil {
		lock = LocalLock{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = 7 * 24 * time.Hour
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}
	if len(cfg.WarningThresholds) == 0 {
		cfg.WarningThresholds = DefaultWarningThresholds
	}
	thresholds := append([]int(nil), cfg.WarningThresholds...)
	sort.Ints(thresholds)
	cfg.WarningThresholds = thresholds
	return &Scheduler{
		svc:      svc,
		archival: archival,
		users:    users,
		notifier: notifier,
		lock:     lock,
		metrics:  metrics,
		log:      log.With().Str("component", "license_scheduler").Logger(),
		cfg:      cfg,
	}
}

// Run ejecuta un trabajo por nombre.
func (s *Scheduler) Run(ctx context.Context, job string) (*dto.JobReportResponse, error) {
	switch job {
	case JobExpirationWarnings:
		return s.RunExpirationWarnings(ctx)
	case JobExpirationEnforcement:
		return s.RunExpirationEnforcement(ctx)
	case JobArchivalSweep:
		return s.RunArchivalSweep(ctx)
	case JobPurgeSweep:
		return s.RunPurgeSweep(ctx)
	default:
		return nil, fmt.Errorf("trabajo desconocido: %s", job)
	}
}

// RunExpirationWarnings avisa a los administradores de cada organización las
// licencias que vencen dentro de cada umbral. Una licencia dentro de varios
// umbrales recibe un aviso por cada uno; ejecuciones diarias repiten el aviso
// mientras siga dentro de la banda.
func (s *Scheduler) RunExpirationWarnings(ctx context.Context) (*dto.JobReportResponse, error) {
	return s.exclusive(ctx, JobExpirationWarnings, func(ctx context.Context, rep *dto.JobReportResponse) error {
		for _, days := range s.cfg.WarningThresholds {
			list, err := s.svc.ExpiringWithin(ctx, days)
			if err != nil {
				return err
			}
			for _, l := range list {
				if err := s.warnAdmins(ctx, l, days); err != nil {
					rep.Failed++
					s.log.Error().Err(err).
						Str("organization_id", l.OrganizationID).
						Str("module", string(l.ModuleCode)).
						Int("threshold_days", days).
						Msg("aviso de vencimiento falló")
					continue
				}
				rep.Processed++
			}
		}
		return nil
	})
}

func (s *Scheduler) warnAdmins(ctx context.Context, l *entity.ModuleLicense, threshold int) error {
	admins, err := s.users.ListByRole(ctx, l.OrganizationID, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	remaining := threshold
	if l.ExpiresAt != nil {
		remaining = int(math.Ceil(l.ExpiresAt.Sub(s.svc.now()).Hours() / 24))
	}
	msg := fmt.Sprintf("Your %s module license will expire in %d days. Please renew to maintain access.", l.ModuleCode, remaining)
	var firstErr error
	for _, u := range admins {
		n := &entity.Notification{
			ID:      uuid.New().String(),
			UserID:  u.ID,
			Title:   ExpiringSoonTitle,
			Message: msg,
			Type:    entity.NotificationWarning,
			Link:    "/settings/modules",
			Metadata: map[string]any{
				"organization_id": l.OrganizationID,
				"module_code":     string(l.ModuleCode),
				"threshold_days":  threshold,
			},
			CreatedAt: s.svc.now(),
		}
		if err := s.notifier.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RunExpirationEnforcement pasa a expired las licencias active/trial vencidas
// hace más que el periodo de gracia.
func (s *Scheduler) RunExpirationEnforcement(ctx context.Context) (*dto.JobReportResponse, error) {
	return s.exclusive(ctx, JobExpirationEnforcement, func(ctx context.Context, rep *dto.JobReportResponse) error {
		list, err := s.svc.ExpiredPastGrace(ctx, s.cfg.GracePeriod)
		if err != nil {
			return err
		}
		for _, l := range list {
			if err := s.svc.Expire(ctx, l); err != nil {
				rep.Failed++
				s.log.Error().Err(err).
					Str("organization_id", l.OrganizationID).
					Str("module", string(l.ModuleCode)).
					Msg("vencer licencia falló")
				continue
			}
			rep.Processed++
			s.log.Info().
				Str("organization_id", l.OrganizationID).
				Str("module", string(l.ModuleCode)).
				Msg("licencia vencida")
		}
		return nil
	})
}

// RunArchivalSweep archiva los pares expired que aún no tienen copias archived.
// Una segunda ejecución sin cambios no archiva nada.
func (s *Scheduler) RunArchivalSweep(ctx context.Context) (*dto.JobReportResponse, error) {
	return s.exclusive(ctx, JobArchivalSweep, func(ctx context.Context, rep *dto.JobReportResponse) error {
		list, err := s.svc.ExpiredLicenses(ctx)
		if err != nil {
			return err
		}
		for _, l := range list {
			done, err := s.archival.HasArchived(ctx, l.OrganizationID, l.ModuleCode)
			if err == nil && done {
				continue
			}
			if err == nil {
				_, err = s.archival.Archive(ctx, l.OrganizationID, l.ModuleCode, s.cfg.RetentionDays)
			}
			if err != nil {
				rep.Failed++
				s.log.Error().Err(err).
					Str("organization_id", l.OrganizationID).
					Str("module", string(l.ModuleCode)).
					Msg("archivar módulo falló")
				continue
			}
			rep.Processed++
		}
		return nil
	})
}

// RunPurgeSweep marca deleted las copias con retención vencida.
func (s *Scheduler) RunPurgeSweep(ctx context.Context) (*dto.JobReportResponse, error) {
	return s.exclusive(ctx, JobPurgeSweep, func(ctx context.Context, rep *dto.JobReportResponse) error {
		n, err := s.archival.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		rep.Processed = int(n)
		return nil
	})
}

func (s *Scheduler) exclusive(ctx context.Context, job string, fn func(ctx context.Context, rep *dto.JobReportResponse) error) (*dto.JobReportResponse, error) {
	rep := &dto.JobReportResponse{Job: job}
	started := time.Now()
	acquired, err := s.lock.RunExclusive(ctx, job, func(ctx context.Context) error {
		return fn(ctx, rep)
	})
	if !acquired && err == nil {
		rep.Skipped = true
		s.log.Debug().Str("job", job).Msg("candado ocupado, se omite la ejecución")
		return rep, nil
	}
	s.metrics.JobRun(ctx, job, err)
	if err != nil {
		s.log.Error().Err(err).Str("job", job).Msg("trabajo falló")
		return rep, fmt.Errorf("%s: %w", job, err)
	}
	s.log.Info().
		Str("job", job).
		Int("processed", rep.Processed).
		Int("failed", rep.Failed).
		Dur("took", time.Since(started)).
		Msg("trabajo completado")
	return rep, nil
}
