// Package scheduler dispara los trabajos de ciclo de vida de licencias con
// expresiones cron de cinco campos evaluadas en UTC.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/pkg/config"
)

// JobRunner ejecuta un trabajo por nombre (licensing.Scheduler).
type JobRunner interface {
	Run(ctx context.Context, job string) (*dto.JobReportResponse, error)
}

// Cron agenda los trabajos registrados.
type Cron struct {
	c      *cron.Cron
	runner JobRunner
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// Specs expresión cron por trabajo a partir de la configuración.
func Specs(cfg config.SchedulerConfig) map[string]string {
	return map[string]string{
		applicensing.JobExpirationWarnings:    cfg.WarningsCron,
		applicensing.JobExpirationEnforcement: cfg.EnforcementCron,
		applicensing.JobArchivalSweep:         cfg.ArchivalCron,
		applicensing.JobPurgeSweep:            cfg.PurgeCron,
	}
}

// New registra un trabajo por entrada de specs; una expresión vacía omite el
// trabajo y una inválida devuelve error.
func New(runner JobRunner, specs map[string]string, log zerolog.Logger) (*Cron, error) {
	log = log.With().Str("component", "cron").Logger()
	adapter := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Cron{c: c, runner: runner, log: log, ctx: ctx, cancel: cancel}
	for job, spec := range specs {
		if spec == "" {
			log.Info().Str("job", job).Msg("trabajo desactivado")
			continue
		}
		if _, err := c.AddFunc(spec, func() { s.fire(job) }); err != nil {
			cancel()
			return nil, fmt.Errorf("cron %s %q: %w", job, spec, err)
		}
	}
	return s, nil
}

func (s *Cron) fire(job string) {
	rep, err := s.runner.Run(s.ctx, job)
	if err != nil {
		s.log.Error().Err(err).Str("job", job).Msg("ejecución programada falló")
		return
	}
	if rep != nil && rep.Skipped {
		s.log.Debug().Str("job", job).Msg("ejecución omitida")
	}
}

// Run arranca el cron y bloquea hasta que ctx termina; espera a que
// terminen los trabajos en curso.
func (s *Cron) Run(ctx context.Context) error {
	s.c.Start()
	s.log.Info().Int("jobs", len(s.c.Entries())).Msg("planificador iniciado")
	<-ctx.Done()
	s.cancel()
	<-s.c.Stop().Done()
	s.log.Info().Msg("planificador detenido")
	return nil
}

// Next próxima ejecución por trabajo registrado.
func (s *Cron) Next() []time.Time {
	entries := s.c.Entries()
	out := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Schedule.Next(time.Now().UTC()))
	}
	return out
}

type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
