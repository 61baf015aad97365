package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	"github.com/jhoicas/cmms-api/internal/application/licensing"
)

type jobRunner interface {
	Run(ctx context.Context, job string) (*dto.JobReportResponse, error)
}

// Nombre de ruta → trabajo del planificador.
var triggerJobs = map[string]string{
	"expiration-check": licensing.JobExpirationWarnings,
	"expire-modules":   licensing.JobExpirationEnforcement,
	"archive-data":     licensing.JobArchivalSweep,
	"purge-archives":   licensing.JobPurgeSweep,
}

// TriggerHandler ejecución manual de los trabajos periódicos (superadmin).
type TriggerHandler struct {
	jobs jobRunner
	log  zerolog.Logger
}

// NewTriggerHandler construye el handler.
func NewTriggerHandler(jobs jobRunner, log zerolog.Logger) *TriggerHandler {
	return &TriggerHandler{jobs: jobs, log: log}
}

// Trigger godoc
// @Summary      Ejecutar un trabajo del planificador
// @Tags         module-licensing
// @Security     Bearer
// @Produce      json
// @Param        job  path  string  true  "expiration-check | expire-modules | archive-data | purge-archives"
// @Success      200  {object}  dto.JobReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /module-licensing/trigger/{job} [post]
func (h *TriggerHandler) Trigger(c *fiber.Ctx) error {
	job, ok := triggerJobs[c.Params("job")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_JOB", Message: "trabajo desconocido"})
	}
	rep, err := h.jobs.Run(c.UserContext(), job)
	if err != nil {
		h.log.Error().Err(err).Str("job", job).Msg("ejecución manual falló")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "JOB_FAILED", Message: err.Error()})
	}
	return c.JSON(rep)
}
