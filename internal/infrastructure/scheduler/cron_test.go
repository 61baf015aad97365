package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/application/dto"
	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/pkg/config"
)

type countingRunner struct {
	mu   sync.Mutex
	runs map[string]int
}

func (r *countingRunner) Run(_ context.Context, job string) (*dto.JobReportResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.runs == nil {
		r.runs = map[string]int{}
	}
	r.runs[job]++
	return &dto.JobReportResponse{Job: job}, nil
}

func (r *countingRunner) count(job string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[job]
}

func TestSpecs_DesdeConfiguracion(t *testing.T) {
	specs := Specs(config.SchedulerConfig{
		WarningsCron: "0 2 * * *", EnforcementCron: "0 3 * * *",
		ArchivalCron: "0 4 * * 0", PurgeCron: "0 5 1 * *",
	})
	assert.Equal(t, "0 2 * * *", specs[applicensing.JobExpirationWarnings])
	assert.Equal(t, "0 5 1 * *", specs[applicensing.JobPurgeSweep])
	assert.Len(t, specs, 4)
}

func TestNew_ExpresionInvalida(t *testing.T) {
	_, err := New(&countingRunner{}, map[string]string{applicensing.JobPurgeSweep: "cada día"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNew_ExpresionVaciaOmiteTrabajo(t *testing.T) {
	c, err := New(&countingRunner{}, map[string]string{
		applicensing.JobPurgeSweep:         "",
		applicensing.JobExpirationWarnings: "0 2 * * *",
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, c.Next(), 1)
}

func TestNext_ExpresionesDiarias(t *testing.T) {
	c, err := New(&countingRunner{}, map[string]string{applicensing.JobExpirationWarnings: "0 2 * * *"}, zerolog.Nop())
	require.NoError(t, err)
	next := c.Next()
	require.Len(t, next, 1)
	assert.Equal(t, 2, next[0].Hour())
	assert.Equal(t, 0, next[0].Minute())
}

func TestRun_DisparaHastaCancelar(t *testing.T) {
	runner := &countingRunner{}
	c, err := New(runner, map[string]string{applicensing.JobExpirationEnforcement: "@every 1s"}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return runner.count(applicensing.JobExpirationEnforcement) > 0
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó tras cancelar")
	}
}
