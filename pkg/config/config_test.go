package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.License.GracePeriod)
	assert.Equal(t, 5*time.Minute, cfg.License.ConcurrencyWindow)
	assert.Zero(t, cfg.License.CacheTTL)
	assert.Equal(t, 90, cfg.License.RetentionDays)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.WarningsCron)
	assert.Equal(t, "0 5 1 * *", cfg.Scheduler.PurgeCron)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("LICENSE_GRACE_DAYS", "3")
	t.Setenv("LICENSE_CONCURRENCY_WINDOW", "10m")
	t.Setenv("LICENSE_CACHE_TTL", "30")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("DB_MAX_CONNS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*24*time.Hour, cfg.License.GracePeriod)
	assert.Equal(t, 10*time.Minute, cfg.License.ConcurrencyWindow)
	assert.Equal(t, 30*time.Second, cfg.License.CacheTTL)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int32(8), cfg.DB.MaxConns)
}

func TestLoad_RetencionInvalida(t *testing.T) {
	t.Setenv("ARCHIVE_RETENTION_DAYS", "0")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapaContrasena(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss/word", DBName: "cmms", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss%2Fword@db:5432/cmms?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
