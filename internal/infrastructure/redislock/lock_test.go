package redislock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLock_EjecutaYLibera(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := New(client, time.Minute, zerolog.Nop())

	ran := false
	ok, err := lock.RunExclusive(context.Background(), "purge-sweep", func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists(keyPrefix+"purge-sweep"))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, ran)
	assert.False(t, mr.Exists(keyPrefix+"purge-sweep"), "el candado se libera al terminar")
}

func TestLock_OcupadoNoEjecuta(t *testing.T) {
	_, client := setupTestRedis(t)
	a := New(client, time.Minute, zerolog.Nop())
	b := New(client, time.Minute, zerolog.Nop())

	var innerOK bool
	var innerErr error
	ok, err := a.RunExclusive(context.Background(), "archival-sweep", func(ctx context.Context) error {
		innerOK, innerErr = b.RunExclusive(ctx, "archival-sweep", func(context.Context) error {
			t.Fatal("no debe ejecutarse con el candado tomado")
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, innerErr)
	assert.False(t, innerOK)
}

func TestLock_ClavesIndependientes(t *testing.T) {
	_, client := setupTestRedis(t)
	lock := New(client, time.Minute, zerolog.Nop())

	ok, err := lock.RunExclusive(context.Background(), "expiration-warnings", func(ctx context.Context) error {
		inner, err := lock.RunExclusive(ctx, "expiration-enforcement", func(context.Context) error { return nil })
		assert.True(t, inner)
		return err
	})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_PropagaErrorDelTrabajo(t *testing.T) {
	_, client := setupTestRedis(t)
	lock := New(client, time.Minute, zerolog.Nop())
	boom := errors.New("boom")

	ok, err := lock.RunExclusive(context.Background(), "purge-sweep", func(context.Context) error { return boom })
	assert.True(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestLock_RedisCaidoOmite(t *testing.T) {
	mr, client := setupTestRedis(t)
	lock := New(client, time.Minute, zerolog.Nop())
	mr.Close()

	ok, err := lock.RunExclusive(context.Background(), "purge-sweep", func(context.Context) error {
		t.Fatal("no debe ejecutarse sin candado")
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestLock_ClaveVacia(t *testing.T) {
	_, client := setupTestRedis(t)
	_, err := New(client, time.Minute, zerolog.Nop()).RunExclusive(context.Background(), " ", func(context.Context) error { return nil })
	assert.Error(t, err)
}
