// Package redislock implementa el candado de líder de los trabajos
// programados sobre Redis (RedLock vía redsync).
package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	applicensing "github.com/jhoicas/cmms-api/internal/application/licensing"
)

var _ applicensing.LeaderLock = (*Lock)(nil)

const keyPrefix = "cmms:scheduler:"

// Lock garantiza que un trabajo corre en una sola instancia a la vez.
type Lock struct {
	rs  *redsync.Redsync
	ttl time.Duration
	log zerolog.Logger
}

// New construye el candado sobre un cliente go-redis. ttl debe cubrir la
// duración esperada del trabajo más largo.
func New(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Lock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Lock{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
		log: log.With().Str("component", "leader_lock").Logger(),
	}
}

// RunExclusive intenta el candado una sola vez; si otra instancia lo tiene
// devuelve false, nil sin ejecutar fn.
func (l *Lock) RunExclusive(ctx context.Context, key string, fn func(ctx context.Context) error) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, errors.New("redislock: clave vacía")
	}
	mutex := l.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken") {
			l.log.Debug().Str("key", key).Msg("candado tomado por otra instancia")
			return false, nil
		}
		// Redis caído: no se ejecuta para no correr el trabajo en paralelo.
		l.log.Warn().Err(err).Str("key", key).Msg("no se pudo obtener el candado")
		return false, nil
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil || !ok {
			l.log.Warn().Err(err).Str("key", key).Msg("liberar candado falló")
		}
	}()
	if err := fn(ctx); err != nil {
		return true, fmt.Errorf("%s: %w", key, err)
	}
	return true, nil
}
