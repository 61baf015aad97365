package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/cmms-api/internal/application/licensing"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
)

var _ licensing.ArchiveTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunArchive ejecuta fn con el repositorio de copias atado a una transacción.
// Commit si fn devuelve nil; Rollback en cualquier otro caso.
func (r *TxRunner) RunArchive(ctx context.Context, fn func(archives repository.DataArchiveRepository) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewDataArchiveRepository(tx))
	})
}
