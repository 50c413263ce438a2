package database

import (
	"context"
	"errors"

	"github.com/BradenHooton/frontdesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MapPostgresError folds driver errors into the model sentinels the handlers
// know how to render. Anything unrecognised is returned unchanged.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505": // unique_violation, e.g. a second active booking for one slot
		return models.ErrConflict
	case "23502", "23514": // not null, check (status values)
		return models.ErrBadRequest
	case "22007", "22008", "22P02": // bad date/time or text representation
		return models.ErrBadRequest
	}
	return err
}

// SnapshotRead is the option set for multi-statement reports: every query
// inside sees the same committed state.
var SnapshotRead = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

// WithTx runs fn inside a transaction on pool, committing when fn returns nil
// and rolling back on error or panic.
func WithTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(pgx.Tx) error) (err error) {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return MapPostgresError(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}
