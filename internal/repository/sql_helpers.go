package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	assistant_errors "assistant-chat/pkg/errors"
)

// DBTX abstracts *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// storageErr classifies an unexpected database error as a storage failure so
// callers can match it with errors.Is without losing the driver detail.
func storageErr(err error) error {
	return errors.Join(assistant_errors.ErrStorageUnavailable, err)
}

// WithTx executes fn inside a transaction. If db is already a pgx.Tx the
// nested Begin gives savepoint semantics, so fn composes either way.
func WithTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return storageErr(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}
