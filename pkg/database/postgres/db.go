package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
)

type txStructContextKey struct{}
type txIsolationContextKey struct{}

var (
	ErrAlreadyInTx = errors.New("already executing in existing db tx")
	ErrNotInTx     = errors.New("not executing in existing db tx")
)

const maxSerializationRetries = 5

// IsSerializationFailure reports whether the error is a postgres
// serialization failure, which is safe to retry.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure
}

// ExecuteRetryable runs a non-transactional database operation, retrying it
// when postgres reports a serialization failure.
func ExecuteRetryable(fn func() error) error {
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxSerializationRetries)
	return backoff.Retry(func() error {
		err := fn()
		if err != nil && !IsSerializationFailure(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// ExecuteTxWithinCtx executes fn within a new transaction that is carried on
// the context, so stores called by fn join it. The transaction is committed
// when fn succeeds and rolled back otherwise.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	isolation = defaultIsolation(isolation)

	if ctx.Value(txStructContextKey{}) != nil {
		return ErrAlreadyInTx
	}

	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, txStructContextKey{}, tx)
	ctx = context.WithValue(ctx, txIsolationContextKey{}, isolation)

	if err := fn(ctx); err != nil {
		return rollback(tx, err)
	}
	return tx.Commit()
}

// ExecuteInTx runs fn within the transaction carried on the context, or a new
// one when there is none. Commit and rollback are left to whoever started the
// transaction.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = defaultIsolation(isolation)

	tx, err := getTxFromCtx(ctx, isolation)
	if err != nil && err != ErrNotInTx {
		return err
	}

	owned := err == ErrNotInTx
	if owned {
		tx, err = db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
		if err != nil {
			return err
		}
	}

	if err := fn(tx); err != nil {
		if owned {
			return rollback(tx, err)
		}
		return err
	}

	if owned {
		return tx.Commit()
	}
	return nil
}

func defaultIsolation(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted // Postgres default
	}
	return isolation
}

// rollback always runs so sql.DB releases the connection.
func rollback(tx *sqlx.Tx, cause error) error {
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return cause
}

func getTxFromCtx(ctx context.Context, desiredIsolation sql.IsolationLevel) (*sqlx.Tx, error) {
	txFromCtx := ctx.Value(txStructContextKey{})
	if txFromCtx == nil {
		return nil, ErrNotInTx
	}

	tx, ok := txFromCtx.(*sqlx.Tx)
	if !ok {
		return nil, errors.New("invalid type for tx")
	}

	currentIsolation, ok := ctx.Value(txIsolationContextKey{}).(sql.IsolationLevel)
	if !ok {
		return nil, errors.New("unexpectedly don't have isolation level set")
	}

	if currentIsolation < desiredIsolation {
		return nil, errors.New("current tx doesn't meet isolation level requirements")
	}

	return tx, nil
}
