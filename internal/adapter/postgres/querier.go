package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the common interface implemented by *pgxpool.Pool, pgx.Tx and
// pgxmock pools. Repositories depend on it rather than on the pool type.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner starts transactions.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// unexported context key type for storing tx
type txCtxKey struct{}

// withTx puts a transaction into the context.
func withTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txCtxKey{}, tx)
}

// QuerierFromCtx returns the transaction from context if present,
// otherwise db.
func QuerierFromCtx(ctx context.Context, db Querier) Querier {
	if tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

// InTx reports whether ctx carries a transaction started by TxManager.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txCtxKey{}).(pgx.Tx)
	return ok
}
