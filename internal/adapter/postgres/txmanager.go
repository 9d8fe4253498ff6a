package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// TxManager runs callbacks inside a transaction carried by the context.
// Repositories pick it up through QuerierFromCtx, and a nested RunInTx
// joins the outer transaction.
type TxManager struct {
	db Beginner
}

// NewTxManager creates a TxManager over db.
func NewTxManager(db Beginner) *TxManager {
	return &TxManager{db: db}
}

// RunInTx commits when fn returns nil and rolls back otherwise. A panic in
// fn rolls back and re-panics. Rollback ignores cancellation of ctx so a
// request that times out mid-write does not leave the connection in a
// failed transaction.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return MapError(err, "transaction", "begin")
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			_ = rollback(ctx, tx)
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := rollback(ctx, tx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}

	committed = true
	if err := tx.Commit(ctx); err != nil {
		return MapError(err, "transaction", "commit")
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
