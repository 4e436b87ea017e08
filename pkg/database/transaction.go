package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

type TxContextKey string

const txKey = TxContextKey("tx-context-key")

// Tx is a transaction handle. Every caller in a request uses the same idiom:
//
//	ctx, tx, err := db.GetTx(ctx, nil)
//	defer tx.Rollback(ctx)
//	...
//	return tx.Commit(ctx)
//
// Only the handle that opened the transaction actually commits or rolls back;
// handles returned to nested callers treat both as no-ops. A cascade that
// writes three tables through nested repository calls therefore lands as one
// atomic transaction closed by the outermost caller.
type Tx interface {
	IsOpen() bool
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Transaction is the owning handle around sqlx.Tx.
type Transaction struct {
	*sqlx.Tx
	logger   ectologger.Logger
	isClosed bool
}

func NewTx(tx *sqlx.Tx, logger ectologger.Logger) Tx {
	return &Transaction{
		Tx:       tx,
		logger:   logger,
		isClosed: false,
	}
}

// innerTx is the non-owning view handed to nested callers. Queries delegate
// to the open transaction; closing it is the owner's job.
type innerTx struct {
	Tx
}

func (t innerTx) Commit(ctx context.Context) error {
	return nil
}

func (t innerTx) Rollback(ctx context.Context) error {
	return nil
}

// GetTx joins the transaction already open on ctx or begins a new one. The
// new transaction is stored on the returned context so nested calls join it.
func GetTx(ctx context.Context, logger ectologger.Logger, db DB, opts *sql.TxOptions) (context.Context, Tx, error) {
	if existing, ok := ctx.Value(txKey).(Tx); ok && existing != nil && existing.IsOpen() {
		return ctx, innerTx{existing}, nil
	}

	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		logger.WithContext(ctx).WithError(err).Errorf("error while beginning transaction")
		return ctx, nil, fmt.Errorf("error while beginning transaction")
	}

	owner := NewTx(tx, logger)
	ctx = context.WithValue(ctx, txKey, owner)
	return ctx, owner, nil
}

func (t *Transaction) IsOpen() bool {
	return !t.isClosed
}

func (t *Transaction) Rollback(ctx context.Context) error {
	if t.isClosed {
		return nil
	}

	err := t.Tx.Rollback()
	if err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while rolling back transaction")
		return fmt.Errorf("error while rolling back transaction")
	}

	t.isClosed = true
	return nil
}

func (t *Transaction) Commit(ctx context.Context) error {
	if t.isClosed {
		return nil
	}

	err := t.Tx.Commit()
	if err != nil {
		t.logger.WithContext(ctx).WithError(err).Errorf("error while committing transaction")
		return fmt.Errorf("error while committing transaction")
	}

	t.isClosed = true
	return nil
}
