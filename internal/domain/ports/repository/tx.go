package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// Repositories MUST gracefully accept a nil handle (non-transactional path);
// the concrete type is infra-defined (pgx.Tx for Postgres).
type Tx interface{}

// NoTX is passed where no transaction is wanted.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via `tx`. Keeps use-case interfaces clean of
// storage types while still letting repositories join one transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
