package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx runs fn inside a transaction; repositories called with the
	// context passed to fn take part in it
	ExecTx(ctx context.Context, fn TxFn) error
}
