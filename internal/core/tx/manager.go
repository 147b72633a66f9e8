// Package tx provides the scoped atomic-unit abstraction used by the ledger.
// Domain services depend on these interfaces, never on a concrete database
// implementation; the pgx-backed implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT and ROLLBACK.
//
// Every ledger operation runs inside exactly one atomic unit: all reads and
// writes made by fn commit together or not at all. If fn returns an error,
// the transaction is rolled back and no intermediate write survives.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
// Use for multi-statement reads that need a consistent snapshot.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	// Attempts to modify data will fail.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
