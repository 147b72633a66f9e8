package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// BatchInserter performs bulk inserts through the COPY protocol,
// joining the active transaction when one is in the context.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// InsertRows copies rows into table. Each row must match columns in
// order and arity.
func (b *BatchInserter) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	source := pgx.CopyFromRows(rows)
	ident := pgx.Identifier{table}

	if t := b.txManager.GetTx(ctx); t != nil {
		n, err := t.CopyFrom(ctx, ident, columns, source)
		if err != nil {
			return 0, fmt.Errorf("copy into %s: %w", table, err)
		}
		return n, nil
	}

	n, err := b.txManager.pool.CopyFrom(ctx, ident, columns, source)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}
