package spanner

import (
	"context"

	"cloud.google.com/go/spanner"
)

// ReadTransaction is the read surface shared by single-use, read-only and
// read-write transactions.
type ReadTransaction interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
	Read(ctx context.Context, table string, keys spanner.KeySet, columns []string) *spanner.RowIterator
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

var (
	_ ReadTransaction = (*spanner.ReadOnlyTransaction)(nil)
	_ ReadTransaction = (*spanner.ReadWriteTransaction)(nil)
)

type readWriteTxKey struct{}

// withReadWriteTx embeds tx in ctx. A context can carry at most one
// read-write transaction.
func withReadWriteTx(ctx context.Context, tx *spanner.ReadWriteTransaction) (context.Context, error) {
	if _, ok := ReadWriteTxFromContext(ctx); ok {
		return nil, ErrNestedTransaction
	}
	return context.WithValue(ctx, readWriteTxKey{}, tx), nil
}

// ReadWriteTxFromContext extracts a Spanner ReadWriteTransaction from context.
func ReadWriteTxFromContext(ctx context.Context) (*spanner.ReadWriteTransaction, bool) {
	tx, ok := ctx.Value(readWriteTxKey{}).(*spanner.ReadWriteTransaction)
	return tx, ok && tx != nil
}

// ReadTransactionFromContext returns the read-write transaction in ctx as a
// reader, so reads inside a scope observe that transaction's snapshot.
func ReadTransactionFromContext(ctx context.Context) (ReadTransaction, bool) {
	tx, ok := ReadWriteTxFromContext(ctx)
	if !ok {
		return nil, false
	}
	return tx, true
}
