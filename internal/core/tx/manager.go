// Package tx provides transaction management abstractions.
// Ledgers depend on Manager, not on a concrete store, so the same service code
// runs against Postgres and against the in-memory store.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, every write made through ctx is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
