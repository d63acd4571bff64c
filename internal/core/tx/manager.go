// Package tx defines the domain contract for transaction management.
// The PostgreSQL implementation lives in infrastructure/storage/postgres.
package tx

import "context"

// Manager runs functions within a database transaction.
// Domain services depend on this interface, never on pgx directly.
type Manager interface {
	// RunInTransaction executes fn within a transaction. If a transaction
	// already exists in ctx it is reused.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
