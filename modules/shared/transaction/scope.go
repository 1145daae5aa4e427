// Package transaction defines the transaction boundary used by repositories.
package transaction

import "context"

// Scope runs a function inside one transaction of a concrete store.
// Implementations live next to their drivers (Spanner read-write, database/sql)
// and put the live transaction into the ctx handed to fn.
type Scope interface {
	// Execute commits if fn returns nil and rolls back otherwise.
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// ExecuteWithResult runs fn within scope and returns what fn produced.
// The result is only meaningful when the returned error is nil.
func ExecuteWithResult[T any](ctx context.Context, scope Scope, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := scope.Execute(ctx, func(ctx context.Context) error {
		var fnErr error
		result, fnErr = fn(ctx)
		return fnErr
	})
	return result, err
}
