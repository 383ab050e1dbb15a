// Package metadata is the client-side key/value repository backed by the
// local SQLite database. It stores small opaque values such as the session
// token.
package metadata

import (
	"context"
)

// Repository is a durable string-keyed value store.
//
// Get reports a missing key with found == false and a nil error; errors are
// reserved for failures of the underlying database.
type Repository interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
