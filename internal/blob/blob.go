// Package blob abstracts the key-value document store the repository
// persists whole collections into. Each collection is one self-describing
// JSON document under a well-known key.
package blob

import (
	"context"
	"errors"
)

// ErrNoDocument signals that a key has never been written. Absence on
// first load is not an error condition for callers; it triggers default
// initialization instead.
var ErrNoDocument = errors.New("blob: document not found")

// Store reads and writes whole-collection documents.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, doc []byte) error
}
