// Package storage persists the ledger as one JSON document under a fixed
// key in a pluggable key-value backend.
package storage

import (
	"context"
	"errors"
)

// DefaultKey is the namespace the ledger document lives under.
const DefaultKey = "finance_ledger"

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// KV is the minimal backend contract. Set overwrites the whole value.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
