// Package kv defines the persistence boundary of the ledger: a flat
// get/set-by-key store of JSON blobs. The ledger only ever touches a
// handful of well-known keys, so backends stay trivial.
package kv

import "context"

// Well-known keys used by the ledger store.
const (
	KeyTransactions = "transactions"
	KeyBudgets      = "budgets"
	KeyTheme        = "theme"
)

// Store is the pluggable backend contract. Load returns (nil, nil) when
// the key has never been written; callers fall back to their defaults.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}
