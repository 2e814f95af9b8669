// Package storage defines the key-value persistence port used by the ledger
// and the budget book. Adapters live in the subpackages.
package storage

import (
	"context"
	"errors"
)

// Fixed keys under which the serialized collections are stored.
const (
	TransactionsKey = "financial-tracker-transactions"
	BudgetsKey      = "financial-tracker-budgets"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// KV stores one opaque blob per key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
}

// Closer is implemented by adapters that hold connections or files.
type Closer interface {
	Close() error
}
