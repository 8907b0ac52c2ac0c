package ports

import "context"

// KVStore is the hashing kv handed to LLM functions for response memoization.
// Values are small JSON-compatible records keyed by an args hash.
type KVStore interface {
	GetByID(ctx context.Context, id string) (value map[string]any, ok bool, err error)
	Upsert(ctx context.Context, data map[string]map[string]any) error
	Delete(ctx context.Context, id string) error
	Keys(ctx context.Context) ([]string, error)
}
