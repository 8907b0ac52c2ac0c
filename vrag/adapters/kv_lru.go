package adapters

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// LRUStore is an in-memory KVStore with LRU eviction and per-entry TTL.
// A zero TTL keeps entries until evicted.
type LRUStore struct {
	lru *expirable.LRU[string, map[string]any]
}

// NewLRUStore creates an LRU store holding at most capacity entries.
func NewLRUStore(capacity int, ttl time.Duration) *LRUStore {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUStore{lru: expirable.NewLRU[string, map[string]any](capacity, nil, ttl)}
}

// GetByID returns the value for id and marks it most recently used.
func (s *LRUStore) GetByID(ctx context.Context, id string) (map[string]any, bool, error) {
	value, ok := s.lru.Get(id)
	return value, ok, nil
}

// Upsert inserts or replaces every entry in data, resetting their TTL.
func (s *LRUStore) Upsert(ctx context.Context, data map[string]map[string]any) error {
	for key, value := range data {
		s.lru.Add(key, value)
	}
	return nil
}

// Delete removes id if present.
func (s *LRUStore) Delete(ctx context.Context, id string) error {
	s.lru.Remove(id)
	return nil
}

// Keys lists live keys in sorted order.
func (s *LRUStore) Keys(ctx context.Context) ([]string, error) {
	keys := s.lru.Keys()
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of live entries.
func (s *LRUStore) Len() int {
	return len(s.lru.Keys())
}

// Ensure LRUStore implements the KVStore interface.
var _ ports.KVStore = (*LRUStore)(nil)
