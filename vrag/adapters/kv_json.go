package adapters

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ZanzyTHEbar/vragkit/vrag/jsonutil"
	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// JSONFileStore keeps the whole namespace in memory and persists it to
// <workingDir>/kv_store_<namespace>.json on every write.
type JSONFileStore struct {
	mu     sync.RWMutex
	path   string
	data   map[string]map[string]any
	logger zerolog.Logger
}

// NewJSONFileStore loads an existing namespace file or starts empty.
func NewJSONFileStore(workingDir, namespace string, logger zerolog.Logger) (*JSONFileStore, error) {
	path := filepath.Join(workingDir, fmt.Sprintf("kv_store_%s.json", namespace))

	data := make(map[string]map[string]any)
	found, err := jsonutil.LoadJSON(path, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to load kv store %s: %w", path, err)
	}
	if data == nil {
		data = make(map[string]map[string]any)
	}

	logger.Info().Str("path", path).Bool("existing", found).Int("entries", len(data)).Msg("Loaded json kv store")

	return &JSONFileStore{path: path, data: data, logger: logger}, nil
}

// Path returns the backing file.
func (s *JSONFileStore) Path() string { return s.path }

// GetByID returns the in-memory value for id.
func (s *JSONFileStore) GetByID(ctx context.Context, id string) (map[string]any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[id]
	return v, ok, nil
}

// Upsert merges data into the store and rewrites the file.
func (s *JSONFileStore) Upsert(ctx context.Context, data map[string]map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range data {
		s.data[k] = v
	}
	return s.flush()
}

// Delete removes id and rewrites the file; a missing id is a no-op.
func (s *JSONFileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return nil
	}
	delete(s.data, id)
	return s.flush()
}

// Keys lists stored ids in sorted order.
func (s *JSONFileStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// flush must be called with mu held.
func (s *JSONFileStore) flush() error {
	if err := jsonutil.WriteJSON(s.data, s.path); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("Failed to persist json kv store")
		return err
	}
	return nil
}

// Ensure JSONFileStore implements the KVStore interface.
var _ ports.KVStore = (*JSONFileStore)(nil)
