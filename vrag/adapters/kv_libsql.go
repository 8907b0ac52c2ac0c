package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/vragkit/vrag/ports"
)

// LibSQLStore implements KVStore on the llm_response_cache table created by
// the db package migrations. Rows are partitioned by namespace.
type LibSQLStore struct {
	db        *sql.DB
	namespace string
}

// NewLibSQLStore creates a store for namespace on an already migrated db.
func NewLibSQLStore(db *sql.DB, namespace string) *LibSQLStore {
	return &LibSQLStore{db: db, namespace: namespace}
}

// GetByID loads and decodes one cached value.
func (s *LibSQLStore) GetByID(ctx context.Context, id string) (map[string]any, bool, error) {
	query := `
		SELECT value FROM llm_response_cache
		WHERE namespace = ? AND id = ?
	`

	var raw string
	err := s.db.QueryRowContext(ctx, query, s.namespace, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache entry: %w", err)
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache entry %s: %w", id, err)
	}
	return value, true, nil
}

// Upsert writes all entries in a single transaction.
func (s *LibSQLStore) Upsert(ctx context.Context, data map[string]map[string]any) error {
	if len(data) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO llm_response_cache (namespace, id, value, updated_at)
		VALUES (?, ?, ?, ?)
	`

	now := time.Now().Unix()
	for id, value := range data {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, query, s.namespace, id, string(raw), now); err != nil {
			return fmt.Errorf("failed to save cache entry %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache entries: %w", err)
	}
	return nil
}

// Delete removes one entry.
func (s *LibSQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM llm_response_cache WHERE namespace = ? AND id = ?`, s.namespace, id)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Keys lists ids in the namespace.
func (s *LibSQLStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM llm_response_cache WHERE namespace = ? ORDER BY id`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache keys: %w", err)
	}
	return keys, nil
}

// Ensure LibSQLStore implements the KVStore interface.
var _ ports.KVStore = (*LibSQLStore)(nil)
