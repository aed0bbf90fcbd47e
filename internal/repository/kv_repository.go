package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/prperemyshlev/exam-prep-accounts/pkg/database"
)

// sqliteKeyValueRepository persists slots in the client_storage table
type sqliteKeyValueRepository struct {
	db database.DBTX
}

// NewSQLiteKeyValueRepository creates a durable slot store
func NewSQLiteKeyValueRepository(db database.DBTX) KeyValueRepository {
	return &sqliteKeyValueRepository{db: db}
}

func (r *sqliteKeyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM client_storage WHERE key = ?`

	var value string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get slot %s: %w", key, err)
	}

	return value, true, nil
}

func (r *sqliteKeyValueRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO client_storage (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set slot %s: %w", key, err)
	}

	return nil
}

func (r *sqliteKeyValueRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM client_storage WHERE key = ?`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}

	return nil
}

// MemoryKeyValueRepository is a process-lifetime slot store. Its contents
// are gone when the process exits.
type MemoryKeyValueRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeyValueRepository creates an empty in-memory slot store
func NewMemoryKeyValueRepository() *MemoryKeyValueRepository {
	return &MemoryKeyValueRepository{values: make(map[string]string)}
}

func (r *MemoryKeyValueRepository) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	return value, ok, nil
}

func (r *MemoryKeyValueRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return nil
}

func (r *MemoryKeyValueRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, key)
	return nil
}
