package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// kvRepository implements a string-keyed key-value store on top of MySQL
type kvRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new key-value repository
func NewKVRepository(db *sql.DB) *kvRepository {
	return &kvRepository{
		db: db,
	}
}

// Get retrieves the value stored under key. The second return value reports
// whether the key exists; a missing key is not an error.
func (r *kvRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT v FROM kv_store WHERE k = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (r *kvRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO kv_store (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}

	return nil
}

// Delete removes key from the store. Deleting a missing key is a no-op.
func (r *kvRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM kv_store WHERE k = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}

	return nil
}
