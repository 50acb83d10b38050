package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// MySQLStore implements Store using MySQL. Used when several instances
// share one snapshot database instead of a per-instance SQLite file.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore creates a new MySQL snapshot store on an existing connection.
func NewMySQLStore(db *sql.DB) (*MySQLStore, error) {
	if err := createMySQLTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLStore] Initialized")
	return &MySQLStore{db: db}, nil
}

func createMySQLTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		snapshot_key VARCHAR(191) PRIMARY KEY,
		value MEDIUMBLOB NOT NULL,
		updated_at DATETIME NOT NULL
	)`
	_, err := db.Exec(query)
	return err
}

// Read retrieves a value by key.
func (s *MySQLStore) Read(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshots WHERE snapshot_key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot %q: %w", key, err)
	}
	return value, nil
}

// Write stores a value under key, replacing any previous value.
func (s *MySQLStore) Write(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO snapshots (snapshot_key, value, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write snapshot %q: %w", key, err)
	}
	return nil
}

// Delete removes a value by key.
func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE snapshot_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}

// Stats returns statistics about the snapshot table.
func (s *MySQLStore) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		return nil, err
	}
	stats["total_snapshots"] = count

	var lastWrite sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM snapshots").Scan(&lastWrite); err == nil && lastWrite.Valid {
		stats["last_write"] = lastWrite.Time
	}

	return stats, nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// Ensure MySQLStore implements Store
var _ Store = (*MySQLStore)(nil)
