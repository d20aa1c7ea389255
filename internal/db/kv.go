package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has never been written
var ErrNotFound = errors.New("key not found")

// Entry is a stored value with its write metadata
type Entry struct {
	Key       string
	Value     []byte
	Revision  string
	UpdatedAt time.Time
}

// Get returns the entry stored under key
func (db *DB) Get(ctx context.Context, key string) (Entry, error) {
	e := Entry{Key: key}
	err := db.QueryRowContext(ctx, `
		SELECT value, revision, updated_at FROM kv WHERE key = ?
	`, key).Scan(&e.Value, &e.Revision, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Put overwrites the value under key and returns the new revision
func (db *DB) Put(ctx context.Context, key string, value []byte) (string, error) {
	rev := uuid.New().String()
	now := time.Now().UTC()

	err := db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kv (key, value, revision, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				revision = excluded.revision,
				updated_at = excluded.updated_at
		`, key, value, rev, now)
		return err
	})
	if err != nil {
		return "", err
	}
	return rev, nil
}
