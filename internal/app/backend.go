package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/dori/dsboard/internal/db"
	"github.com/dori/dsboard/internal/store"
)

// kvBackend adapts the SQLite kv table to store.Backend
type kvBackend struct {
	db     *db.DB
	logger *log.Logger
}

func (k kvBackend) Get(ctx context.Context, key string) ([]byte, error) {
	e, err := k.db.Get(ctx, key)
	if errors.Is(err, db.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	k.logger.Debug("read", "key", key, "revision", e.Revision, "updated", e.UpdatedAt)
	return e.Value, nil
}

func (k kvBackend) Put(ctx context.Context, key string, value []byte) error {
	rev, err := k.db.Put(ctx, key, value)
	if err != nil {
		return err
	}
	k.logger.Debug("wrote", "key", key, "revision", rev, "bytes", len(value))
	return nil
}
