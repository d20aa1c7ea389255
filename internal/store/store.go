// Package store keeps a typed value mirrored in memory and synchronized to a
// durable key-value backend.
//
// A Store starts NotHydrated and serves the caller's default. Hydrate reads
// the backend once and moves the store to Hydrated; only then are updates
// accepted. Persistence failures are logged and never reach the caller: the
// in-memory value stays authoritative for the session.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
)

// ErrNotFound is returned by a Backend when a key has never been written
var ErrNotFound = errors.New("store: key not found")

// Backend is the durable string-keyed byte store
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Phase is the hydration state of a Store
type Phase int

const (
	NotHydrated Phase = iota
	Hydrated
)

func (p Phase) String() string {
	if p == Hydrated {
		return "hydrated"
	}
	return "not hydrated"
}

// Load returns the value saved under key, or def when nothing is stored or
// the stored bytes cannot be decoded.
func Load[T any](ctx context.Context, b Backend, key string, def T, logger *log.Logger) T {
	raw, err := b.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Error("reading stored value", "key", key, "err", err)
		}
		return def
	}
	var v T
	if err := sonic.Unmarshal(raw, &v); err != nil {
		logger.Error("decoding stored value", "key", key, "err", err)
		return def
	}
	return v
}

// Save serializes v and writes it under key. It reports whether the write
// succeeded; failures are logged.
func Save[T any](ctx context.Context, b Backend, key string, v T, logger *log.Logger) bool {
	raw, err := sonic.Marshal(v)
	if err != nil {
		logger.Error("encoding value", "key", key, "err", err)
		return false
	}
	if err := b.Put(ctx, key, raw); err != nil {
		logger.Error("writing value", "key", key, "err", err)
		return false
	}
	return true
}

// Store mirrors one key of a Backend in memory
type Store[T any] struct {
	backend Backend
	key     string
	logger  *log.Logger

	// normalize repairs a decoded value before it becomes current
	normalize func(T) T
	onError   func(error)

	mu    sync.Mutex
	phase Phase
	def   T
	value T
}

// Option configures a Store
type Option[T any] func(*Store[T])

// WithNormalize installs a repair function applied to hydrated values
func WithNormalize[T any](fn func(T) T) Option[T] {
	return func(s *Store[T]) {
		s.normalize = fn
	}
}

// WithErrorHandler is called after a failed write, once the failure has
// been logged
func WithErrorHandler[T any](fn func(error)) Option[T] {
	return func(s *Store[T]) {
		s.onError = fn
	}
}

// ErrWriteFailed is passed to the error handler when a save fails
var ErrWriteFailed = errors.New("store: write failed")

// New returns a NotHydrated store serving def
func New[T any](backend Backend, key string, def T, logger *log.Logger, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		backend: backend,
		key:     key,
		logger:  logger.With("key", key),
		def:     def,
		value:   def,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key this store mirrors
func (s *Store[T]) Key() string {
	return s.key
}

// Phase returns the hydration state
func (s *Store[T]) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Value returns the current value. Before hydration this is the default.
func (s *Store[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Hydrate substitutes the stored value for the default. Only the first
// call reads the backend; later calls return the current value.
func (s *Store[T]) Hydrate(ctx context.Context) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == Hydrated {
		return s.value
	}
	v := Load(ctx, s.backend, s.key, s.def, s.logger)
	if s.normalize != nil {
		v = s.normalize(v)
	}
	s.value = v
	s.phase = Hydrated
	s.logger.Debug("hydrated")
	return s.value
}

// Update applies fn to the current value under the store lock. When fn
// reports a change the result becomes current and is saved. Updates before
// hydration are refused and return the current value unchanged.
func (s *Store[T]) Update(ctx context.Context, fn func(T) (T, bool)) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Hydrated {
		s.logger.Warn("update refused before hydration")
		return s.value, false
	}
	next, changed := fn(s.value)
	if !changed {
		return s.value, false
	}
	s.value = next
	s.persist(ctx)
	return s.value, true
}

// Reset replaces the current value with the default and clears the
// stored copy by saving the default.
func (s *Store[T]) Reset(ctx context.Context) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = s.def
	s.phase = Hydrated
	s.persist(ctx)
	return s.value
}

func (s *Store[T]) persist(ctx context.Context) {
	if Save(ctx, s.backend, s.key, s.value, s.logger) {
		return
	}
	if s.onError != nil {
		s.onError(ErrWriteFailed)
	}
}
