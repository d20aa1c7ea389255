package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/config"
	"github.com/dori/dsboard/internal/db"
	"github.com/dori/dsboard/internal/logging"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/notify"
	"github.com/dori/dsboard/internal/seed"
	"github.com/dori/dsboard/internal/store"
)

var (
	// ErrLocked is returned when another process holds the data directory
	ErrLocked = errors.New("another instance of dsboard is already running")
	// ErrNotHydrated is returned for mutations attempted before the board
	// has been read from disk
	ErrNotHydrated = errors.New("board not loaded yet")
	// ErrNotEmpty is returned by Seed when the board already holds tasks
	ErrNotEmpty = errors.New("board already has tasks")
	// ErrSeedDisabled is returned by Seed when seeding is turned off
	ErrSeedDisabled = errors.New("seeding is disabled")
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *logging.Logger
	Notifier *notify.Notifier
	Board    *store.Store[model.Board]
	Seeder   seed.Provider

	lockFile *flock.Flock
	noLock   bool
	now      func() time.Time
	rng      *rand.Rand
}

// Option configures New
type Option func(*App)

// WithLogger uses logger instead of opening the configured log file. The
// app takes ownership and closes it on Close.
func WithLogger(logger *logging.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithSeeder replaces the HTTP seed provider
func WithSeeder(p seed.Provider) Option {
	return func(a *App) {
		a.Seeder = p
	}
}

// WithNotifier replaces the desktop notifier
func WithNotifier(n *notify.Notifier) Option {
	return func(a *App) {
		a.Notifier = n
	}
}

// WithClock fixes the time used for default due dates and seeding
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithRand makes seeded priorities, dates and assignees reproducible
func WithRand(r *rand.Rand) Option {
	return func(a *App) {
		a.rng = r
	}
}

// ReadOnly skips the instance lock. Only use it for commands that never
// write the board.
func ReadOnly() Option {
	return func(a *App) {
		a.noLock = true
	}
}

// New creates a new application instance
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
		if err := cfg.Finalize(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config: cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.Logger == nil {
		logger, err := logging.New(logging.Options{Path: cfg.LogPath(), Level: cfg.LogLevel})
		if err != nil {
			return nil, err
		}
		app.Logger = logger
	}
	if app.Notifier == nil {
		app.Notifier = notify.NewNotifier(cfg.Notify.Enabled)
	}
	if app.Seeder == nil {
		app.Seeder = seed.NewHTTPProvider(cfg.Seed.URL, cfg.Seed.Limit, cfg.Seed.Timeout.Duration)
	}
	if app.rng == nil {
		s := uint64(app.now().UnixNano())
		app.rng = rand.New(rand.NewPCG(s, s>>1))
	}

	if !app.noLock {
		if err := app.acquireLock(); err != nil {
			app.closeLog()
			return nil, err
		}
	}

	database, err := db.Open(cfg.DBPath(), db.WithLogger(app.Logger.Logger))
	if err != nil {
		app.releaseLock()
		app.closeLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	app.Board = store.New(
		kvBackend{db: database, logger: app.Logger.Logger},
		cfg.StorageKey,
		model.NewBoard(),
		app.Logger.Logger,
		store.WithNormalize(model.Board.Normalize),
		store.WithErrorHandler[model.Board](app.saveFailed),
	)

	app.Logger.Info("started", "data_dir", cfg.DataDir, "key", cfg.StorageKey)
	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple writers
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrLocked
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

func (a *App) closeLog() {
	if a.Logger != nil {
		a.Logger.Close()
	}
}

func (a *App) saveFailed(err error) {
	if nerr := a.Notifier.SendSaveFailed(err); nerr != nil {
		a.Logger.Debug("notification failed", "err", nerr)
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()
	a.closeLog()

	return errors.Join(errs...)
}

// Hydrate loads the stored board. Only the first call reads the database.
func (a *App) Hydrate(ctx context.Context) model.Board {
	b := a.Board.Hydrate(ctx)
	a.Logger.Debug("board hydrated", "tasks", b.Len())
	return b
}

// Hydrated reports whether mutations are accepted yet
func (a *App) Hydrated() bool {
	return a.Board.Phase() == store.Hydrated
}

// Current returns the in-memory board
func (a *App) Current() model.Board {
	return a.Board.Value()
}

// Defaults returns the values used for fields a new task leaves empty
func (a *App) Defaults() model.TaskDefaults {
	return model.TaskDefaults{
		Assignee: a.Config.DefaultAssignee(),
		Now:      a.now(),
	}
}

// Move applies a drop and persists the result
func (a *App) Move(ctx context.Context, d board.Drop) (model.Board, bool) {
	return a.Board.Update(ctx, func(b model.Board) (model.Board, bool) {
		return board.MoveTask(b, d)
	})
}

// Create validates in and appends the new task to todo
func (a *App) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if !a.Hydrated() {
		return model.Task{}, ErrNotHydrated
	}
	def := a.Defaults()
	if _, err := model.NewTask("", in, def); err != nil {
		return model.Task{}, err
	}

	var created model.Task
	_, ok := a.Board.Update(ctx, func(b model.Board) (model.Board, bool) {
		out, task, ok := board.CreateTask(b, in, def)
		created = task
		return out, ok
	})
	if !ok {
		return model.Task{}, ErrNotHydrated
	}
	a.Logger.Info("task created", "id", created.ID)
	return created, nil
}

// Update merges patch into the task with the given id
func (a *App) Update(ctx context.Context, id string, p board.Patch) (model.Task, bool) {
	if p.IsEmpty() {
		t, _, _, found := a.Current().Find(id)
		return t, found
	}
	var merged model.Task
	_, ok := a.Board.Update(ctx, func(b model.Board) (model.Board, bool) {
		out, task, ok := board.UpdateTask(b, id, p)
		merged = task
		return out, ok
	})
	return merged, ok
}

// Delete removes the task with the given id
func (a *App) Delete(ctx context.Context, id string) bool {
	_, ok := a.Board.Update(ctx, func(b model.Board) (model.Board, bool) {
		return board.DeleteTask(b, id)
	})
	if ok {
		a.Logger.Info("task deleted", "id", id)
	}
	return ok
}

// NeedsSeed reports whether a hydrated board is empty and seeding is on
func (a *App) NeedsSeed() bool {
	return a.Config.Seed.Enabled && a.Hydrated() && a.Current().IsEmpty()
}

// Seed fetches raw records and imports them into an empty board. It
// returns the number of tasks imported. A board that gains tasks while
// the fetch is in flight is left alone.
func (a *App) Seed(ctx context.Context) (int, error) {
	if !a.Config.Seed.Enabled {
		return 0, ErrSeedDisabled
	}
	if !a.Hydrated() {
		return 0, ErrNotHydrated
	}
	if !a.Current().IsEmpty() {
		return 0, ErrNotEmpty
	}

	raw, err := a.Seeder.Fetch(ctx)
	if err != nil {
		a.Logger.Error("seed fetch failed", "err", err)
		return 0, err
	}

	opts := board.SeedOptions{
		Bands:           a.Config.Seed.BoardBands(),
		Roster:          a.Config.Roster.Names,
		DefaultAssignee: a.Config.DefaultAssignee(),
		Now:             a.now(),
		Rand:            a.rng,
	}
	b, ok := a.Board.Update(ctx, func(b model.Board) (model.Board, bool) {
		return board.ImportSeed(b, raw, opts)
	})
	if !ok {
		a.Logger.Info("seed skipped", "records", len(raw))
		return 0, nil
	}

	n := b.Len()
	a.Logger.Info("seed imported", "tasks", n)
	if err := a.Notifier.SendSeedImported(n); err != nil {
		a.Logger.Debug("notification failed", "err", err)
	}
	return n, nil
}

// Reset replaces the stored board with an empty one so the next start
// seeds again
func (a *App) Reset(ctx context.Context) model.Board {
	a.Logger.Warn("board reset")
	return a.Board.Reset(ctx)
}
