package app

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/config"
	"github.com/dori/dsboard/internal/logging"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/seed"
)

var fixedNow = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

type failingSeeder struct{ calls int }

func (f *failingSeeder) Fetch(context.Context) ([]board.RawTask, error) {
	f.calls++
	return nil, errors.New("network unreachable")
}

// blockingSeeder holds Fetch open until release is closed
type blockingSeeder struct {
	started chan struct{}
	release chan struct{}
}

func newBlockingSeeder() *blockingSeeder {
	return &blockingSeeder{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingSeeder) Fetch(ctx context.Context) ([]board.RawTask, error) {
	close(b.started)
	select {
	case <-b.release:
		return rawTasks(15), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return cfg
}

func rawTasks(n int) seed.Static {
	out := make(seed.Static, n)
	for i := range out {
		out[i] = board.RawTask{ID: i + 1, Todo: "todo"}
	}
	return out
}

func newTestApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{
		WithLogger(logging.Discard()),
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewPCG(1, 2))),
		WithSeeder(rawTasks(15)),
	}, opts...)
	a, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewFailsWhenLocked(t *testing.T) {
	cfg := testConfig(t)
	newTestApp(t, cfg)

	_, err := New(cfg, WithLogger(logging.Discard()))
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second New: got %v, want ErrLocked", err)
	}

	ro, err := New(cfg, WithLogger(logging.Discard()), ReadOnly())
	if err != nil {
		t.Fatalf("read-only New while locked: %v", err)
	}
	ro.Close()
}

func TestMutationsRefusedBeforeHydrate(t *testing.T) {
	a := newTestApp(t, testConfig(t))

	if _, err := a.Create(context.Background(), model.TaskInput{Title: "early"}); !errors.Is(err, ErrNotHydrated) {
		t.Errorf("Create: got %v, want ErrNotHydrated", err)
	}
	if _, err := a.Seed(context.Background()); !errors.Is(err, ErrNotHydrated) {
		t.Errorf("Seed: got %v, want ErrNotHydrated", err)
	}
	if a.NeedsSeed() {
		t.Error("NeedsSeed before hydration")
	}
}

func TestSeedThenPersistAcrossRestart(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	a := newTestApp(t, cfg)
	a.Hydrate(ctx)
	if !a.NeedsSeed() {
		t.Fatal("empty hydrated board should need seeding")
	}
	n, err := a.Seed(ctx)
	if err != nil || n != 15 {
		t.Fatalf("Seed = %d, %v", n, err)
	}
	if _, err := a.Seed(ctx); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("second Seed: got %v, want ErrNotEmpty", err)
	}

	todo0 := a.Current()[model.StatusTodo].Items[0]
	if _, ok := a.Move(ctx, board.Drop{
		Source:      board.Location{Column: model.StatusTodo, Index: 0},
		Destination: &board.Location{Column: model.StatusDone, Index: 0},
	}); !ok {
		t.Fatal("Move todo[0] -> done[0] failed")
	}
	a.Close()

	b := newTestApp(t, cfg)
	got := b.Hydrate(ctx)
	if err := got.Check(); err != nil {
		t.Fatalf("restored board: %v", err)
	}
	if got.Len() != 15 {
		t.Errorf("restored %d tasks, want 15", got.Len())
	}
	done0 := got[model.StatusDone].Items[0]
	if done0.ID != todo0.ID || done0.Status != model.StatusDone {
		t.Errorf("done[0] = %+v, want %s in done", done0, todo0.ID)
	}
	if len(got[model.StatusTodo].Items) != 2 || len(got[model.StatusDone].Items) != 4 {
		t.Errorf("todo/done sizes: %d/%d", len(got[model.StatusTodo].Items), len(got[model.StatusDone].Items))
	}
}

func TestSeedFailureLeavesBoardEmpty(t *testing.T) {
	seeder := &failingSeeder{}
	a := newTestApp(t, testConfig(t), WithSeeder(seeder))
	ctx := context.Background()
	a.Hydrate(ctx)

	if _, err := a.Seed(ctx); err == nil {
		t.Fatal("expected fetch error")
	}
	if !a.Current().IsEmpty() {
		t.Error("board changed after failed seed")
	}
	if seeder.calls != 1 {
		t.Errorf("fetch called %d times, want exactly one attempt", seeder.calls)
	}
}

func TestSeedArrivingAfterCreateIsSkipped(t *testing.T) {
	ctx := context.Background()
	seeder := newBlockingSeeder()
	a := newTestApp(t, testConfig(t), WithSeeder(seeder))
	a.Hydrate(ctx)

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := a.Seed(ctx)
		done <- result{n, err}
	}()

	<-seeder.started
	created, err := a.Create(ctx, model.TaskInput{Title: "early bird"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	close(seeder.release)

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Seed did not return")
	}
	if res.n != 0 || res.err != nil {
		t.Errorf("Seed = %d, %v, want 0, nil", res.n, res.err)
	}

	got := a.Current()
	if got.Len() != 1 {
		t.Fatalf("board holds %d tasks, want only the created one", got.Len())
	}
	if _, _, _, found := got.Find(created.ID); !found {
		t.Errorf("created task %s missing", created.ID)
	}
	if a.NeedsSeed() {
		t.Error("NeedsSeed after the user added a task")
	}
}

func TestSeedDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Seed.Enabled = false
	a := newTestApp(t, cfg)
	a.Hydrate(context.Background())

	if a.NeedsSeed() {
		t.Error("NeedsSeed with seeding disabled")
	}
	if _, err := a.Seed(context.Background()); !errors.Is(err, ErrSeedDisabled) {
		t.Errorf("Seed: got %v", err)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	ctx := context.Background()
	a.Hydrate(ctx)

	if _, err := a.Create(ctx, model.TaskInput{Title: "   "}); !errors.Is(err, model.ErrEmptyTitle) {
		t.Errorf("blank title: got %v", err)
	}
	if !a.Current().IsEmpty() {
		t.Fatal("blank create changed the board")
	}

	task, err := a.Create(ctx, model.TaskInput{Title: "Write brief"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.ID != "DS-001" || task.Assignee != "Ann" || task.DueDate != "2024-05-06" || task.Status != model.StatusTodo {
		t.Errorf("created = %+v", task)
	}

	high := model.PriorityHigh
	merged, ok := a.Update(ctx, task.ID, board.Patch{Priority: &high})
	if !ok || merged.Priority != model.PriorityHigh || merged.Title != "Write brief" {
		t.Errorf("Update = %+v, %v", merged, ok)
	}
	if _, ok := a.Update(ctx, "DS-404", board.Patch{Priority: &high}); ok {
		t.Error("update of unknown id reported success")
	}

	if !a.Delete(ctx, task.ID) {
		t.Fatal("Delete failed")
	}
	if a.Delete(ctx, task.ID) {
		t.Error("second Delete reported success")
	}
}

func TestReset(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	a := newTestApp(t, cfg)
	a.Hydrate(ctx)
	a.Seed(ctx)

	if got := a.Reset(ctx); !got.IsEmpty() {
		t.Fatal("Reset left tasks")
	}
	a.Close()

	b := newTestApp(t, cfg)
	b.Hydrate(ctx)
	if !b.NeedsSeed() {
		t.Error("board should need seeding after reset")
	}
}
