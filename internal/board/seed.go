package board

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/dori/dsboard/internal/model"
)

// seedHorizon bounds how far ahead seeded due dates may fall
const seedHorizon = 10 * 24 * time.Hour

// RawTask is a record from the seed provider
type RawTask struct {
	ID   int    `json:"id"`
	Todo string `json:"todo"`
}

// Band assigns the next Size seeded tasks to Column
type Band struct {
	Column model.Status
	Size   int
}

// DefaultBands spreads fifteen records three per column
var DefaultBands = []Band{
	{model.StatusBacklog, 3},
	{model.StatusTodo, 3},
	{model.StatusInProgress, 3},
	{model.StatusReview, 3},
	{model.StatusDone, 3},
}

// SeedOptions control the seed transform
type SeedOptions struct {
	Bands           []Band
	Roster          []string
	DefaultAssignee string
	Now             time.Time
	Rand            *rand.Rand
}

// ImportSeed populates an empty board from raw records. A board that
// already holds any task is returned unchanged, which makes late or
// repeated seed deliveries harmless. Records repeating an earlier id or
// carrying blank text are skipped, so ids stay unique and every card has
// a title.
func ImportSeed(b model.Board, raw []RawTask, opts SeedOptions) (model.Board, bool) {
	if len(raw) == 0 || !b.IsEmpty() {
		return b, false
	}

	bands := opts.Bands
	if len(bands) == 0 {
		bands = DefaultBands
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	out := b.Clone()
	seen := make(map[int]bool, len(raw))
	n := 0
	for _, r := range raw {
		if seen[r.ID] || strings.TrimSpace(r.Todo) == "" {
			continue
		}
		seen[r.ID] = true
		status := bandFor(bands, n)
		n++
		task := model.Task{
			ID:          model.FormatID(r.ID),
			Title:       r.Todo,
			Description: "",
			Status:      status,
			Priority:    model.Priorities[rng.IntN(len(model.Priorities))],
			DueDate:     now.Add(time.Duration(rng.Int64N(int64(seedHorizon)))).Format(model.DateLayout),
			Assignee:    pickAssignee(rng, opts.Roster, opts.DefaultAssignee),
		}
		col := out[status]
		col.Items = append(col.Items, task)
		out[status] = col
	}
	if n == 0 {
		return b, false
	}
	return out, true
}

// bandFor returns the column for the i-th seeded record. Records past the
// last cutoff stay in the last band's column.
func bandFor(bands []Band, i int) model.Status {
	cutoff := 0
	for _, band := range bands {
		cutoff += band.Size
		if i < cutoff {
			return band.Column
		}
	}
	return bands[len(bands)-1].Column
}

func pickAssignee(rng *rand.Rand, roster []string, fallback string) string {
	if len(roster) == 0 {
		return fallback
	}
	return roster[rng.IntN(len(roster))]
}

// ValidateBands rejects band lists that could place a task outside the
// fixed column set.
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return errors.New("at least one seed band is required")
	}
	for i, band := range bands {
		if !band.Column.Valid() {
			return fmt.Errorf("band %d: unknown column %q", i, band.Column)
		}
		if band.Size < 0 {
			return fmt.Errorf("band %d: negative size %d", i, band.Size)
		}
	}
	return nil
}
