package model

import "fmt"

// Column is an ordered bucket of tasks for one workflow stage. Items order
// is the on-screen vertical order.
type Column struct {
	ID          Status `json:"id"`
	Title       string `json:"title"`
	Items       []Task `json:"items"`
	IsDroppable bool   `json:"isDroppable"`
}

// Board maps every status to its column. All five keys are always present.
type Board map[Status]Column

type columnSpec struct {
	title     string
	droppable bool
}

// Review and backlog are frozen for grab/drop moves.
var columnSpecs = map[Status]columnSpec{
	StatusBacklog:    {"Backlog", false},
	StatusTodo:       {"Todo", true},
	StatusInProgress: {"In Progress", true},
	StatusReview:     {"Review", false},
	StatusDone:       {"Done", true},
}

// ColumnTitle returns the display label for a status
func ColumnTitle(s Status) string {
	if spec, ok := columnSpecs[s]; ok {
		return spec.title
	}
	return string(s)
}

// NewBoard returns a board with every column present and empty
func NewBoard() Board {
	b := make(Board, len(Statuses))
	for _, s := range Statuses {
		spec := columnSpecs[s]
		b[s] = Column{ID: s, Title: spec.title, Items: []Task{}, IsDroppable: spec.droppable}
	}
	return b
}

// Clone returns a deep copy whose item slices share nothing with b
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for id, col := range b {
		items := make([]Task, len(col.Items))
		copy(items, col.Items)
		col.Items = items
		out[id] = col
	}
	return out
}

// IsEmpty reports whether no column holds a task
func (b Board) IsEmpty() bool {
	for _, col := range b {
		if len(col.Items) > 0 {
			return false
		}
	}
	return true
}

// Len returns the total number of tasks on the board
func (b Board) Len() int {
	n := 0
	for _, col := range b {
		n += len(col.Items)
	}
	return n
}

// Find locates a task by id
func (b Board) Find(id string) (Task, Status, int, bool) {
	for _, s := range Statuses {
		for i, t := range b[s].Items {
			if t.ID == id {
				return t, s, i, true
			}
		}
	}
	return Task{}, "", -1, false
}

// MaxOrdinal returns the highest DS-### ordinal on the board, or 0
func (b Board) MaxOrdinal() int {
	max := 0
	for _, col := range b {
		for _, t := range col.Items {
			if n, ok := t.Ordinal(); ok && n > max {
				max = n
			}
		}
	}
	return max
}

// Normalize repairs a decoded board: missing columns are added, column
// metadata is reset to the fixed table, unknown columns are dropped and
// task status is rewritten to match the column that holds it.
func (b Board) Normalize() Board {
	out := NewBoard()
	for _, s := range Statuses {
		col, ok := b[s]
		if !ok {
			continue
		}
		items := make([]Task, len(col.Items))
		for i, t := range col.Items {
			t.Status = s
			items[i] = t
		}
		c := out[s]
		c.Items = items
		out[s] = c
	}
	return out
}

// Check verifies the board invariants: the fixed key set, column ids
// matching keys, status matching column and no duplicated task ids.
func (b Board) Check() error {
	if len(b) != len(Statuses) {
		return fmt.Errorf("board has %d columns, want %d", len(b), len(Statuses))
	}
	seen := make(map[string]Status)
	for _, s := range Statuses {
		col, ok := b[s]
		if !ok {
			return fmt.Errorf("column %q missing", s)
		}
		if col.ID != s {
			return fmt.Errorf("column %q has id %q", s, col.ID)
		}
		for _, t := range col.Items {
			if t.Status != s {
				return fmt.Errorf("task %s has status %q in column %q", t.ID, t.Status, s)
			}
			if prev, dup := seen[t.ID]; dup {
				return fmt.Errorf("task %s appears in %q and %q", t.ID, prev, s)
			}
			seen[t.ID] = s
		}
	}
	return nil
}
