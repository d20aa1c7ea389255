// Package view derives the read-only per-column lists the board renders.
package view

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dori/dsboard/internal/model"
)

// SortBy selects the projection order
type SortBy int

const (
	SortNone SortBy = iota
	SortPriority
	SortDueDate
)

var sortNames = map[SortBy]string{
	SortNone:     "none",
	SortPriority: "priority",
	SortDueDate:  "dueDate",
}

func (s SortBy) String() string {
	if name, ok := sortNames[s]; ok {
		return name
	}
	return "none"
}

// Next cycles none -> priority -> dueDate -> none
func (s SortBy) Next() SortBy {
	switch s {
	case SortNone:
		return SortPriority
	case SortPriority:
		return SortDueDate
	default:
		return SortNone
	}
}

// ParseSortBy accepts the names printed by String plus a few spellings
func ParseSortBy(s string) (SortBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "priority", "prio":
		return SortPriority, nil
	case "duedate", "due", "due-date", "due_date":
		return SortDueDate, nil
	}
	return SortNone, fmt.Errorf("unknown sort %q", s)
}

// Filter restricts the projection to one priority. The zero value shows
// every task.
type Filter struct {
	Priority *model.Priority
}

// FilterBy returns a filter matching p
func FilterBy(p model.Priority) Filter {
	return Filter{Priority: &p}
}

// All reports whether the filter lets every task through
func (f Filter) All() bool {
	return f.Priority == nil
}

func (f Filter) String() string {
	if f.Priority == nil {
		return "all"
	}
	return string(*f.Priority)
}

// Next cycles all -> High -> Medium -> Low -> all
func (f Filter) Next() Filter {
	if f.Priority == nil {
		return FilterBy(model.PriorityHigh)
	}
	switch *f.Priority {
	case model.PriorityHigh:
		return FilterBy(model.PriorityMedium)
	case model.PriorityMedium:
		return FilterBy(model.PriorityLow)
	default:
		return Filter{}
	}
}

// Match reports whether t passes the filter
func (f Filter) Match(t model.Task) bool {
	return f.Priority == nil || t.Priority == *f.Priority
}

// Project returns the tasks that pass filter, ordered by sortBy. The
// input is never modified and the result is always a fresh slice. Sorting
// is stable: ties keep stored order.
func Project(tasks []model.Task, sortBy SortBy, filter Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t) {
			out = append(out, t)
		}
	}

	switch sortBy {
	case SortPriority:
		slices.SortStableFunc(out, func(a, b model.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
	case SortDueDate:
		slices.SortStableFunc(out, compareDue)
	}
	return out
}

// compareDue orders by ascending due date with unparsable dates last
func compareDue(a, b model.Task) int {
	da, okA := a.Due()
	db, okB := b.Due()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return da.Compare(db)
}

// Column is one projected column ready for rendering
type Column struct {
	ID          model.Status
	Title       string
	IsDroppable bool
	Tasks       []model.Task
	// Total counts stored tasks before filtering
	Total int
}

// Board projects every column in display order
func Board(b model.Board, sortBy SortBy, filter Filter) []Column {
	cols := make([]Column, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		c := b[st]
		cols = append(cols, Column{
			ID:          st,
			Title:       model.ColumnTitle(st),
			IsDroppable: c.IsDroppable,
			Tasks:       Project(c.Items, sortBy, filter),
			Total:       len(c.Items),
		})
	}
	return cols
}

// StoredIndex maps a projected position in col to its index in the stored
// column, matching by task id. A position past the end maps to the stored
// length so drops land after the last card. It returns -1 when the task at
// pos is no longer stored.
func StoredIndex(stored []model.Task, projected []model.Task, pos int) int {
	if pos >= len(projected) {
		if len(projected) == 0 {
			return len(stored)
		}
		last := indexOf(stored, projected[len(projected)-1].ID)
		if last < 0 {
			return len(stored)
		}
		return last + 1
	}
	if pos < 0 {
		pos = 0
	}
	return indexOf(stored, projected[pos].ID)
}

func indexOf(tasks []model.Task, id string) int {
	return slices.IndexFunc(tasks, func(t model.Task) bool { return t.ID == id })
}

// Stats summarizes a board for headers and the list command
type Stats struct {
	Total   int
	Done    int
	Overdue int
}

// Summarize counts tasks on b
func Summarize(b model.Board, now time.Time) Stats {
	var s Stats
	for _, st := range model.Statuses {
		for _, t := range b[st].Items {
			s.Total++
			if st == model.StatusDone {
				s.Done++
			}
			if t.IsOverdue(now) {
				s.Overdue++
			}
		}
	}
	return s
}
