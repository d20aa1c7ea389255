// Package board implements the kanban state machine. Every transition is a
// pure function from (board, arguments) to a new board; callers persist the
// result.
package board

import (
	"github.com/dori/dsboard/internal/model"
)

// Location addresses a slot in a column
type Location struct {
	Column model.Status
	Index  int
}

// Drop describes the end of a grab-and-drop gesture. A nil Destination
// means the gesture was cancelled.
type Drop struct {
	Source      Location
	Destination *Location
}

// MoveTask applies a drop. The board is returned unchanged when the drop
// was cancelled, when either column is not droppable, or when the source
// index does not address a task.
func MoveTask(b model.Board, d Drop) (model.Board, bool) {
	if d.Destination == nil {
		return b, false
	}
	src, ok := b[d.Source.Column]
	if !ok || !src.IsDroppable {
		return b, false
	}
	dst, ok := b[d.Destination.Column]
	if !ok || !dst.IsDroppable {
		return b, false
	}
	if d.Source.Index < 0 || d.Source.Index >= len(src.Items) {
		return b, false
	}

	out := cloneColumns(b, d.Source.Column, d.Destination.Column)

	srcCol := out[d.Source.Column]
	moved := srcCol.Items[d.Source.Index]
	srcCol.Items = append(srcCol.Items[:d.Source.Index], srcCol.Items[d.Source.Index+1:]...)
	moved.Status = d.Destination.Column

	if d.Source.Column == d.Destination.Column {
		srcCol.Items = insertAt(srcCol.Items, d.Destination.Index, moved)
		out[d.Source.Column] = srcCol
		return out, true
	}

	out[d.Source.Column] = srcCol
	dstCol := out[d.Destination.Column]
	dstCol.Items = insertAt(dstCol.Items, d.Destination.Index, moved)
	out[d.Destination.Column] = dstCol
	return out, true
}

// CreateTask validates input and appends the new task to the end of todo.
// Invalid input leaves the board unchanged.
func CreateTask(b model.Board, in model.TaskInput, def model.TaskDefaults) (model.Board, model.Task, bool) {
	task, err := model.NewTask(NextID(b), in, def)
	if err != nil {
		return b, model.Task{}, false
	}

	out := cloneColumns(b, model.StatusTodo)
	todo := out[model.StatusTodo]
	todo.Items = append(todo.Items, task)
	out[model.StatusTodo] = todo
	return out, task, true
}

// NextID returns an id one past the highest ordinal on the board
func NextID(b model.Board) string {
	return model.FormatID(b.MaxOrdinal() + 1)
}

// Patch holds the fields an update may change. Nil fields are left alone.
// Status is deliberately absent: only MoveTask changes columns.
type Patch struct {
	Title       *string
	Description *string
	Priority    *model.Priority
	DueDate     *string
	Assignee    *string
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.Assignee == nil
}

// Apply merges the patch into t
func (p Patch) Apply(t model.Task) model.Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	return t
}

// UpdateTask merges patch into the task with the given id, keeping its
// column and position. Unknown ids are a no-op.
func UpdateTask(b model.Board, id string, p Patch) (model.Board, model.Task, bool) {
	_, status, idx, found := b.Find(id)
	if !found {
		return b, model.Task{}, false
	}

	out := cloneColumns(b, status)
	col := out[status]
	merged := p.Apply(col.Items[idx])
	col.Items[idx] = merged
	out[status] = col
	return out, merged, true
}

// MergeSelection returns the caller's selected task refreshed with an
// update result. Selections of other tasks are returned as is.
func MergeSelection(selected *model.Task, updated model.Task) *model.Task {
	if selected == nil || selected.ID != updated.ID {
		return selected
	}
	t := updated
	return &t
}

// DeleteTask removes the task with the given id from whichever column
// holds it. Deleting an absent id is a no-op.
func DeleteTask(b model.Board, id string) (model.Board, bool) {
	_, status, idx, found := b.Find(id)
	if !found {
		return b, false
	}

	out := cloneColumns(b, status)
	col := out[status]
	col.Items = append(col.Items[:idx], col.Items[idx+1:]...)
	out[status] = col
	return out, true
}

// cloneColumns copies the board map and the item slices of the named
// columns. Other columns share their backing arrays with b, which is safe
// because no transition writes to a column it did not clone.
func cloneColumns(b model.Board, ids ...model.Status) model.Board {
	out := make(model.Board, len(b))
	for k, v := range b {
		out[k] = v
	}
	for _, id := range ids {
		col := out[id]
		items := make([]model.Task, len(col.Items), len(col.Items)+1)
		copy(items, col.Items)
		col.Items = items
		out[id] = col
	}
	return out
}

func insertAt(items []model.Task, idx int, t model.Task) []model.Task {
	if idx < 0 {
		idx = 0
	}
	if idx > len(items) {
		idx = len(items)
	}
	items = append(items, model.Task{})
	copy(items[idx+1:], items[idx:])
	items[idx] = t
	return items
}
