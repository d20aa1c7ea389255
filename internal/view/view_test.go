package view

import (
	"reflect"
	"testing"
	"time"

	"github.com/dori/dsboard/internal/model"
)

func tasks() []model.Task {
	return []model.Task{
		{ID: "DS-001", Priority: model.PriorityLow, DueDate: "2024-03-05"},
		{ID: "DS-002", Priority: model.PriorityHigh, DueDate: "not a date"},
		{ID: "DS-003", Priority: model.PriorityMedium, DueDate: "2024-03-01"},
		{ID: "DS-004", Priority: model.PriorityHigh, DueDate: "2024-03-01"},
		{ID: "DS-005", Priority: model.PriorityLow, DueDate: ""},
	}
}

func ids(ts []model.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestProject(t *testing.T) {
	tests := []struct {
		name   string
		sortBy SortBy
		filter Filter
		want   []string
	}{
		{"identity", SortNone, Filter{}, []string{"DS-001", "DS-002", "DS-003", "DS-004", "DS-005"}},
		{"priority is stable", SortPriority, Filter{}, []string{"DS-002", "DS-004", "DS-003", "DS-001", "DS-005"}},
		{"due date with bad dates last", SortDueDate, Filter{}, []string{"DS-003", "DS-004", "DS-001", "DS-002", "DS-005"}},
		{"filter high", SortNone, FilterBy(model.PriorityHigh), []string{"DS-002", "DS-004"}},
		{"filter low by due", SortDueDate, FilterBy(model.PriorityLow), []string{"DS-001", "DS-005"}},
		{"filter medium", SortNone, FilterBy(model.PriorityMedium), []string{"DS-003"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Project(tasks(), tt.sortBy, tt.filter))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	in := tasks()
	before := ids(in)

	out := Project(in, SortPriority, Filter{})
	if !reflect.DeepEqual(ids(in), before) {
		t.Fatalf("input reordered: %v", ids(in))
	}

	out[0].Title = "changed"
	if in[1].Title == "changed" {
		t.Error("projection shares backing storage with input")
	}

	// no sort, no filter still yields a distinct slice
	same := Project(in, SortNone, Filter{})
	same[0].Title = "changed"
	if in[0].Title == "changed" {
		t.Error("identity projection aliases input")
	}
}

func TestProjectEmpty(t *testing.T) {
	got := Project(nil, SortDueDate, Filter{})
	if got == nil || len(got) != 0 {
		t.Errorf("Project(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestSortCycle(t *testing.T) {
	s := SortNone
	var seen []string
	for i := 0; i < 4; i++ {
		seen = append(seen, s.String())
		s = s.Next()
	}
	want := []string{"none", "priority", "dueDate", "none"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("cycle = %v, want %v", seen, want)
	}

	for _, name := range []string{"priority", "dueDate", "due", "none", ""} {
		if _, err := ParseSortBy(name); err != nil {
			t.Errorf("ParseSortBy(%q): %v", name, err)
		}
	}
	if _, err := ParseSortBy("title"); err == nil {
		t.Error("ParseSortBy(title) should fail")
	}
}

func TestFilterCycle(t *testing.T) {
	f := Filter{}
	var seen []string
	for i := 0; i < 5; i++ {
		seen = append(seen, f.String())
		f = f.Next()
	}
	want := []string{"all", "High", "Medium", "Low", "all"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("cycle = %v, want %v", seen, want)
	}
}

func TestStoredIndex(t *testing.T) {
	stored := tasks()
	projected := Project(stored, SortPriority, Filter{})

	tests := []struct {
		name string
		pos  int
		want int
	}{
		{"first projected", 0, 1},
		{"middle projected", 2, 2},
		{"past end lands after last projected", len(projected), 5},
		{"negative clamps to first", -3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StoredIndex(stored, projected, tt.pos); got != tt.want {
				t.Errorf("StoredIndex(%d) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}

	if got := StoredIndex(stored, nil, 0); got != len(stored) {
		t.Errorf("empty projection: got %d, want %d", got, len(stored))
	}
	if got := StoredIndex(stored, []model.Task{{ID: "DS-999"}}, 0); got != -1 {
		t.Errorf("missing task: got %d, want -1", got)
	}
}

func TestBoardAndSummarize(t *testing.T) {
	b := model.NewBoard()
	todo := b[model.StatusTodo]
	todo.Items = []model.Task{
		{ID: "DS-001", Status: model.StatusTodo, Priority: model.PriorityLow, DueDate: "2020-01-01"},
		{ID: "DS-002", Status: model.StatusTodo, Priority: model.PriorityHigh, DueDate: "2999-01-01"},
	}
	b[model.StatusTodo] = todo
	done := b[model.StatusDone]
	done.Items = []model.Task{{ID: "DS-003", Status: model.StatusDone, DueDate: "2020-01-01"}}
	b[model.StatusDone] = done

	cols := Board(b, SortNone, FilterBy(model.PriorityHigh))
	if len(cols) != len(model.Statuses) {
		t.Fatalf("got %d columns", len(cols))
	}
	if cols[1].ID != model.StatusTodo || cols[1].Total != 2 || len(cols[1].Tasks) != 1 {
		t.Errorf("todo column = %+v", cols[1])
	}
	if cols[0].IsDroppable || !cols[1].IsDroppable {
		t.Error("droppable flags not carried through")
	}

	s := Summarize(b, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	if s != (Stats{Total: 3, Done: 1, Overdue: 1}) {
		t.Errorf("Summarize = %+v", s)
	}
}
