package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for due dates
const DateLayout = "2006-01-02"

// IDPrefix is the prefix shared by every task id
const IDPrefix = "DS-"

var (
	ErrEmptyTitle     = errors.New("task title is required")
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
)

// Status is the workflow stage of a task. It always equals the id of the
// column that holds the task.
type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists every status in board display order
var Statuses = []Status{
	StatusBacklog,
	StatusTodo,
	StatusInProgress,
	StatusReview,
	StatusDone,
}

// ParseStatus parses a status name. "in-progress" and "in_progress" are
// accepted as spellings of inProgress.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "backlog":
		return StatusBacklog, nil
	case "todo":
		return StatusTodo, nil
	case "inprogress", "in-progress", "in_progress":
		return StatusInProgress, nil
	case "review":
		return StatusReview, nil
	case "done":
		return StatusDone, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the board statuses
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists priorities from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority parses a priority name case-insensitively
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "hi", "h":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// Rank orders priorities for sorting: High sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Next returns the priority after p, wrapping from High to Low
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// Task is a single card on the board
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
	Assignee    string   `json:"assignee"`
}

// Due parses the task due date
func (t *Task) Due() (time.Time, bool) {
	d, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsOverdue returns true if the task is past its due date and not done
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status == StatusDone {
		return false
	}
	due, ok := t.Due()
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

// Ordinal returns the numeric part of the task id
func (t *Task) Ordinal() (int, bool) {
	return ParseOrdinal(t.ID)
}

// FormatID renders an ordinal as a DS-### id
func FormatID(n int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, n)
}

// ParseOrdinal extracts the ordinal from a DS-### id
func ParseOrdinal(id string) (int, bool) {
	if !strings.HasPrefix(id, IDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(id, IDPrefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// TaskInput carries user supplied fields for a new task. Zero values take
// the documented defaults.
type TaskInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     string
	Assignee    string
}

// TaskDefaults are the values used for fields a TaskInput leaves empty
type TaskDefaults struct {
	Assignee string
	Now      time.Time
}

// NewTask validates input and builds a todo task with the given id.
// Input.Status is ignored: new tasks always start in todo.
func NewTask(id string, in TaskInput, def TaskDefaults) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	} else if p, err := ParsePriority(string(priority)); err == nil {
		priority = p
	} else {
		return Task{}, err
	}

	due := strings.TrimSpace(in.DueDate)
	if due == "" {
		now := def.Now
		if now.IsZero() {
			now = time.Now()
		}
		due = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, due); err != nil {
		return Task{}, ErrInvalidDueDate
	}

	assignee := strings.TrimSpace(in.Assignee)
	if assignee == "" {
		assignee = def.Assignee
	}

	return Task{
		ID:          id,
		Title:       title,
		Description: in.Description,
		Status:      StatusTodo,
		Priority:    priority,
		DueDate:     due,
		Assignee:    assignee,
	}, nil
}
