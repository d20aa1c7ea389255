package views

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/model"
)

// BoardChangedMsg carries the board after a transition. Changed is false
// when the transition was refused and the board is the previous one.
type BoardChangedMsg struct {
	Board   model.Board
	Changed bool
	Notice  string
}

// TaskCommittedMsg reports the stored task after a field edit. Seq is
// the modal's commit number, Patch the fields that commit changed.
type TaskCommittedMsg struct {
	Task  model.Task
	Patch board.Patch
	Seq   int
	OK    bool
}

// NoticeMsg asks the root model to show a status line message
type NoticeMsg struct {
	Text    string
	IsError bool
}

func notice(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

func failure(text string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Text: text, IsError: true} }
}

// moveCmd applies a drop through the app so the result is persisted
func moveCmd(a *app.App, d board.Drop, done string) tea.Cmd {
	return func() tea.Msg {
		b, ok := a.Move(context.Background(), d)
		if !ok {
			if d.Destination == nil {
				return BoardChangedMsg{Board: b, Notice: "Move cancelled"}
			}
			return BoardChangedMsg{Board: b, Notice: "Backlog and Review are locked"}
		}
		return BoardChangedMsg{Board: b, Changed: true, Notice: done}
	}
}

func deleteCmd(a *app.App, id string) tea.Cmd {
	return func() tea.Msg {
		ok := a.Delete(context.Background(), id)
		msg := BoardChangedMsg{Board: a.Current(), Changed: ok}
		if ok {
			msg.Notice = "Deleted " + id
		}
		return msg
	}
}

func updateCmd(a *app.App, id string, p board.Patch, seq int) tea.Cmd {
	return func() tea.Msg {
		t, ok := a.Update(context.Background(), id, p)
		return TaskCommittedMsg{Task: t, Patch: p, Seq: seq, OK: ok}
	}
}

func createCmd(a *app.App, in model.TaskInput) tea.Cmd {
	return func() tea.Msg {
		t, err := a.Create(context.Background(), in)
		if err != nil {
			return NoticeMsg{Text: err.Error(), IsError: true}
		}
		return BoardChangedMsg{Board: a.Current(), Changed: true, Notice: "Created " + t.ID}
	}
}
