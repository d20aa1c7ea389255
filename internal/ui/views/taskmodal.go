package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/ui/theme"
)

type modalField int

const (
	fieldTitle modalField = iota
	fieldDescription
	fieldPriority
	fieldDueDate
	fieldAssignee
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Priority", "Due date", "Assignee"}

// TaskModal edits one task. Each field is committed when it loses focus
// or the modal closes.
type TaskModal struct {
	app    *app.App
	width  int
	height int

	visible  bool
	selected *model.Task
	focus    modalField

	// seq numbers commits; fieldSeq holds the last commit of each field
	seq      int
	fieldSeq [fieldCount]int

	title    textinput.Model
	desc     textarea.Model
	due      textinput.Model
	assignee textinput.Model
	priority model.Priority
}

// NewTaskModal creates a closed modal
func NewTaskModal(a *app.App) TaskModal {
	newInput := func(limit int) textinput.Model {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = limit
		return ti
	}

	ta := textarea.New()
	ta.ShowLineNumbers = false
	ta.Placeholder = "Add a description..."
	ta.CharLimit = 4000
	ta.SetHeight(5)

	due := newInput(10)
	due.Placeholder = model.DateLayout

	return TaskModal{
		app:      a,
		title:    newInput(256),
		desc:     ta,
		due:      due,
		assignee: newInput(64),
	}
}

// SetSize sets the modal dimensions
func (m TaskModal) SetSize(width, height int) TaskModal {
	m.width = width
	m.height = height
	w := m.innerWidth()
	m.title.Width = w
	m.due.Width = w
	m.assignee.Width = w
	m.desc.SetWidth(w)
	return m
}

func (m TaskModal) innerWidth() int {
	w := m.width/2 - 8
	if w < 30 {
		w = 30
	}
	return w
}

// Open shows the modal for t and pushes its fields into the editors
func (m TaskModal) Open(t model.Task) (TaskModal, tea.Cmd) {
	m.selected = &t
	m.visible = true
	m.load(t)
	cmd := m.setFocus(fieldTitle)
	return m, cmd
}

// Visible reports whether the modal is open
func (m TaskModal) Visible() bool {
	return m.visible
}

// Selected returns the task being edited, if any
func (m TaskModal) Selected() *model.Task {
	return m.selected
}

// Merge refreshes the selection with a commit result. Only the fields the
// commit patched are taken from the stored task, and a result is dropped
// when a later commit of the same field is already in flight.
func (m TaskModal) Merge(msg TaskCommittedMsg) TaskModal {
	if !msg.OK || m.selected == nil {
		return m
	}
	if msg.Seq < m.fieldSeq[patchedField(msg.Patch)] {
		return m
	}
	fresh := storedValues(msg.Patch, msg.Task).Apply(*m.selected)
	fresh.ID = msg.Task.ID
	m.selected = board.MergeSelection(m.selected, fresh)
	return m
}

// patchedField maps a single-field patch back to its editor
func patchedField(p board.Patch) modalField {
	switch {
	case p.Title != nil:
		return fieldTitle
	case p.Description != nil:
		return fieldDescription
	case p.Priority != nil:
		return fieldPriority
	case p.DueDate != nil:
		return fieldDueDate
	default:
		return fieldAssignee
	}
}

// storedValues returns a patch over the same fields as p holding t's values
func storedValues(p board.Patch, t model.Task) board.Patch {
	var out board.Patch
	if p.Title != nil {
		out.Title = &t.Title
	}
	if p.Description != nil {
		out.Description = &t.Description
	}
	if p.Priority != nil {
		out.Priority = &t.Priority
	}
	if p.DueDate != nil {
		out.DueDate = &t.DueDate
	}
	if p.Assignee != nil {
		out.Assignee = &t.Assignee
	}
	return out
}

func (m *TaskModal) load(t model.Task) {
	m.title.SetValue(t.Title)
	m.desc.SetValue(t.Description)
	m.due.SetValue(t.DueDate)
	m.assignee.SetValue(t.Assignee)
	m.priority = t.Priority
}

func (m *TaskModal) setFocus(f modalField) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.desc.Blur()
	m.due.Blur()
	m.assignee.Blur()

	switch f {
	case fieldTitle:
		return m.title.Focus()
	case fieldDescription:
		return m.desc.Focus()
	case fieldDueDate:
		return m.due.Focus()
	case fieldAssignee:
		return m.assignee.Focus()
	}
	return nil
}

// Update handles keys while the modal is open
func (m TaskModal) Update(msg tea.Msg) (TaskModal, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "ctrl+s":
			commit := m.commit()
			m.visible = false
			m.setFocus(fieldTitle)
			return m, commit
		case "tab":
			commit := m.commit()
			focus := m.setFocus((m.focus + 1) % fieldCount)
			return m, tea.Batch(commit, focus)
		case "shift+tab":
			commit := m.commit()
			focus := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, tea.Batch(commit, focus)
		}

		if m.focus == fieldPriority {
			switch key.String() {
			case " ", "l", "right", "enter":
				m.priority = m.priority.Next()
				cmd := m.commit()
				return m, cmd
			case "h", "left":
				m.priority = m.priority.Next().Next()
				cmd := m.commit()
				return m, cmd
			}
			return m, nil
		}
		if key.String() == "enter" && m.focus != fieldDescription {
			commit := m.commit()
			focus := m.setFocus((m.focus + 1) % fieldCount)
			return m, tea.Batch(commit, focus)
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldDescription:
		m.desc, cmd = m.desc.Update(msg)
	case fieldDueDate:
		m.due, cmd = m.due.Update(msg)
	case fieldAssignee:
		m.assignee, cmd = m.assignee.Update(msg)
	}
	return m, cmd
}

// commit builds a patch for the focused field when its value differs from
// the selection. Invalid values are reverted.
func (m *TaskModal) commit() tea.Cmd {
	if m.selected == nil {
		return nil
	}
	t := *m.selected
	var p board.Patch

	switch m.focus {
	case fieldTitle:
		v := strings.TrimSpace(m.title.Value())
		if v == "" {
			m.title.SetValue(t.Title)
			return failure(model.ErrEmptyTitle.Error())
		}
		if v != t.Title {
			p.Title = &v
		}
	case fieldDescription:
		if v := m.desc.Value(); v != t.Description {
			p.Description = &v
		}
	case fieldPriority:
		if m.priority != t.Priority {
			v := m.priority
			p.Priority = &v
		}
	case fieldDueDate:
		v := strings.TrimSpace(m.due.Value())
		if _, err := time.Parse(model.DateLayout, v); err != nil {
			m.due.SetValue(t.DueDate)
			return failure(model.ErrInvalidDueDate.Error())
		}
		if v != t.DueDate {
			p.DueDate = &v
		}
	case fieldAssignee:
		if v := strings.TrimSpace(m.assignee.Value()); v != t.Assignee {
			p.Assignee = &v
		}
	}

	if p.IsEmpty() {
		return nil
	}
	// optimistic: the commit result will confirm the merge
	merged := p.Apply(t)
	m.selected = &merged
	m.seq++
	m.fieldSeq[m.focus] = m.seq
	return updateCmd(m.app, t.ID, p, m.seq)
}

// View renders the modal centered on the screen
func (m TaskModal) View() string {
	if !m.visible || m.selected == nil {
		return ""
	}
	s := theme.Current.Styles
	t := theme.Current.Theme
	w := m.innerWidth()

	field := func(f modalField, body string) string {
		style := s.Input
		if m.focus == f {
			style = s.InputFocused
		}
		return s.Label.Render(fieldLabels[f]) + "\n" + style.Width(w).Render(body)
	}

	prio := lipgloss.NewStyle().Foreground(t.PriorityColor(m.priority)).Bold(true).Render(string(m.priority))
	if m.focus == fieldPriority {
		prio = "◂ " + prio + " ▸"
	}

	header := s.ModalTitle.Render(fmt.Sprintf("%s  %s", m.selected.ID, model.ColumnTitle(m.selected.Status)))
	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		field(fieldTitle, m.title.View()),
		field(fieldDescription, m.desc.View()),
		field(fieldPriority, prio),
		field(fieldDueDate, m.due.View()),
		field(fieldAssignee, m.assignee.View()),
		"",
		s.HelpKey.Render("tab")+s.HelpDesc.Render(" next field  ")+
			s.HelpKey.Render("esc")+s.HelpDesc.Render(" save and close"),
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s.Modal.Render(body))
}
