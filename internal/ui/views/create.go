package views

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/ui/theme"
)

const (
	createTitle = iota
	createPriority
	createDue
	createAssignee
	createFields
)

// CreateDialog collects the fields of a new task. It stays open until the
// input is valid or the user cancels.
type CreateDialog struct {
	app    *app.App
	width  int
	height int

	visible bool
	focus   int
	err     string

	title    textinput.Model
	due      textinput.Model
	assignee textinput.Model
	priority model.Priority
}

// NewCreateDialog creates a closed dialog
func NewCreateDialog(a *app.App) CreateDialog {
	newInput := func(placeholder string, limit int) textinput.Model {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		return ti
	}
	return CreateDialog{
		app:      a,
		title:    newInput("What needs doing?", 256),
		due:      newInput("today ("+model.DateLayout+")", 10),
		assignee: newInput("", 64),
		priority: model.PriorityMedium,
	}
}

// SetSize sets the dialog dimensions
func (d CreateDialog) SetSize(width, height int) CreateDialog {
	d.width = width
	d.height = height
	w := max(30, width/2-8)
	d.title.Width = w
	d.due.Width = w
	d.assignee.Width = w
	return d
}

// Open clears the fields and shows the dialog
func (d CreateDialog) Open() CreateDialog {
	d.visible = true
	d.err = ""
	d.priority = model.PriorityMedium
	d.title.SetValue("")
	d.due.SetValue("")
	d.assignee.SetValue("")
	d.assignee.Placeholder = d.app.Defaults().Assignee
	d.focus = createTitle
	return d
}

// Focus focuses the current field
func (d *CreateDialog) Focus() tea.Cmd {
	d.title.Blur()
	d.due.Blur()
	d.assignee.Blur()
	switch d.focus {
	case createTitle:
		return d.title.Focus()
	case createDue:
		return d.due.Focus()
	case createAssignee:
		return d.assignee.Focus()
	}
	return nil
}

// Visible reports whether the dialog is open
func (d CreateDialog) Visible() bool {
	return d.visible
}

// Input returns the task input built from the fields
func (d CreateDialog) Input() model.TaskInput {
	return model.TaskInput{
		Title:    strings.TrimSpace(d.title.Value()),
		Priority: d.priority,
		DueDate:  strings.TrimSpace(d.due.Value()),
		Assignee: strings.TrimSpace(d.assignee.Value()),
	}
}

// Update handles keys while the dialog is open
func (d CreateDialog) Update(msg tea.Msg) (CreateDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			d.visible = false
			return d, nil
		case "ctrl+s":
			return d.submit()
		case "enter":
			if d.focus == createAssignee {
				return d.submit()
			}
			d.focus++
			cmd := d.Focus()
			return d, cmd
		case "tab", "down":
			d.focus = (d.focus + 1) % createFields
			cmd := d.Focus()
			return d, cmd
		case "shift+tab", "up":
			d.focus = (d.focus + createFields - 1) % createFields
			cmd := d.Focus()
			return d, cmd
		}

		if d.focus == createPriority {
			switch key.String() {
			case " ", "l", "right":
				d.priority = d.priority.Next()
			case "h", "left":
				d.priority = d.priority.Next().Next()
			}
			return d, nil
		}
	}

	var cmd tea.Cmd
	switch d.focus {
	case createTitle:
		d.title, cmd = d.title.Update(msg)
	case createDue:
		d.due, cmd = d.due.Update(msg)
	case createAssignee:
		d.assignee, cmd = d.assignee.Update(msg)
	}
	return d, cmd
}

func (d CreateDialog) submit() (CreateDialog, tea.Cmd) {
	in := d.Input()
	if _, err := model.NewTask("", in, d.app.Defaults()); err != nil {
		d.err = err.Error()
		if errors.Is(err, model.ErrEmptyTitle) {
			d.focus = createTitle
		} else if errors.Is(err, model.ErrInvalidDueDate) {
			d.focus = createDue
		}
		cmd := d.Focus()
		return d, cmd
	}
	d.visible = false
	d.err = ""
	return d, createCmd(d.app, in)
}

// View renders the dialog centered on the screen
func (d CreateDialog) View() string {
	if !d.visible {
		return ""
	}
	s := theme.Current.Styles
	t := theme.Current.Theme
	w := max(30, d.width/2-8)

	field := func(i int, label, body string) string {
		style := s.Input
		if d.focus == i {
			style = s.InputFocused
		}
		return s.Label.Render(label) + "\n" + style.Width(w).Render(body)
	}

	prio := lipgloss.NewStyle().Foreground(t.PriorityColor(d.priority)).Bold(true).Render(string(d.priority))
	if d.focus == createPriority {
		prio = "◂ " + prio + " ▸"
	}

	parts := []string{
		s.ModalTitle.Render("New task"),
		field(createTitle, "Title", d.title.View()),
		field(createPriority, "Priority", prio),
		field(createDue, "Due date", d.due.View()),
		field(createAssignee, "Assignee", d.assignee.View()),
	}
	if d.err != "" {
		parts = append(parts, s.StatusError.Render(d.err))
	}
	parts = append(parts, "",
		s.HelpKey.Render("enter")+s.HelpDesc.Render(" next/create  ")+
			s.HelpKey.Render("esc")+s.HelpDesc.Render(" cancel"))

	body := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, s.Modal.Render(body))
}
