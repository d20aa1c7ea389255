// Package ui is the bubbletea front end of the board.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/ui/theme"
	"github.com/dori/dsboard/internal/ui/views"
	"github.com/dori/dsboard/internal/view"
)

// RootModel is the main application model. It owns hydration and the
// first-run seed import, and delegates the board itself to BoardView.
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	board       views.BoardView
	helpVisible bool
	seeding     bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model and applies the configured theme
func NewRootModel(application *app.App) RootModel {
	if t, ok := theme.ByName(application.Config.Theme); ok {
		theme.SetTheme(t)
	}

	h := help.New()
	h.ShowAll = true

	return RootModel{
		app:   application,
		keys:  DefaultKeyMap(),
		help:  h,
		board: views.NewBoardView(application),
	}
}

// Init starts hydration
func (m RootModel) Init() tea.Cmd {
	return m.hydrate()
}

func (m RootModel) hydrate() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		return BoardHydratedMsg{Board: a.Hydrate(context.Background())}
	}
}

// seed runs the import with the configured wait. A failure leaves the
// board empty and is only reported.
func (m RootModel) seed() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Seed.Timeout.Duration)
		defer cancel()
		n, err := a.Seed(ctx)
		return SeedResultMsg{Count: n, Err: err}
	}
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header (1 line) and footer (3 lines)
		m.board = m.board.SetSize(m.width, m.height-4)
		return m, nil

	case BoardHydratedMsg:
		m.board = m.board.SetBoard(msg.Board, true)
		if m.app.NeedsSeed() {
			m.seeding = true
			m.statusMsg = "Fetching seed tasks..."
			return m, m.seed()
		}
		return m, nil

	case SeedResultMsg:
		m.seeding = false
		m.board = m.board.SetBoard(m.app.Current(), true)
		if msg.Err != nil {
			m.errorMsg = "Seed failed: " + msg.Err.Error()
			return m, nil
		}
		if msg.Count > 0 {
			m.statusMsg = fmt.Sprintf("Imported %d tasks", msg.Count)
		}
		return m, nil

	case views.NoticeMsg:
		if msg.IsError {
			m.errorMsg = msg.Text
		} else {
			m.statusMsg = msg.Text
		}
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		m.app.Logger.Debug("theme changed", "theme", msg.ThemeName)
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := m.board.IsInputMode()

		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			return m, cycleTheme()
		}

		if m.helpVisible {
			if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
				m.helpVisible = false
			}
			return m, nil
		}

		if !isInputMode && m.board.Mode() == views.BoardModeNormal && key.Matches(msg, m.keys.Help) {
			m.helpVisible = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.board, cmd = m.board.Update(msg)
	return m, cmd
}

// cycleTheme switches to the next theme
func cycleTheme() tea.Cmd {
	next := theme.Next()
	theme.SetTheme(next)
	return func() tea.Msg {
		return ThemeChangedMsg{ThemeName: next.Name}
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		content = m.board.View()
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("Design Sprint")

	subtle := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1)

	state := "loading"
	switch {
	case m.seeding:
		state = "seeding"
	case m.app.Hydrated():
		s := view.Summarize(m.app.Current(), m.app.Defaults().Now)
		state = fmt.Sprintf("%d tasks, %d done", s.Total, s.Done)
		if s.Overdue > 0 {
			state += ", " + styles.Overdue.Render(fmt.Sprintf("%d overdue", s.Overdue))
		}
	}

	projection := fmt.Sprintf("sort: %s  filter: %s", m.board.SortBy(), m.board.Filter())

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, subtle.Render("["+state+"]"))
	rightSide := subtle.Render(projection + "  theme: " + t.Name)

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the status line and key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	// Helper to format key hints
	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = styles.StatusError.Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = styles.StatusValue.Render(m.statusMsg)
	}

	var line1, line2 string
	switch {
	case m.helpVisible:
		line1 = key("?/esc", "close help")
	case m.board.Mode() == views.BoardModeGrab:
		line1 = key("h/l", "column") + sep +
			key("j/k", "position") + sep +
			key("enter", "drop") + sep +
			key("esc", "cancel")
	case m.board.Mode() == views.BoardModeConfirmDelete:
		line1 = key("y", "delete") + sep + key("n", "keep")
	case m.board.IsInputMode():
		line1 = key("tab", "next field") + sep +
			key("enter", "confirm") + sep +
			key("esc", "close")
	default:
		line1 = key("h/l", "columns") + sep +
			key("j/k", "cards") + sep +
			key("space", "grab") + sep +
			key("H/L", "move") + sep +
			key("J/K", "reorder") + sep +
			key("enter", "open")
		line2 = key("a", "add") + sep +
			key("d", "delete") + sep +
			key("s", "sort") + sep +
			key("f", "filter") + sep +
			key("ctrl+t", "theme") + sep +
			key("?", "help") + sep +
			key("q", "quit")
	}

	return strings.Join([]string{statusLine, styles.Footer.Render(line1), styles.Footer.Render(line2)}, "\n")
}

// renderHelp renders the full key reference
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder
	b.WriteString(titleStyle.Render("dsboard Help"))
	b.WriteString("\n\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Columns"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Backlog and Review are locked: cards there cannot be grabbed or dropped into."))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Sort and filter change the display only; J/K reorder needs sort set to none."))
	b.WriteString("\n\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}
