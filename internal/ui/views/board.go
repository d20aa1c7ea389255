package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/dsboard/internal/app"
	"github.com/dori/dsboard/internal/board"
	"github.com/dori/dsboard/internal/model"
	"github.com/dori/dsboard/internal/ui/theme"
	"github.com/dori/dsboard/internal/view"
)

// BoardMode represents the current input mode
type BoardMode int

const (
	BoardModeNormal BoardMode = iota
	BoardModeGrab
	BoardModeConfirmDelete
	BoardModeDetail
	BoardModeCreate
)

// grab tracks a card picked up with space. source holds the stored index,
// slot is a position in the projected target column.
type grab struct {
	task   model.Task
	source board.Location
	col    int
	slot   int
}

// BoardView renders the five columns and drives grab and drop
type BoardView struct {
	app    *app.App
	width  int
	height int
	now    func() time.Time

	board    model.Board
	hydrated bool

	sortBy view.SortBy
	filter view.Filter

	// Navigation state over projected columns
	col    int
	row    int
	scroll [5]int

	mode     BoardMode
	grabbed  *grab
	deleteID string

	// id of a card whose move is in flight; the cursor follows it
	follow string

	detail TaskModal
	create CreateDialog
}

// NewBoardView creates the board view
func NewBoardView(a *app.App) BoardView {
	return BoardView{
		app:    a,
		now:    time.Now,
		board:  a.Current(),
		col:    1,
		detail: NewTaskModal(a),
		create: NewCreateDialog(a),
	}
}

// SetSize sets the view dimensions
func (v BoardView) SetSize(width, height int) BoardView {
	v.width = width
	v.height = height
	v.detail = v.detail.SetSize(width, height)
	v.create = v.create.SetSize(width, height)
	v.clampCursor()
	return v
}

// SetBoard replaces the displayed board
func (v BoardView) SetBoard(b model.Board, hydrated bool) BoardView {
	v.board = b
	v.hydrated = hydrated
	v.clampCursor()
	return v
}

// SortBy returns the active sort
func (v BoardView) SortBy() view.SortBy { return v.sortBy }

// Filter returns the active priority filter
func (v BoardView) Filter() view.Filter { return v.filter }

// Mode returns the current input mode
func (v BoardView) Mode() BoardMode { return v.mode }

// Init initializes the board view
func (v BoardView) Init() tea.Cmd {
	return nil
}

// Update handles messages for the board view
func (v BoardView) Update(msg tea.Msg) (BoardView, tea.Cmd) {
	switch msg := msg.(type) {
	case BoardChangedMsg:
		v.board = msg.Board
		if msg.Changed && v.follow != "" {
			v.followTask(v.follow)
		}
		v.follow = ""
		v.clampCursor()
		if msg.Notice != "" {
			return v, notice(msg.Notice)
		}
		return v, nil

	case TaskCommittedMsg:
		// results of concurrent commits can land in any order
		v.board = v.app.Current()
		v.detail = v.detail.Merge(msg)
		return v, nil

	case tea.KeyMsg:
		switch v.mode {
		case BoardModeGrab:
			return v.handleGrabMode(msg)
		case BoardModeConfirmDelete:
			return v.handleConfirmDeleteMode(msg)
		case BoardModeDetail:
			return v.handleDetailMode(msg)
		case BoardModeCreate:
			return v.handleCreateMode(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	switch v.mode {
	case BoardModeDetail:
		var cmd tea.Cmd
		v.detail, cmd = v.detail.Update(msg)
		return v, cmd
	case BoardModeCreate:
		var cmd tea.Cmd
		v.create, cmd = v.create.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v BoardView) handleNormalMode(msg tea.KeyMsg) (BoardView, tea.Cmd) {
	if !v.hydrated {
		return v, nil
	}
	cols := v.columns()

	switch msg.String() {
	case "h", "left":
		if v.col > 0 {
			v.col--
			v.clampCursor()
		}
	case "l", "right":
		if v.col < len(cols)-1 {
			v.col++
			v.clampCursor()
		}
	case "j", "down":
		if v.row < len(cols[v.col].Tasks)-1 {
			v.row++
			v.ensureCursorVisible()
		}
	case "k", "up":
		if v.row > 0 {
			v.row--
			v.ensureCursorVisible()
		}
	case "g", "home":
		v.row = 0
		v.ensureCursorVisible()
	case "G", "end":
		if n := len(cols[v.col].Tasks); n > 0 {
			v.row = n - 1
		}
		v.ensureCursorVisible()

	case " ":
		return v.startGrab(cols)
	case "H", "shift+left":
		cmd := v.quickMove(cols, -1)
		return v, cmd
	case "L", "shift+right":
		cmd := v.quickMove(cols, 1)
		return v, cmd
	case "K", "shift+up":
		cmd := v.reorder(cols, -1)
		return v, cmd
	case "J", "shift+down":
		cmd := v.reorder(cols, 1)
		return v, cmd

	case "s":
		v.sortBy = v.sortBy.Next()
		v.clampCursor()
		return v, notice("Sort: " + v.sortBy.String())
	case "f":
		v.filter = v.filter.Next()
		v.clampCursor()
		return v, notice("Filter: " + v.filter.String())

	case "a", "n":
		v.create = v.create.Open()
		v.mode = BoardModeCreate
		cmd := v.create.Focus()
		return v, cmd
	case "enter", "e":
		if t, ok := v.current(cols); ok {
			var cmd tea.Cmd
			v.detail, cmd = v.detail.Open(t)
			v.mode = BoardModeDetail
			return v, cmd
		}
	case "d", "x":
		if t, ok := v.current(cols); ok {
			v.deleteID = t.ID
			v.mode = BoardModeConfirmDelete
		}
	}
	return v, nil
}

func (v BoardView) startGrab(cols []view.Column) (BoardView, tea.Cmd) {
	t, ok := v.current(cols)
	if !ok {
		return v, nil
	}
	col := cols[v.col]
	if !col.IsDroppable {
		return v, failure(col.Title + " is locked")
	}
	src := view.StoredIndex(v.board[col.ID].Items, col.Tasks, v.row)
	v.grabbed = &grab{
		task:   t,
		source: board.Location{Column: col.ID, Index: src},
		col:    v.col,
		slot:   v.row,
	}
	v.mode = BoardModeGrab
	return v, notice("Grabbed " + t.ID + ": move with h/j/k/l, enter to drop, esc to cancel")
}

func (v BoardView) handleGrabMode(msg tea.KeyMsg) (BoardView, tea.Cmd) {
	g := v.grabbed
	cols := v.columns()

	switch msg.String() {
	case "h", "left":
		if g.col > 0 {
			g.col--
			g.slot = min(g.slot, len(cols[g.col].Tasks))
		}
	case "l", "right":
		if g.col < len(cols)-1 {
			g.col++
			g.slot = min(g.slot, len(cols[g.col].Tasks))
		}
	case "k", "up":
		if g.slot > 0 {
			g.slot--
		}
	case "j", "down":
		if g.slot < len(cols[g.col].Tasks) {
			g.slot++
		}
	case "enter", " ":
		drop := dropFor(v.board, cols, g)
		v.grabbed = nil
		v.mode = BoardModeNormal
		v.follow = g.task.ID
		return v, moveCmd(v.app, drop, fmt.Sprintf("Moved %s to %s", g.task.ID, cols[g.col].Title))
	case "esc":
		v.grabbed = nil
		v.mode = BoardModeNormal
		return v, moveCmd(v.app, board.Drop{Source: g.source}, "")
	}
	return v, nil
}

// dropFor converts a grab over projected columns into a drop addressed by
// stored indices. Within one column the slot is corrected for the splice
// out of the source.
func dropFor(b model.Board, cols []view.Column, g *grab) board.Drop {
	target := cols[g.col]
	idx := view.StoredIndex(b[target.ID].Items, target.Tasks, g.slot)
	if idx < 0 {
		idx = len(b[target.ID].Items)
	}
	if target.ID == g.source.Column && idx > g.source.Index {
		idx--
	}
	return board.Drop{
		Source:      g.source,
		Destination: &board.Location{Column: target.ID, Index: idx},
	}
}

// quickMove sends the current card to the end of the adjacent column
func (v *BoardView) quickMove(cols []view.Column, dir int) tea.Cmd {
	t, ok := v.current(cols)
	if !ok {
		return nil
	}
	dst := v.col + dir
	if dst < 0 || dst >= len(cols) {
		return nil
	}
	src := cols[v.col]
	drop := board.Drop{
		Source:      board.Location{Column: src.ID, Index: view.StoredIndex(v.board[src.ID].Items, src.Tasks, v.row)},
		Destination: &board.Location{Column: cols[dst].ID, Index: len(v.board[cols[dst].ID].Items)},
	}
	v.follow = t.ID
	return moveCmd(v.app, drop, fmt.Sprintf("Moved %s to %s", t.ID, cols[dst].Title))
}

// reorder swaps the current card with its projected neighbour
func (v *BoardView) reorder(cols []view.Column, dir int) tea.Cmd {
	if v.sortBy != view.SortNone {
		return failure("Clear the sort (s) to reorder")
	}
	t, ok := v.current(cols)
	if !ok {
		return nil
	}
	col := cols[v.col]
	next := v.row + dir
	if next < 0 || next >= len(col.Tasks) {
		return nil
	}
	stored := v.board[col.ID].Items
	drop := board.Drop{
		Source:      board.Location{Column: col.ID, Index: view.StoredIndex(stored, col.Tasks, v.row)},
		Destination: &board.Location{Column: col.ID, Index: view.StoredIndex(stored, col.Tasks, next)},
	}
	v.follow = t.ID
	return moveCmd(v.app, drop, "Reordered "+t.ID)
}

func (v BoardView) handleConfirmDeleteMode(msg tea.KeyMsg) (BoardView, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteID
		v.deleteID = ""
		v.mode = BoardModeNormal
		return v, deleteCmd(v.app, id)
	case "n", "N", "esc":
		v.deleteID = ""
		v.mode = BoardModeNormal
	}
	return v, nil
}

func (v BoardView) handleDetailMode(msg tea.KeyMsg) (BoardView, tea.Cmd) {
	var cmd tea.Cmd
	v.detail, cmd = v.detail.Update(msg)
	if !v.detail.Visible() {
		v.mode = BoardModeNormal
	}
	return v, cmd
}

func (v BoardView) handleCreateMode(msg tea.KeyMsg) (BoardView, tea.Cmd) {
	var cmd tea.Cmd
	v.create, cmd = v.create.Update(msg)
	if !v.create.Visible() {
		v.mode = BoardModeNormal
	}
	return v, cmd
}

// columns projects the stored board through the active sort and filter
func (v BoardView) columns() []view.Column {
	return view.Board(v.board, v.sortBy, v.filter)
}

func (v BoardView) current(cols []view.Column) (model.Task, bool) {
	if v.col < 0 || v.col >= len(cols) {
		return model.Task{}, false
	}
	tasks := cols[v.col].Tasks
	if v.row < 0 || v.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[v.row], true
}

// followTask puts the cursor on the task with the given id
func (v *BoardView) followTask(id string) {
	for ci, col := range v.columns() {
		for ri, t := range col.Tasks {
			if t.ID == id {
				v.col, v.row = ci, ri
				return
			}
		}
	}
}

func (v *BoardView) clampCursor() {
	cols := v.columns()
	if v.col >= len(cols) {
		v.col = len(cols) - 1
	}
	if v.col < 0 {
		v.col = 0
	}
	n := len(cols[v.col].Tasks)
	if v.row >= n {
		v.row = n - 1
	}
	if v.row < 0 {
		v.row = 0
	}
	v.ensureCursorVisible()
}

// ensureCursorVisible adjusts scroll to keep cursor in view
func (v *BoardView) ensureCursorVisible() {
	visible := v.visibleItemCount()
	if v.row >= v.scroll[v.col]+visible {
		v.scroll[v.col] = v.row - visible + 1
	}
	if v.row < v.scroll[v.col] {
		v.scroll[v.col] = v.row
	}
}

// visibleItemCount returns how many cards fit in a column. Each card takes
// two lines; border, title and scroll indicators take six.
func (v *BoardView) visibleItemCount() int {
	n := (v.height - 6) / 2
	if n < 1 {
		return 1
	}
	return n
}

// IsInputMode returns true while a text field owns the keyboard
func (v BoardView) IsInputMode() bool {
	return v.mode == BoardModeDetail || v.mode == BoardModeCreate
}

// View renders the board
func (v BoardView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}
	if !v.hydrated {
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center,
			theme.Current.Styles.Placeholder.Render("Loading board..."))
	}

	switch v.mode {
	case BoardModeDetail:
		return v.detail.View()
	case BoardModeCreate:
		return v.create.View()
	}

	out := v.renderColumns()
	if v.mode == BoardModeConfirmDelete {
		s := theme.Current.Styles
		prompt := s.Modal.Render(
			s.ModalTitle.Render("Delete task") + "\n" +
				fmt.Sprintf("Delete %s? ", v.deleteID) +
				s.HelpKey.Render("y") + s.HelpDesc.Render(" yes  ") +
				s.HelpKey.Render("n") + s.HelpDesc.Render(" no"))
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, prompt)
	}
	return out
}

func (v BoardView) renderColumns() string {
	t := theme.Current.Theme
	s := theme.Current.Styles
	cols := v.columns()

	// Responsive layout: fewer columns when narrow, centered on the cursor
	focus := v.col
	if v.grabbed != nil {
		focus = v.grabbed.col
	}
	numVisible := len(cols)
	if v.width < 110 {
		numVisible = max(1, min(len(cols), v.width/24))
	}
	start := focus - numVisible/2
	start = max(0, min(start, len(cols)-numVisible))
	end := start + numVisible

	colWidth := v.width/numVisible - 2
	if colWidth < 18 {
		colWidth = 18
	}
	cardWidth := colWidth - 2
	visible := v.visibleItemCount()
	now := v.now()

	var rendered []string
	for i := start; i < end; i++ {
		col := cols[i]
		active := i == focus

		title := lipgloss.NewStyle().Foreground(t.ColumnColor(col.ID)).Render(
			fmt.Sprintf("%s (%d/%d)", col.Title, len(col.Tasks), col.Total))
		if !col.IsDroppable {
			title += " " + s.ColumnLocked.Render("locked")
		}
		lines := []string{s.ColumnTitle.Render(title)}

		scroll := v.scroll[i]
		if v.grabbed != nil && active {
			scroll = max(0, v.grabbed.slot-visible+1)
		}
		if scroll > 0 {
			lines = append(lines, s.Placeholder.Width(cardWidth).Align(lipgloss.Center).
				Render(fmt.Sprintf("↑ %d more", scroll)))
		}

		last := min(len(col.Tasks), scroll+visible)
		for j := scroll; j < last; j++ {
			if v.grabbed != nil && active && j == v.grabbed.slot {
				lines = append(lines, s.DropMarker.Render("▸ drop here"))
			}
			lines = append(lines, v.renderCard(col.Tasks[j], cardWidth, active && v.grabbed == nil && j == v.row, now))
		}
		if v.grabbed != nil && active && v.grabbed.slot >= last {
			lines = append(lines, s.DropMarker.Render("▸ drop here"))
		}
		if remaining := len(col.Tasks) - last; remaining > 0 {
			lines = append(lines, s.Placeholder.Width(cardWidth).Align(lipgloss.Center).
				Render(fmt.Sprintf("↓ %d more", remaining)))
		}
		if len(col.Tasks) == 0 && v.grabbed == nil {
			lines = append(lines, s.Placeholder.Render("empty"))
		}

		style := s.Column
		if active {
			style = s.ColumnFocused
			if v.grabbed != nil {
				style = style.BorderForeground(t.Grab)
			}
		}
		rendered = append(rendered, style.Width(colWidth).Height(v.height-2).Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v BoardView) renderCard(task model.Task, width int, selected bool, now time.Time) string {
	t := theme.Current.Theme
	s := theme.Current.Styles

	style := s.Card
	if selected {
		style = s.CardSelected
	}
	if v.grabbed != nil && task.ID == v.grabbed.task.ID {
		style = s.CardGrabbed
	}

	mark := lipgloss.NewStyle().Foreground(t.PriorityColor(task.Priority)).Render("●")
	title := truncate(task.Title, width-4)
	head := style.Width(width).Render(mark + " " + title)

	due := task.DueDate
	if task.IsOverdue(now) {
		due = s.Overdue.Render(due + " overdue")
	}
	meta := s.CardMeta.Width(width).Render(fmt.Sprintf("%s · %s · %s", task.ID, task.Assignee, due))
	return head + "\n" + meta
}

// truncate shortens s to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
