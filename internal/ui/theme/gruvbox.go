package theme

import "github.com/charmbracelet/lipgloss"

// Gruvbox dark theme
// https://github.com/morhetz/gruvbox
var Gruvbox = Theme{
	Name: "gruvbox",

	Background: lipgloss.Color("#282828"),
	Foreground: lipgloss.Color("#EBDBB2"),
	Subtle:     lipgloss.Color("#928374"),
	Highlight:  lipgloss.Color("#3C3836"),
	Border:     lipgloss.Color("#504945"),

	Primary:   lipgloss.Color("#83A598"), // Aqua
	Secondary: lipgloss.Color("#8EC07C"),

	Success: lipgloss.Color("#B8BB26"),
	Warning: lipgloss.Color("#FABD2F"),
	Error:   lipgloss.Color("#FB4934"),

	PriorityLow:    lipgloss.Color("#B8BB26"),
	PriorityMedium: lipgloss.Color("#FABD2F"),
	PriorityHigh:   lipgloss.Color("#FB4934"),

	ColumnBacklog:    lipgloss.Color("#928374"),
	ColumnTodo:       lipgloss.Color("#FABD2F"),
	ColumnInProgress: lipgloss.Color("#83A598"),
	ColumnReview:     lipgloss.Color("#D3869B"), // Purple
	ColumnDone:       lipgloss.Color("#B8BB26"),

	Grab: lipgloss.Color("#FE8019"), // Orange
}
