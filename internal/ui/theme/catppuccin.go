package theme

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha theme
// https://github.com/catppuccin/catppuccin
var Catppuccin = Theme{
	Name: "catppuccin",

	Background: lipgloss.Color("#1E1E2E"), // Base
	Foreground: lipgloss.Color("#CDD6F4"), // Text
	Subtle:     lipgloss.Color("#6C7086"), // Overlay0
	Highlight:  lipgloss.Color("#313244"), // Surface0
	Border:     lipgloss.Color("#45475A"), // Surface1

	Primary:   lipgloss.Color("#89B4FA"), // Blue
	Secondary: lipgloss.Color("#CBA6F7"), // Mauve

	Success: lipgloss.Color("#A6E3A1"),
	Warning: lipgloss.Color("#F9E2AF"),
	Error:   lipgloss.Color("#F38BA8"),

	PriorityLow:    lipgloss.Color("#A6E3A1"),
	PriorityMedium: lipgloss.Color("#F9E2AF"),
	PriorityHigh:   lipgloss.Color("#F38BA8"),

	ColumnBacklog:    lipgloss.Color("#74C7EC"), // Sapphire
	ColumnTodo:       lipgloss.Color("#F9E2AF"),
	ColumnInProgress: lipgloss.Color("#89B4FA"),
	ColumnReview:     lipgloss.Color("#CBA6F7"),
	ColumnDone:       lipgloss.Color("#A6E3A1"),

	Grab: lipgloss.Color("#FAB387"), // Peach
}
