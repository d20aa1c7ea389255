package ui

import (
	"github.com/dori/dsboard/internal/model"
)

// Messages for inter-component communication

// BoardHydratedMsg carries the stored board once it has been read
type BoardHydratedMsg struct {
	Board model.Board
}

// SeedResultMsg reports the outcome of the first-run seed import
type SeedResultMsg struct {
	Count int
	Err   error
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}
