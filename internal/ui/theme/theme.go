// Package theme holds the colors and lipgloss styles shared by the TUI and
// the CLI subcommands.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette. Low-glare slate background with one warm accent.
var (
	Primary   = lipgloss.Color("#6366F1")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

func fg(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	Title = fg(Primary).Bold(true).Align(lipgloss.Center)
	Hint  = fg(TextDim).Italic(true)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)
	Flagged    = fg(Accent)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	// CLI output.
	Heading = fg(Primary).Bold(true)
	Label   = fg(TextDim)
	Value   = fg(Text).Bold(true)
)
