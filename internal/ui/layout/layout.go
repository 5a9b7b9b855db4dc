// Package layout draws the window chrome around the active screen.
package layout

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/ui/theme"
)

// The smallest window the TUI draws into.
const (
	MinWidth  = 80
	MinHeight = 24
)

// Screens below these content sizes use their compact variant.
const (
	compactWidth  = 100
	compactHeight = 24
)

// KeyHint is one footer entry, e.g. {"Esc", "Back"}.
type KeyHint struct {
	Key         string
	Description string
}

// HeaderStatus is the learner summary on the right of the header.
type HeaderStatus struct {
	Tier   string
	Streak int
	Due    int
}

// IsTooSmall reports whether the window is below MinWidth x MinHeight.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// Compact reports whether a screen with this content area should drop
// decoration.
func Compact(width, contentHeight int) bool {
	return width < compactWidth || contentHeight < compactHeight
}

// RenderMinSizeMessage asks the user to enlarge the window.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Text).
		Render(fmt.Sprintf("Terminal too small.\n\nNeed %d x %d, have %d x %d.", MinWidth, MinHeight, width, height))
}

var barStyle = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader draws the app name on the left, the screen trail in the
// middle, and status on the right.
func RenderHeader(trail string, st HeaderStatus, width int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	amber := lipgloss.NewStyle().Foreground(theme.Accent)

	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  kioku")
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(trail)

	var right []string
	if st.Tier != "" {
		right = append(right, lipgloss.NewStyle().Foreground(theme.Secondary).Render(st.Tier))
	}
	right = append(right, amber.Render(fmt.Sprintf("★ %d", st.Streak)))
	if st.Due > 0 {
		right = append(right, amber.Render(fmt.Sprintf("⟳ %d due", st.Due)))
	}
	status := strings.Join(right, dim.Render("   "))

	inner := max(width-4, 0)
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(status)
	gap1 := max((inner-mw)/2-lw, 1)
	gap2 := max(inner-lw-gap1-mw-rw, 1)

	return barStyle.Width(width).Render(left + strings.Repeat(" ", gap1) + mid + strings.Repeat(" ", gap2) + status)
}

// RenderFooter draws the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return barStyle.Width(width).Render("  " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, padding content to fill
// the window.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content = lipgloss.NewStyle().Width(width).Height(body).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

// Centered renders s centered across width in fg.
func Centered(s string, width int, fg color.Color) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(fg).Render(s)
}
