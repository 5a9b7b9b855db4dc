package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/ui/theme"
)

// ProgressBar is a labelled horizontal gauge. Percent is a ratio in [0, 1].
type ProgressBar struct {
	Label   string
	Percent float64
	Width   int
}

// NewProgressBar returns a bar that fits in width cells, label included.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, Width: width}
}

// SessionProgress is the bar shown while answering: question index+1 of
// total.
func SessionProgress(index, total, width int) ProgressBar {
	p := ProgressBar{Label: fmt.Sprintf("%d/%d", index+1, total), Width: width}
	if total > 0 {
		p.Percent = float64(index+1) / float64(total)
	}
	return p
}

func (p ProgressBar) View() string {
	label := ""
	if p.Label != "" {
		label = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	pct := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %3d%%", int(p.Percent*100)))

	cells := max(p.Width-lipgloss.Width(label)-lipgloss.Width(pct), 4)
	on := min(max(int(float64(cells)*p.Percent), 0), cells)

	return label +
		theme.ProgressFilled.Render(strings.Repeat(" ", on)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", cells-on)) +
		pct
}
