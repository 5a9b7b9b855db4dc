package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/ui/layout"
	"github.com/abhisek/kioku/internal/ui/theme"
)

const titleFull = `█▄▀ █ █▀█ █▄▀ █ █
█ █ █ █▄█ █ █ █▄█`

const titleCompact = "K · I · O · K · U"

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.Compact(width, height)
	cw := contentWidth(width)

	sections := []string{
		renderTitle(cw, compact),
		h.renderStatsBar(cw),
	}

	switch h.stage {
	case stageCategory:
		sections = append(sections, renderBlock("Choose a category", h.categories.View(), cw))
	case stageSearch:
		sections = append(sections, renderBlock("Search questions", h.search.View(), cw))
	case stageResume:
		body := fmt.Sprintf("A %s session is saved at question %d of %d (%d/%d correct).\n\n[R] Resume    [N] Start over",
			h.pending.Mode, h.saved.CurrentIndex+1, h.saved.Len(), h.saved.SessionCorrect, h.saved.SessionTotal)
		sections = append(sections, renderBlock("Continue where you left off?", body, cw))
	default:
		sections = append(sections, renderBlock("", h.menu.View(), cw))
	}

	if h.notice != "" {
		sections = append(sections, layout.Centered(h.notice, cw, theme.Accent))
	}
	if !h.eng.Analyzer.Enabled() && !compact {
		sections = append(sections, layout.Centered("Reasoning critiques run offline. Set an LLM API key for detailed feedback.", cw, theme.TextDim))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(strings.Join(sections, "\n\n"))
}

func renderTitle(cw int, compact bool) string {
	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(theme.Title.Render(title))
}

// renderStatsBar renders the learner overview in a bordered box.
func (h *HomeScreen) renderStatsBar(cw int) string {
	agg := h.eng.Stats.Aggregate()
	tier := h.eng.Tier()

	tierStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	accStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	streakStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	stats := fmt.Sprintf("%s  %s  %s",
		tierStyle.Render(strings.ToUpper(tier.Label())),
		accStyle.Render(fmt.Sprintf("%.0f%% of %d", agg.Accuracy()*100, agg.TotalAnswered)),
		streakStyle.Render(fmt.Sprintf("★ %d streak", agg.CurrentStreak)),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func renderBlock(heading, body string, cw int) string {
	var b strings.Builder
	if heading != "" {
		b.WriteString(theme.Title.Width(cw).Render(heading))
		b.WriteString("\n\n")
	}
	b.WriteString(body)
	return lipgloss.NewStyle().
		Width(cw).
		Render(b.String())
}
