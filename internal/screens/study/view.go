package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/critique"
	"github.com/abhisek/kioku/internal/ui/components"
	"github.com/abhisek/kioku/internal/ui/layout"
	"github.com/abhisek/kioku/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", s.errMsg), width, theme.Error)
	}
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}

	textWidth := min(width-8, 76)
	var b strings.Builder

	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n")
	bar := components.SessionProgress(s.progress.CurrentIndex, s.progress.Len(), min(width-8, 60))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	question := lipgloss.NewStyle().
		Width(textWidth).
		Foreground(theme.Text).
		Bold(true).
		Render(s.item.Question)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, question))
	b.WriteString("\n\n")

	switch s.step {
	case stepReason:
		b.WriteString(layout.Centered("Your reasoning", width, theme.TextDim))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.reason.View()))
	case stepChoose:
		if r := s.reason.Value(); r != "" {
			b.WriteString(layout.Centered("Reasoning: "+r, width, theme.TextDim))
			b.WriteString("\n\n")
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
	default:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
		b.WriteString("\n\n")
		b.WriteString(s.renderFeedback(width, textWidth))
	}

	return b.String()
}

func (s *StudyScreen) renderInfoLine(width int) string {
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  #%d  %s", s.item.Number, s.item.Group()))

	right := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s %d/%d",
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			s.progress.SessionCorrect, s.progress.SessionTotal))
	if s.eng.Notebook.Contains(s.item.Number) {
		right = theme.Flagged.Render("⚑ weak") + "  " + right
	}

	line := left
	if pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4; pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}
	return line + "\n" + lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0)))
}

func (s *StudyScreen) renderFeedback(width, textWidth int) string {
	var b strings.Builder

	if s.result.Correct {
		b.WriteString(layout.Centered("Correct!", width, theme.Success))
	} else {
		b.WriteString(layout.Centered(fmt.Sprintf("Incorrect. The answer is %s", s.item.Result), width, theme.Error))
	}
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text)
	dim := lipgloss.NewStyle().Width(textWidth).Foreground(theme.TextDim)
	if s.item.Answer != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body.Render(s.item.Answer)))
		b.WriteString("\n")
	}
	if s.item.Explanation != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render(s.item.Explanation)))
		b.WriteString("\n")
	}
	if memo := s.eng.Notebook.Memo(s.item.Number); memo != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Flagged.Width(textWidth).Render("Memo: "+memo)))
		b.WriteString("\n")
	}
	if s.result.Flagged {
		b.WriteString(layout.Centered("Added to your weak items.", width, theme.Accent))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.critiquing:
		b.WriteString(layout.Centered("Analyzing your reasoning...", width, theme.TextDim))
	case s.critique != nil:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderCritique(*s.critique, textWidth)))
	}
	return b.String()
}

func renderCritique(c critique.Critique, width int) string {
	var b strings.Builder
	heading := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	text := lipgloss.NewStyle().Width(width).Foreground(theme.Text)

	b.WriteString(heading.Render(fmt.Sprintf("Reasoning score %d/100", c.AccuracyScore)))
	if c.Source != critique.SourceLLM {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("  (offline)"))
	}
	b.WriteString("\n")

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(heading.Render(title) + "\n")
		for _, it := range items {
			b.WriteString(text.Render("  • "+it) + "\n")
		}
	}
	section("Strengths", c.StrengthPoints)
	section("To improve", c.ImprovementPoints)
	if c.MistakeAnalysis != "" {
		b.WriteString(heading.Render("Mistake") + "\n" + text.Render(c.MistakeAnalysis) + "\n")
	}
	section("Tips", c.PreventionTips)
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered("Leave this session?", width, theme.Text))
	b.WriteString("\n")
	b.WriteString(layout.Centered("Your place is saved and can be resumed from home.", width, theme.TextDim))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("[Y] Yes, leave", width, theme.Success))
	b.WriteString("\n")
	b.WriteString(layout.Centered("[N] No, keep going", width, theme.Primary))
	return b.String()
}
