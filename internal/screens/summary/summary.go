// Package summary shows the result of a finished study session.
package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/ui/components"
	"github.com/abhisek/kioku/internal/ui/layout"
	"github.com/abhisek/kioku/internal/ui/theme"
)

// SummaryScreen is shown in place of the study screen once the last
// question is answered.
type SummaryScreen struct {
	sum *session.Summary
}

var (
	_ router.Screen = (*SummaryScreen)(nil)
	_ router.Hinter = (*SummaryScreen)(nil)
)

func New(sum *session.Summary) *SummaryScreen {
	return &SummaryScreen{sum: sum}
}

func (s *SummaryScreen) Init() tea.Cmd { return nil }
func (s *SummaryScreen) Title() string { return "Summary" }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Done"}, {Key: "Esc", Description: "Home"}}
}

func (s *SummaryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc", "q":
			return s, router.GoHome
		}
	}
	return s, nil
}

// clock formats d as m:ss.
func clock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// rows are the label/value pairs of the result table.
func (s *SummaryScreen) rows() [][2]string {
	sum := s.sum
	rows := [][2]string{
		{"Mode", string(sum.Mode)},
		{"Time", clock(sum.Duration)},
		{"Answered", fmt.Sprintf("%d of %d", sum.TotalAnswered, sum.TotalQuestions)},
		{"Correct", fmt.Sprintf("%d", sum.TotalCorrect)},
		{"Accuracy", fmt.Sprintf("%.0f%%", sum.Accuracy*100)},
	}
	if sum.TotalAnswered > 0 {
		rows = append(rows, [2]string{"Pace", clock(sum.Duration/time.Duration(sum.TotalAnswered)) + " per question"})
	}
	return rows
}

func (s *SummaryScreen) View(width, height int) string {
	if s.sum == nil {
		return ""
	}
	inner := min(width-8, 60)
	center := func(str string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, str) }

	var table []string
	for _, r := range s.rows() {
		table = append(table, theme.Label.Render(fmt.Sprintf("%-10s", r[0]))+theme.Value.Render(r[1]))
	}

	tier := layout.Centered("Level  "+s.sum.TierAfter.Label(), width, theme.Text)
	if tr := s.sum.TierChange(); tr != nil {
		verb, c := "Dropped", theme.Error
		if tr.Promoted() {
			verb, c = "Promoted", theme.Success
		}
		tier = layout.Centered(fmt.Sprintf("%s  %s → %s", verb, tr.From.Label(), tr.To.Label()), width, c)
	}

	parts := []string{
		theme.Title.Width(width).Render("Session complete"),
		center(lipgloss.JoinVertical(lipgloss.Left, table...)),
		center(components.NewProgressBar("", s.sum.Accuracy, inner).View()),
		center(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(inner, 0)))),
		tier,
	}
	return "\n" + strings.Join(parts, "\n\n")
}
