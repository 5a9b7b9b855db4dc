package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/mastery"
	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/session"
)

func finished() *session.Summary {
	return &session.Summary{
		SessionID:      "s-1",
		Mode:           session.ModeAdaptive,
		Duration:       12*time.Minute + 5*time.Second,
		TotalQuestions: 14,
		TotalAnswered:  11,
		TotalCorrect:   9,
		Accuracy:       9.0 / 11.0,
		TierBefore:     mastery.TierBeginner,
		TierAfter:      mastery.TierIntermediate,
	}
}

func TestSummaryScreen_View(t *testing.T) {
	view := New(finished()).View(100, 30)
	for _, want := range []string{"12:05", "11 of 14", "82%", "1:06 per question", "Promoted", "Intermediate"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSummaryScreen_SameTier(t *testing.T) {
	sum := finished()
	sum.TierAfter = mastery.TierBeginner
	view := New(sum).View(100, 30)
	if strings.Contains(view, "Promoted") || !strings.Contains(view, "Level  Beginner") {
		t.Errorf("unchanged tier should show the level only:\n%s", view)
	}
}

func TestSummaryScreen_NoAnswers(t *testing.T) {
	sum := finished()
	sum.TotalAnswered, sum.TotalCorrect, sum.Accuracy = 0, 0, 0
	if strings.Contains(New(sum).View(100, 30), "per question") {
		t.Error("pace needs at least one answer")
	}
}

func TestSummaryScreen_Keys(t *testing.T) {
	s := New(finished())
	for _, key := range []tea.KeyPressMsg{{Code: tea.KeyEnter}, {Code: tea.KeyEscape}} {
		_, cmd := s.Update(key)
		if cmd == nil {
			t.Fatalf("%v: no command", key)
		}
		if _, ok := cmd().(router.Home); !ok {
			t.Errorf("%v should return home", key)
		}
	}
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'x', Text: "x"}); cmd != nil {
		t.Error("other keys are ignored")
	}
	if len(s.KeyHints()) != 2 || s.Title() != "Summary" {
		t.Error("hints or title changed")
	}
}
