package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/catalog"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestTrueFalse_SelectAndSubmit(t *testing.T) {
	c := NewTrueFalse()

	c, submit := c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if submit {
		t.Fatal("enter without a selection should not submit")
	}

	c, _ = c.Update(keyPress('x'))
	if c.Selected != catalog.ChoiceFalse {
		t.Fatalf("Selected = %q, want ×", c.Selected)
	}
	c, _ = c.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if c.Selected != catalog.ChoiceTrue {
		t.Fatalf("tab should toggle to ○, got %q", c.Selected)
	}

	c, submit = c.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !submit {
		t.Fatal("enter with a selection should submit")
	}
}

func TestTrueFalse_Reveal(t *testing.T) {
	c := NewTrueFalse()
	c, _ = c.Update(keyPress('1'))
	c.Reveal("×")

	if c.IsCorrect() {
		t.Error("○ against × should be incorrect")
	}
	if _, submit := c.Update(keyPress('x')); submit {
		t.Error("a revealed selector ignores input")
	}
	if c2, _ := c.Update(keyPress('x')); c2.Selected != catalog.ChoiceTrue {
		t.Error("a revealed selector keeps its choice")
	}

	view := c.View()
	if !strings.Contains(view, "True") || !strings.Contains(view, "False") {
		t.Errorf("view missing labels: %q", view)
	}
}

func TestMenu_SkipsDisabled(t *testing.T) {
	var picked string
	pick := func(name string) func() tea.Cmd {
		return func() tea.Cmd {
			picked = name
			return nil
		}
	}

	m := NewMenu([]MenuItem{
		{Label: "Off", Disabled: true},
		{Label: "First", Action: pick("first")},
		{Label: "Gap", Disabled: true},
		{Label: "Last", Action: pick("last"), Detail: "2 due"},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item", m.Selected)
	}

	m, _ = m.Update(keyPress('j'))
	if m.Selected != 3 {
		t.Fatalf("down should skip disabled items, got %d", m.Selected)
	}
	m, _ = m.Update(keyPress('j'))
	if m.Selected != 3 {
		t.Errorf("down at the end should stay, got %d", m.Selected)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if picked != "last" {
		t.Errorf("picked = %q, want last", picked)
	}

	if view := m.View(); !strings.Contains(view, "2 due") {
		t.Errorf("view missing detail: %q", view)
	}
}

func TestSessionProgress(t *testing.T) {
	p := SessionProgress(2, 8, 40)
	if p.Label != "3/8" {
		t.Errorf("Label = %q, want 3/8", p.Label)
	}
	if p.Percent != 3.0/8.0 {
		t.Errorf("Percent = %v", p.Percent)
	}
	if empty := SessionProgress(0, 0, 40); empty.Percent != 0 {
		t.Errorf("empty session Percent = %v", empty.Percent)
	}
}
