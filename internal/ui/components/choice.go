package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/ui/theme"
)

// TrueFalse is a two-option ○/× selector.
type TrueFalse struct {
	// Selected is catalog.ChoiceTrue or catalog.ChoiceFalse, or empty
	// before the learner picks.
	Selected  string
	Submitted bool
	Correct   string // the item's result, revealed after submit
}

// NewTrueFalse creates an empty selector.
func NewTrueFalse() TrueFalse {
	return TrueFalse{}
}

// Update handles option keys. It returns submit=true when the learner
// confirms a choice.
func (c TrueFalse) Update(msg tea.Msg) (TrueFalse, bool) {
	if c.Submitted {
		return c, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}

	switch kmsg.String() {
	case "o", "O", "1":
		c.Selected = catalog.ChoiceTrue
	case "x", "X", "2":
		c.Selected = catalog.ChoiceFalse
	case "left", "right", "up", "down", "tab":
		if c.Selected == catalog.ChoiceTrue {
			c.Selected = catalog.ChoiceFalse
		} else {
			c.Selected = catalog.ChoiceTrue
		}
	case "enter":
		if c.Selected != "" {
			return c, true
		}
	}
	return c, false
}

// Reveal marks the selector as answered against result.
func (c *TrueFalse) Reveal(result string) {
	c.Submitted = true
	c.Correct = catalog.NormalizeChoice(result)
}

// View renders both options side by side.
func (c TrueFalse) View() string {
	opts := []struct {
		mark, label, key string
	}{
		{catalog.ChoiceTrue, "True", "o"},
		{catalog.ChoiceFalse, "False", "x"},
	}

	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		prefix := "  "
		if o.mark == c.Selected && !c.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %s  (%s)", prefix, o.mark, o.label, o.key)

		style := theme.Unselected
		switch {
		case c.Submitted && o.mark == c.Correct:
			style = theme.Correct
		case c.Submitted && o.mark == c.Selected:
			style = theme.Incorrect
		case c.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case o.mark == c.Selected:
			style = theme.Selected
		}
		parts = append(parts, style.Render(line))
	}
	return strings.Join(parts, "      ")
}

// IsCorrect reports whether the submitted choice matches the result.
func (c TrueFalse) IsCorrect() bool {
	return c.Submitted && c.Selected == c.Correct
}
