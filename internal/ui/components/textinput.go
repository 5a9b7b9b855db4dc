package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a single-line prompt for search queries and written
// reasoning.
type TextInput struct {
	in textinput.Model
}

// NewTextInput returns a focused input. limit <= 0 means unbounded.
func NewTextInput(placeholder string, limit int) TextInput {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = max(limit, 0)
	in.Focus()
	return TextInput{in: in}
}

// Init starts the cursor blinking.
func (t TextInput) Init() tea.Cmd { return t.in.Focus() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.in, cmd = t.in.Update(msg)
	return t, cmd
}

func (t TextInput) View() string { return t.in.View() }

// Value returns the text with surrounding space removed.
func (t TextInput) Value() string { return strings.TrimSpace(t.in.Value()) }
