package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/ui/theme"
)

// MenuItem is one row of a Menu. Disabled rows are shown dimmed and
// skipped by the cursor.
type MenuItem struct {
	Label    string
	Detail   string // dim suffix such as "saved 3/12"
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list driven by j/k or the arrow keys.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu returns a menu with the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the cursor to the next enabled item in direction dir and stays
// put when there is none.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter":
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			break
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

func (m Menu) View() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := make([]string, len(m.Items))
	for i, it := range m.Items {
		switch {
		case it.Disabled:
			lines[i] = dim.Render("    " + it.Label)
		case i == m.Selected:
			lines[i] = theme.Selected.Render("  ▸ " + it.Label)
		default:
			lines[i] = theme.Unselected.Render("    " + it.Label)
		}
		if it.Detail != "" {
			lines[i] += dim.Render("  " + it.Detail)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
