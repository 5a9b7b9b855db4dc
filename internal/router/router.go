// Package router keeps the stack of open TUI screens. The bottom screen is
// the home menu and is never popped.
package router

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/ui/layout"
)

// Screen is one full-window view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the area between header and footer.
	View(width, height int) string
	Title() string
}

// Hinter is implemented by screens that list their own footer keys.
type Hinter interface {
	KeyHints() []layout.KeyHint
}

// Navigation messages, usually returned from a screen's tea.Cmd.
type (
	// Open pushes Screen.
	Open struct{ Screen Screen }
	// Swap replaces the top screen, e.g. a finished session with its summary.
	Swap struct{ Screen Screen }
	// Back pops the top screen.
	Back struct{}
	// Home pops to the bottom screen and re-runs its Init so it reloads.
	Home struct{}
)

// To returns a command that opens s.
func To(s Screen) tea.Cmd {
	return func() tea.Msg { return Open{Screen: s} }
}

// GoBack and GoHome are commands for the Back and Home messages.
func GoBack() tea.Msg { return Back{} }
func GoHome() tea.Msg { return Home{} }

// Router is the screen stack.
type Router struct {
	stack []Screen
}

// New returns a Router with root at the bottom.
func New(root Screen) *Router {
	return &Router{stack: []Screen{root}}
}

// Active returns the top screen.
func (r *Router) Active() Screen {
	return r.stack[len(r.stack)-1]
}

// Depth returns how many screens are open.
func (r *Router) Depth() int { return len(r.stack) }

// Trail returns the titles from the bottom screen up, joined by " › ".
func (r *Router) Trail() string {
	titles := make([]string, len(r.stack))
	for i, s := range r.stack {
		titles[i] = s.Title()
	}
	return strings.Join(titles, " › ")
}

// Push opens s on top and returns its Init command.
func (r *Router) Push(s Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Update applies navigation messages and hands everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	top := len(r.stack) - 1
	switch msg := msg.(type) {
	case Open:
		return r.Push(msg.Screen)
	case Swap:
		r.stack[top] = msg.Screen
		return msg.Screen.Init()
	case Back:
		if top > 0 {
			r.stack = r.stack[:top]
		}
		return nil
	case Home:
		r.stack = r.stack[:1]
		return r.stack[0].Init()
	}

	next, cmd := r.stack[top].Update(msg)
	r.stack[top] = next
	return cmd
}

// View renders the active screen.
func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
