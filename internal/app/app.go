// Package app hosts the interactive terminal UI.
package app

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/screens/home"
	"github.com/abhisek/kioku/internal/screens/study"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Shuffle bool
	Reflect bool
}

// statusTTL bounds how long the header status is reused while no session
// event arrives, so items falling due still show up.
const statusTTL = time.Minute

// headerStatus caches the header figures between session changes.
type headerStatus struct {
	stale  atomic.Bool
	at     time.Time
	status layout.HeaderStatus
}

func (c *headerStatus) get(eng *engine.Engine) layout.HeaderStatus {
	now := eng.Now()
	if c.stale.Swap(false) || c.at.IsZero() || now.Sub(c.at) >= statusTTL {
		c.status = layout.HeaderStatus{
			Tier:   eng.Tier().Label(),
			Streak: eng.Stats.Aggregate().CurrentStreak,
			Due:    len(eng.Due()),
		}
		c.at = now
	}
	return c.status
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	eng    *engine.Engine
	router *router.Router
	header *headerStatus
	width  int
	height int
}

// newAppModel creates the root model with the home screen at the bottom of
// the stack. An already active session opens straight into the study screen.
func newAppModel(eng *engine.Engine, opts Options) AppModel {
	r := router.New(home.New(eng, home.Options{Shuffle: opts.Shuffle, Reflect: opts.Reflect}))
	if _, _, ok := eng.Sessions.Active(); ok {
		r.Push(study.New(eng, opts.Reflect))
	}
	header := &headerStatus{}
	eng.Subscribe(func(session.Event) { header.stale.Store(true) })
	return AppModel{eng: eng, router: r, header: header}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			// Keep the place of an interrupted session.
			m.eng.Sessions.Abandon()
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.frame())
	v.AltScreen = true
	return v
}

// hints are the active screen's key hints, or Back/Quit below the root.
func (m AppModel) hints() []layout.KeyHint {
	if h, ok := m.router.Active().(router.Hinter); ok {
		return h.KeyHints()
	}
	if m.router.Depth() == 1 {
		return nil
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}, {Key: "Ctrl+C", Description: "Quit"}}
}

// frame draws header, active screen and footer. It is empty until the first
// WindowSizeMsg arrives.
func (m AppModel) frame() string {
	w, h := m.width, m.height
	switch {
	case w == 0 || h == 0:
		return ""
	case layout.IsTooSmall(w, h):
		return layout.RenderMinSizeMessage(w, h)
	}

	top := layout.RenderHeader(m.router.Trail(), m.header.get(m.eng), w)
	bottom := layout.RenderFooter(m.hints(), w)
	body := m.router.View(w, max(h-lipgloss.Height(top)-lipgloss.Height(bottom), 0))
	return layout.RenderFrame(top, body, bottom, w, h)
}

// Run starts the Bubble Tea program on eng.
func Run(eng *engine.Engine, opts Options) error {
	if _, err := tea.NewProgram(newAppModel(eng, opts)).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
