package home

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/screens/history"
	"github.com/abhisek/kioku/internal/screens/study"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/ui/components"
	"github.com/abhisek/kioku/internal/ui/layout"
)

// Options are the study preferences applied to sessions started from home.
type Options struct {
	Shuffle bool
	Reflect bool
}

// stage is the prompt the home screen is showing.
type stage int

const (
	stageMenu     stage = iota // Mode menu
	stageCategory              // Category picker
	stageSearch                // Search query input
	stageResume                // Resume-or-restart prompt
)

// chooseMsg is emitted by menu actions to begin a study request.
type chooseMsg struct {
	Request engine.StudyRequest
}

// openCategoriesMsg and openSearchMsg switch to the matching prompt.
type (
	openCategoriesMsg struct{}
	openSearchMsg     struct{}
)

var modeLabels = []struct {
	mode  session.Mode
	label string
}{
	{session.ModeAdaptive, "Adaptive study"},
	{session.ModeReview, "Review due"},
	{session.ModeWeakness, "Weak items"},
	{session.ModeAll, "All questions"},
	{session.ModeRandom, "Random order"},
	{session.ModeCategory, "By category"},
	{session.ModeSearch, "Search"},
}

// HomeScreen is the main screen: learner overview and study mode menu.
type HomeScreen struct {
	eng  *engine.Engine
	opts Options

	stage      stage
	menu       components.Menu
	categories components.Menu
	search     components.TextInput
	pending    engine.StudyRequest
	saved      session.Progress
	notice     string
}

var _ router.Screen = (*HomeScreen)(nil)
var _ router.Hinter = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(eng *engine.Engine, opts Options) *HomeScreen {
	h := &HomeScreen{eng: eng, opts: opts}
	h.refresh()
	return h
}

// Init rebuilds the menu so saved-session markers and counts are current.
func (h *HomeScreen) Init() tea.Cmd {
	h.refresh()
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	switch h.stage {
	case stageResume:
		return []layout.KeyHint{
			{Key: "R", Description: "Resume"},
			{Key: "N", Description: "Start over"},
			{Key: "Esc", Description: "Cancel"},
		}
	case stageSearch:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Search"},
			{Key: "Esc", Description: "Cancel"},
		}
	case stageCategory:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Study"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
}

func (h *HomeScreen) refresh() {
	h.stage = stageMenu

	due := len(h.eng.Due())
	weak := len(h.eng.Notebook.IDs())

	items := make([]components.MenuItem, 0, len(modeLabels)+2)
	for _, ml := range modeLabels {
		mode := ml.mode
		item := components.MenuItem{Label: ml.label}

		switch mode {
		case session.ModeReview:
			item.Detail = fmt.Sprintf("%d due", due)
		case session.ModeWeakness:
			item.Detail = fmt.Sprintf("%d flagged", weak)
		}
		if p, ok := h.eng.Sessions.Saved(mode); ok {
			item.Detail = joinDetail(item.Detail, fmt.Sprintf("saved %d/%d", p.CurrentIndex+1, p.Len()))
		}

		switch mode {
		case session.ModeCategory:
			item.Action = func() tea.Cmd { return func() tea.Msg { return openCategoriesMsg{} } }
		case session.ModeSearch:
			item.Action = func() tea.Cmd { return func() tea.Msg { return openSearchMsg{} } }
		default:
			item.Action = func() tea.Cmd {
				return func() tea.Msg { return chooseMsg{Request: engine.StudyRequest{Mode: mode}} }
			}
		}
		items = append(items, item)
	}

	events := h.eng.Events()
	items = append(items,
		components.MenuItem{
			Label:    "History",
			Disabled: events == nil,
			Action: func() tea.Cmd {
				return router.To(history.New(events))
			},
		},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)

	selected := h.menu.Selected
	h.menu = components.NewMenu(items)
	if selected > 0 && selected < len(items) {
		h.menu.Selected = selected
	}
}

func joinDetail(a, b string) string {
	if a == "" {
		return b
	}
	return a + " · " + b
}

func (h *HomeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case chooseMsg:
		return h, h.begin(msg.Request)

	case openCategoriesMsg:
		h.openCategories()
		return h, nil

	case openSearchMsg:
		h.stage = stageSearch
		h.notice = ""
		h.search = components.NewTextInput("Words in the question or answer", 100)
		return h, h.search.Init()

	case tea.KeyMsg:
		return h.handleKey(msg)
	}

	if h.stage == stageSearch {
		var cmd tea.Cmd
		h.search, cmd = h.search.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	key := msg.String()

	switch h.stage {
	case stageResume:
		switch key {
		case "r", "R", "enter":
			req := h.pending
			req.Resume = true
			return h, h.begin(req)
		case "n", "N":
			req := h.pending
			req.Restart = true
			return h, h.begin(req)
		case "esc":
			h.stage = stageMenu
		}
		return h, nil

	case stageSearch:
		switch key {
		case "esc":
			h.stage = stageMenu
			return h, nil
		case "enter":
			q := h.search.Value()
			if q == "" {
				return h, nil
			}
			return h, h.begin(engine.StudyRequest{Mode: session.ModeSearch, Query: q, Scope: catalog.ScopeAll})
		}
		var cmd tea.Cmd
		h.search, cmd = h.search.Update(msg)
		return h, cmd

	case stageCategory:
		if key == "esc" {
			h.stage = stageMenu
			return h, nil
		}
		var cmd tea.Cmd
		h.categories, cmd = h.categories.Update(msg)
		return h, cmd
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) openCategories() {
	cats := h.eng.Catalog.Categories()
	items := make([]components.MenuItem, 0, len(cats))
	for _, c := range cats {
		name := c.Name
		items = append(items, components.MenuItem{
			Label:  name,
			Detail: fmt.Sprintf("%d questions", c.Count),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return chooseMsg{Request: engine.StudyRequest{Mode: session.ModeCategory, Category: name}}
				}
			},
		})
	}
	h.categories = components.NewMenu(items)
	h.stage = stageCategory
	h.notice = ""
}

// begin starts or resumes req and opens the study screen. A saved session
// for the mode switches to the resume prompt instead.
func (h *HomeScreen) begin(req engine.StudyRequest) tea.Cmd {
	req.Shuffle = h.opts.Shuffle
	h.notice = ""

	_, err := h.eng.Begin(context.Background(), req)
	switch {
	case errors.Is(err, session.ErrSessionInFlight):
		h.pending = req
		h.saved, _ = h.eng.Sessions.Saved(req.Mode)
		h.stage = stageResume
		return nil
	case errors.Is(err, session.ErrNoItems):
		h.notice = "Nothing to study in this mode right now."
		h.stage = stageMenu
		return nil
	case err != nil:
		h.notice = err.Error()
		h.stage = stageMenu
		return nil
	}

	h.stage = stageMenu
	return router.To(study.New(h.eng, h.opts.Reflect))
}
