package study

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/critique"
	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/screens/summary"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/ui/components"
	"github.com/abhisek/kioku/internal/ui/layout"
)

// step is the part of the answer flow shown for the current item.
type step int

const (
	stepReason   step = iota // Writing down the reasoning
	stepChoose               // Picking ○ or ×
	stepFeedback             // Result, explanation and critique
)

// critiqueMsg carries a finished critique for the item it was requested for.
type critiqueMsg struct {
	ItemID   int
	Critique critique.Critique
}

// StudyScreen runs the active session of the engine.
type StudyScreen struct {
	eng     *engine.Engine
	reflect bool

	step        step
	mode        session.Mode
	item        catalog.Item
	progress    session.Progress
	shownAt     time.Time
	reason      components.TextInput
	choice      components.TrueFalse
	result      *session.AnswerResult
	critique    *critique.Critique
	critiquing  bool
	confirmQuit bool
	errMsg      string
}

var _ router.Screen = (*StudyScreen)(nil)
var _ router.Hinter = (*StudyScreen)(nil)

// New creates a StudyScreen for the engine's active session. With reflect
// set the learner writes down their reasoning before choosing.
func New(eng *engine.Engine, reflect bool) *StudyScreen {
	return &StudyScreen{eng: eng, reflect: reflect}
}

func (s *StudyScreen) Init() tea.Cmd {
	return s.load()
}

func (s *StudyScreen) Title() string {
	if s.mode == "" {
		return "Study"
	}
	return "Study · " + string(s.mode)
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Save and leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.step {
	case stepReason:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Tab", Description: "Skip"},
			{Key: "Esc", Description: "Quit"},
		}
	case stepChoose:
		return []layout.KeyHint{
			{Key: "o/x", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "p/n", Description: "Prev/Next"},
			{Key: "Esc", Description: "Quit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "p", Description: "Prev"},
			{Key: "f", Description: "Flag weakness"},
			{Key: "Esc", Description: "Quit"},
		}
	}
}

func (s *StudyScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case critiqueMsg:
		if s.result != nil && msg.ItemID == s.item.Number {
			c := msg.Critique
			s.critique = &c
			s.critiquing = false
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.step == stepReason {
		var cmd tea.Cmd
		s.reason, cmd = s.reason.Update(msg)
		return s, cmd
	}
	return s, nil
}

// load shows the current item of the active session from a clean state.
func (s *StudyScreen) load() tea.Cmd {
	it, p, ok := s.eng.CurrentItem()
	if !ok {
		s.errMsg = session.ErrNoActiveSession.Error()
		return nil
	}
	s.mode, _, _ = s.eng.Sessions.Active()
	s.item = it
	s.progress = p
	s.shownAt = s.eng.Now()
	s.choice = components.NewTrueFalse()
	s.result = nil
	s.critique = nil
	s.critiquing = false

	if s.reflect {
		s.step = stepReason
		s.reason = components.NewTextInput("How do you reason about this statement?", 500)
		return s.reason.Init()
	}
	s.step = stepChoose
	return nil
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (router.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, router.GoHome
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.eng.Sessions.Abandon()
			return s, router.GoHome
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	switch s.step {
	case stepReason:
		switch key {
		case "enter", "tab":
			s.step = stepChoose
			return s, nil
		}
		var cmd tea.Cmd
		s.reason, cmd = s.reason.Update(msg)
		return s, cmd

	case stepChoose:
		switch key {
		case "p":
			return s, s.move(s.eng.Sessions.Retreat())
		case "n":
			return s, s.move(s.eng.Sessions.GoTo(s.progress.CurrentIndex + 1))
		}
		var submit bool
		s.choice, submit = s.choice.Update(msg)
		if submit {
			return s, s.submit()
		}
		return s, nil

	default:
		switch key {
		case "enter", "n", " ":
			return s.advance()
		case "p":
			return s, s.move(s.eng.Sessions.Retreat())
		case "f":
			s.eng.Notebook.Toggle(s.item.Number)
		}
		return s, nil
	}
}

// submit grades the chosen option and requests a critique of the reasoning.
func (s *StudyScreen) submit() tea.Cmd {
	ctx := context.Background()
	elapsed := s.eng.Now().Sub(s.shownAt)
	choice := s.choice.Selected
	reasoning := s.reason.Value()

	res, it, err := s.eng.Submit(ctx, choice, reasoning, elapsed)
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.result = &res
	s.choice.Reveal(it.Result)
	s.step = stepFeedback
	s.critiquing = true

	eng := s.eng
	return func() tea.Msg {
		return critiqueMsg{
			ItemID:   it.Number,
			Critique: eng.Critique(ctx, it, choice, reasoning, res.Correct),
		}
	}
}

// advance moves to the next item, or shows the summary after the last one.
func (s *StudyScreen) advance() (router.Screen, tea.Cmd) {
	sum, err := s.eng.Sessions.Advance(context.Background())
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if sum != nil {
		return s, func() tea.Msg {
			return router.Swap{Screen: summary.New(sum)}
		}
	}
	return s, s.load()
}

func (s *StudyScreen) move(err error) tea.Cmd {
	if err != nil {
		if !errors.Is(err, session.ErrNoActiveSession) {
			s.errMsg = err.Error()
		}
		return nil
	}
	_, p, _ := s.eng.Sessions.Active()
	if p.CurrentIndex == s.progress.CurrentIndex {
		return nil
	}
	return s.load()
}
