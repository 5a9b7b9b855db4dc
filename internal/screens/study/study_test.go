package study

import (
	"context"
	"math/rand/v2"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/screens/summary"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{Number: 1, Year: "30", Question: "Brokers must explain important matters before contract.", Result: "○", Answer: "Correct.", Explanation: "Explained by a licensed specialist."},
		{Number: 2, Year: "30", Question: "Fees may exceed the ceiling with consent.", Result: "×", Answer: "Incorrect."},
	})
	if err != nil {
		t.Fatal(err)
	}
	eng, err := engine.Load(context.Background(), engine.Options{
		KV:      store.NewMemoryKV(),
		Catalog: cat,
		Rand:    rand.NewPCG(1, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })

	if _, err := eng.Begin(context.Background(), engine.StudyRequest{Mode: session.ModeAll}); err != nil {
		t.Fatal(err)
	}
	return eng
}

func newScreen(t *testing.T, reflect bool) (*StudyScreen, *engine.Engine) {
	t.Helper()
	eng := testEngine(t)
	s := New(eng, reflect)
	s.Init()
	return s, eng
}

func update(t *testing.T, s *StudyScreen, msg tea.Msg) (*StudyScreen, tea.Cmd) {
	t.Helper()
	var scr router.Screen = s
	scr, cmd := scr.Update(msg)
	return scr.(*StudyScreen), cmd
}

func TestStudyScreen_Title(t *testing.T) {
	s, _ := newScreen(t, false)
	if s.Title() != "Study · all" {
		t.Errorf("Title = %q, want %q", s.Title(), "Study · all")
	}
}

func TestStudyScreen_NoActiveSession(t *testing.T) {
	eng := testEngine(t)
	eng.Sessions.Abandon()

	s := New(eng, false)
	s.Init()
	if s.errMsg == "" {
		t.Fatal("expected an error without an active session")
	}
	if s.View(80, 24) == "" {
		t.Error("expected non-empty error view")
	}
	_, cmd := update(t, s, keyPress('a'))
	if cmd == nil {
		t.Fatal("expected navigation after error")
	}
	if _, ok := cmd().(router.Home); !ok {
		t.Error("expected PopToRootMsg")
	}
}

func TestStudyScreen_ReasonThenAnswer(t *testing.T) {
	s, eng := newScreen(t, true)
	if s.step != stepReason {
		t.Fatalf("step = %d, want reasoning step", s.step)
	}

	for _, r := range "must" {
		s, _ = update(t, s, keyPress(r))
	}
	s, _ = update(t, s, specialKey(tea.KeyEnter))
	if s.step != stepChoose {
		t.Fatalf("step = %d, want choice step", s.step)
	}

	// Enter without a choice does nothing.
	s, cmd := update(t, s, specialKey(tea.KeyEnter))
	if cmd != nil || s.step != stepChoose {
		t.Fatal("expected no submission without a choice")
	}

	s, _ = update(t, s, keyPress('o'))
	s, cmd = update(t, s, specialKey(tea.KeyEnter))
	if s.step != stepFeedback {
		t.Fatalf("step = %d, want feedback step", s.step)
	}
	if s.result == nil || !s.result.Correct {
		t.Fatal("expected a correct result")
	}
	if !s.critiquing || cmd == nil {
		t.Fatal("expected a pending critique")
	}

	msg := cmd()
	cm, ok := msg.(critiqueMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want critiqueMsg", msg)
	}
	s, _ = update(t, s, cm)
	if s.critique == nil || s.critiquing {
		t.Fatal("expected the critique to be shown")
	}
	if s.View(100, 30) == "" {
		t.Error("expected non-empty feedback view")
	}

	if got := eng.Stats.Item(1).TotalAttempts; got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestStudyScreen_SkipReasoning(t *testing.T) {
	s, _ := newScreen(t, true)
	s, _ = update(t, s, specialKey(tea.KeyTab))
	if s.step != stepChoose {
		t.Errorf("step = %d, want choice step after tab", s.step)
	}
}

func TestStudyScreen_WrongAnswerFlags(t *testing.T) {
	s, eng := newScreen(t, false)

	s, _ = update(t, s, keyPress('x'))
	s, _ = update(t, s, specialKey(tea.KeyEnter))
	if s.result == nil || s.result.Correct {
		t.Fatal("expected an incorrect result")
	}
	if !eng.Notebook.Contains(1) {
		t.Fatal("expected item 1 to be flagged")
	}

	s, _ = update(t, s, keyPress('f'))
	if eng.Notebook.Contains(1) {
		t.Error("expected f to unflag item 1")
	}
}

func TestStudyScreen_StaleCritiqueIgnored(t *testing.T) {
	s, _ := newScreen(t, false)
	s, _ = update(t, s, keyPress('o'))
	s, _ = update(t, s, specialKey(tea.KeyEnter))

	s, _ = update(t, s, critiqueMsg{ItemID: 99})
	if s.critique != nil {
		t.Error("expected a critique for another item to be ignored")
	}
}

func TestStudyScreen_Navigation(t *testing.T) {
	s, _ := newScreen(t, false)

	s, _ = update(t, s, keyPress('n'))
	if s.item.Number != 2 {
		t.Fatalf("item = %d, want 2 after next", s.item.Number)
	}
	s, _ = update(t, s, keyPress('n'))
	if s.item.Number != 2 {
		t.Fatalf("item = %d, want 2 at the end", s.item.Number)
	}
	s, _ = update(t, s, keyPress('p'))
	if s.item.Number != 1 {
		t.Errorf("item = %d, want 1 after prev", s.item.Number)
	}
}

func TestStudyScreen_CompletesToSummary(t *testing.T) {
	s, eng := newScreen(t, false)

	s, _ = update(t, s, keyPress('o'))
	s, _ = update(t, s, specialKey(tea.KeyEnter))
	s, _ = update(t, s, specialKey(tea.KeyEnter))
	if s.item.Number != 2 {
		t.Fatalf("item = %d, want 2", s.item.Number)
	}

	s, _ = update(t, s, keyPress('x'))
	s, _ = update(t, s, specialKey(tea.KeyEnter))
	_, cmd := update(t, s, specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected navigation to the summary")
	}
	msg, ok := cmd().(router.Swap)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replacement = %T, want *summary.SummaryScreen", msg.Screen)
	}
	if eng.Sessions.Phase() != session.PhaseCompleted {
		t.Errorf("phase = %v, want completed", eng.Sessions.Phase())
	}
	if eng.Sessions.LastSummary().TotalCorrect != 2 {
		t.Errorf("correct = %d, want 2", eng.Sessions.LastSummary().TotalCorrect)
	}
}

func TestStudyScreen_QuitConfirm(t *testing.T) {
	s, eng := newScreen(t, false)

	s, _ = update(t, s, specialKey(tea.KeyEscape))
	if !s.confirmQuit {
		t.Fatal("expected quit confirmation")
	}
	s, _ = update(t, s, keyPress('n'))
	if s.confirmQuit {
		t.Fatal("expected quit confirmation to be dismissed")
	}

	s, _ = update(t, s, specialKey(tea.KeyEscape))
	_, cmd := update(t, s, keyPress('y'))
	if cmd == nil {
		t.Fatal("expected a command after confirming")
	}
	if _, ok := cmd().(router.Home); !ok {
		t.Error("expected PopToRootMsg")
	}
	if eng.Sessions.Phase() != session.PhaseIdle {
		t.Errorf("phase = %v, want idle", eng.Sessions.Phase())
	}
	if _, ok := eng.Sessions.Saved(session.ModeAll); !ok {
		t.Error("expected the session to stay saved")
	}
}

func TestStudyScreen_KeyHints(t *testing.T) {
	s, _ := newScreen(t, true)
	if len(s.KeyHints()) == 0 {
		t.Error("expected reasoning key hints")
	}
	s, _ = update(t, s, specialKey(tea.KeyTab))
	if len(s.KeyHints()) == 0 {
		t.Error("expected choice key hints")
	}
}
