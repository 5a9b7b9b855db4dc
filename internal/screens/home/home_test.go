package home

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/screens/study"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/store"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testHome(t *testing.T) (*HomeScreen, *engine.Engine) {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{Number: 1, Year: "30", Question: "Brokers must explain important matters.", Result: "○"},
		{Number: 2, Year: "30", Question: "The fee ceiling may be exceeded with consent.", Result: "×"},
		{Number: 3, Year: "R1", Question: "Lease terms start at thirty years.", Result: "○"},
	})
	if err != nil {
		t.Fatal(err)
	}
	eng, err := engine.Load(context.Background(), engine.Options{
		KV:      store.NewMemoryKV(),
		Catalog: cat,
		Rand:    rand.NewPCG(3, 4),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })
	return New(eng, Options{}), eng
}

// run applies msg and feeds back the message of each returned command until
// a router message or nothing is produced.
func run(t *testing.T, h *HomeScreen, msg tea.Msg) tea.Msg {
	t.Helper()
	var scr router.Screen = h
	for range 4 {
		var cmd tea.Cmd
		scr, cmd = scr.Update(msg)
		if cmd == nil {
			return nil
		}
		msg = cmd()
		switch msg.(type) {
		case router.Open, tea.QuitMsg:
			return msg
		}
	}
	return msg
}

func selectLabel(t *testing.T, h *HomeScreen, label string) {
	t.Helper()
	for i, it := range h.menu.Items {
		if it.Label == label {
			h.menu.Selected = i
			return
		}
	}
	t.Fatalf("menu has no %q", label)
}

func TestHome_StartsAdaptiveStudy(t *testing.T) {
	h, eng := testHome(t)
	selectLabel(t, h, "Adaptive study")

	msg := run(t, h, specialKey(tea.KeyEnter))
	push, ok := msg.(router.Open)
	if !ok {
		t.Fatalf("got %T, want router.Open", msg)
	}
	if _, ok := push.Screen.(*study.StudyScreen); !ok {
		t.Errorf("pushed %T, want *study.StudyScreen", push.Screen)
	}
	if mode, _, ok := eng.Sessions.Active(); !ok || mode != session.ModeAdaptive {
		t.Errorf("active mode = %q, want adaptive", mode)
	}
}

func TestHome_NothingDue(t *testing.T) {
	h, _ := testHome(t)
	selectLabel(t, h, "Review due")

	if msg := run(t, h, specialKey(tea.KeyEnter)); msg != nil {
		t.Fatalf("got %T, want no navigation", msg)
	}
	if h.notice == "" {
		t.Error("expected a notice about the empty mode")
	}
}

func TestHome_ResumePrompt(t *testing.T) {
	h, eng := testHome(t)
	first, err := eng.Begin(context.Background(), engine.StudyRequest{Mode: session.ModeAll})
	if err != nil {
		t.Fatal(err)
	}
	eng.Sessions.Abandon()
	h.Init()

	selectLabel(t, h, "All questions")
	if !strings.Contains(h.menu.Items[h.menu.Selected].Detail, "saved 1/3") {
		t.Errorf("detail = %q, want saved marker", h.menu.Items[h.menu.Selected].Detail)
	}

	if msg := run(t, h, specialKey(tea.KeyEnter)); msg != nil {
		t.Fatalf("got %T, want the resume prompt", msg)
	}
	if h.stage != stageResume {
		t.Fatalf("stage = %d, want resume prompt", h.stage)
	}
	if !strings.Contains(h.View(100, 30), "question 1 of 3") {
		t.Error("expected saved position in the prompt")
	}

	if _, ok := run(t, h, keyPress('r')).(router.Open); !ok {
		t.Fatal("expected the study screen after resume")
	}
	_, p, _ := eng.Sessions.Active()
	if p.SessionID != first.SessionID {
		t.Error("expected the saved session to resume")
	}
}

func TestHome_RestartPrompt(t *testing.T) {
	h, eng := testHome(t)
	first, err := eng.Begin(context.Background(), engine.StudyRequest{Mode: session.ModeAll})
	if err != nil {
		t.Fatal(err)
	}
	eng.Sessions.Abandon()
	h.Init()

	selectLabel(t, h, "All questions")
	run(t, h, specialKey(tea.KeyEnter))
	if _, ok := run(t, h, keyPress('n')).(router.Open); !ok {
		t.Fatal("expected the study screen after restart")
	}
	_, p, _ := eng.Sessions.Active()
	if p.SessionID == first.SessionID {
		t.Error("expected a new session")
	}
}

func TestHome_CategoryPicker(t *testing.T) {
	h, eng := testHome(t)
	selectLabel(t, h, "By category")

	run(t, h, specialKey(tea.KeyEnter))
	if h.stage != stageCategory {
		t.Fatalf("stage = %d, want category picker", h.stage)
	}
	if len(h.categories.Items) != 2 {
		t.Fatalf("categories = %d, want 2", len(h.categories.Items))
	}

	h.categories.Selected = 1
	if _, ok := run(t, h, specialKey(tea.KeyEnter)).(router.Open); !ok {
		t.Fatal("expected the study screen")
	}
	_, p, _ := eng.Sessions.Active()
	if len(p.Items) != 1 || p.Items[0] != 3 {
		t.Errorf("items = %v, want [3]", p.Items)
	}
}

func TestHome_Search(t *testing.T) {
	h, eng := testHome(t)
	selectLabel(t, h, "Search")

	run(t, h, specialKey(tea.KeyEnter))
	if h.stage != stageSearch {
		t.Fatalf("stage = %d, want search", h.stage)
	}
	for _, r := range "fee" {
		run(t, h, keyPress(r))
	}
	if _, ok := run(t, h, specialKey(tea.KeyEnter)).(router.Open); !ok {
		t.Fatal("expected the study screen")
	}
	_, p, _ := eng.Sessions.Active()
	if len(p.Items) != 1 || p.Items[0] != 2 {
		t.Errorf("items = %v, want [2]", p.Items)
	}
}

func TestHome_EscLeavesPrompt(t *testing.T) {
	h, _ := testHome(t)
	selectLabel(t, h, "Search")
	run(t, h, specialKey(tea.KeyEnter))
	run(t, h, specialKey(tea.KeyEscape))
	if h.stage != stageMenu {
		t.Errorf("stage = %d, want menu", h.stage)
	}
}

func TestHome_View(t *testing.T) {
	h, _ := testHome(t)
	view := h.View(100, 30)
	for _, want := range []string{"BEGINNER", "Adaptive study", "0 due"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHome_Quit(t *testing.T) {
	h, _ := testHome(t)
	selectLabel(t, h, "Quit")
	if _, ok := run(t, h, specialKey(tea.KeyEnter)).(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}
