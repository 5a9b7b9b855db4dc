package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

type fake struct {
	title string
	inits int
	seen  []tea.Msg
}

func (f *fake) Init() tea.Cmd        { f.inits++; return nil }
func (f *fake) View(int, int) string { return f.title }
func (f *fake) Title() string        { return f.title }

func (f *fake) Update(msg tea.Msg) (Screen, tea.Cmd) {
	f.seen = append(f.seen, msg)
	return f, nil
}

func TestRouter_Navigation(t *testing.T) {
	home := &fake{title: "Home"}
	r := New(home)

	study := &fake{title: "Study"}
	r.Update(Open{Screen: study})
	if study.inits != 1 || r.Depth() != 2 {
		t.Fatalf("open: inits=%d depth=%d", study.inits, r.Depth())
	}
	if got := r.Trail(); got != "Home › Study" {
		t.Errorf("Trail = %q", got)
	}

	summary := &fake{title: "Summary"}
	r.Update(Swap{Screen: summary})
	if r.Depth() != 2 || r.Active() != summary || summary.inits != 1 {
		t.Fatalf("swap: depth=%d active=%s", r.Depth(), r.Active().Title())
	}

	r.Update(Open{Screen: &fake{title: "History"}})
	r.Update(Home{})
	if r.Depth() != 1 || r.Active() != home {
		t.Fatalf("home: depth=%d", r.Depth())
	}
	if home.inits != 1 {
		t.Errorf("home should re-init on return, inits=%d", home.inits)
	}

	r.Update(Back{})
	if r.Depth() != 1 {
		t.Errorf("back at the root must keep it, depth=%d", r.Depth())
	}
}

func TestRouter_ForwardsToActive(t *testing.T) {
	home := &fake{title: "Home"}
	top := &fake{title: "Top"}
	r := New(home)
	r.Push(top)

	r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if len(top.seen) != 1 || len(home.seen) != 0 {
		t.Errorf("only the active screen receives input: top=%d home=%d", len(top.seen), len(home.seen))
	}
	if r.View(80, 20) != "Top" {
		t.Errorf("View = %q", r.View(80, 20))
	}

	r.Update(Back{})
	if r.Active() != home {
		t.Error("back should reveal the root")
	}
}

func TestCommands(t *testing.T) {
	s := &fake{title: "x"}
	if msg, ok := To(s)().(Open); !ok || msg.Screen != s {
		t.Error("To should produce Open")
	}
	if _, ok := GoBack().(Back); !ok {
		t.Error("GoBack")
	}
	if _, ok := GoHome().(Home); !ok {
		t.Error("GoHome")
	}
}
