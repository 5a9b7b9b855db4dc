// Package history lists finished study sessions with their answers.
package history

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/kioku/internal/router"
	"github.com/abhisek/kioku/internal/store"
	"github.com/abhisek/kioku/internal/ui/layout"
	"github.com/abhisek/kioku/internal/ui/theme"
)

// Limit bounds the number of sessions listed.
const Limit = 50

// SessionLog is the part of the event log the history screen reads.
type SessionLog interface {
	QuerySessionEvents(ctx context.Context, opts store.QueryOpts) ([]store.SessionEventRecord, error)
	QueryAnswerEvents(ctx context.Context, opts store.QueryOpts) ([]store.AnswerEventRecord, error)
}

// entry is one finished session and the answers logged under it.
type entry struct {
	store.SessionEventRecord
	answers []store.AnswerEventRecord
	open    bool
}

func (e entry) accuracy() float64 {
	if e.QuestionsServed == 0 {
		return 0
	}
	return float64(e.CorrectAnswers) / float64(e.QuestionsServed) * 100
}

type loadedMsg struct {
	entries []entry
	err     error
}

// load reads the end events, newest first, and attaches answers. A failed
// answer query still lists the sessions.
func load(ctx context.Context, log SessionLog) loadedMsg {
	if log == nil {
		return loadedMsg{}
	}
	events, err := log.QuerySessionEvents(ctx, store.QueryOpts{})
	if err != nil {
		return loadedMsg{err: err}
	}
	var entries []entry
	for _, ev := range slices.Backward(events) {
		if ev.Action != "end" {
			continue
		}
		entries = append(entries, entry{SessionEventRecord: ev})
		if len(entries) == Limit {
			break
		}
	}

	answers, err := log.QueryAnswerEvents(ctx, store.QueryOpts{})
	if err != nil {
		return loadedMsg{entries: entries}
	}
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.SessionID] = i
	}
	for _, a := range answers {
		if i, ok := index[a.SessionID]; ok {
			entries[i].answers = append(entries[i].answers, a)
		}
	}
	return loadedMsg{entries: entries}
}

// HistoryScreen displays completed sessions, newest first. Enter toggles the
// answer list of the selected session.
type HistoryScreen struct {
	log     SessionLog
	entries []entry
	cursor  int
	loaded  bool
	err     error
}

var (
	_ router.Screen = (*HistoryScreen)(nil)
	_ router.Hinter = (*HistoryScreen)(nil)
)

func New(log SessionLog) *HistoryScreen {
	return &HistoryScreen{log: log}
}

func (s *HistoryScreen) Init() tea.Cmd {
	log := s.log
	return func() tea.Msg { return load(context.Background(), log) }
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Answers"},
		{Key: "↑↓", Description: "Move"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.entries, s.err, s.loaded = msg.entries, msg.err, true

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, router.GoBack
		case "up", "k":
			s.cursor = max(s.cursor-1, 0)
		case "down", "j":
			s.cursor = max(min(s.cursor+1, len(s.entries)-1), 0)
		case "enter":
			if s.cursor < len(s.entries) {
				s.entries[s.cursor].open = !s.entries[s.cursor].open
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	switch {
	case s.err != nil:
		return layout.Centered("\n\nError: "+s.err.Error(), width, theme.Error)
	case !s.loaded:
		return layout.Centered("\n\nLoading history...", width, theme.TextDim)
	case len(s.entries) == 0:
		return layout.Centered("\n\nNo finished sessions yet.", width, theme.TextDim)
	}

	var lines []string
	selectedAt := 0
	for i, e := range s.entries {
		style, marker := lipgloss.NewStyle().Foreground(theme.Text), "  "
		if i == s.cursor {
			style, marker, selectedAt = theme.Selected, "> ", len(lines)
		}
		d := e.DurationSecs
		lines = append(lines, style.Render(fmt.Sprintf("%s%s  %-9s %d:%02d  %d answered  %.0f%% accuracy",
			marker, e.Timestamp.Format("Jan 02, 2006 15:04"), e.Mode, d/60, d%60, e.QuestionsServed, e.accuracy())))
		if e.open {
			lines = append(lines, answerLines(e.answers)...)
		}
	}

	// Keep the cursor row inside the visible window.
	rows := max(height-2, 1)
	start := min(max(selectedAt-rows/2, 0), max(len(lines)-rows, 0))
	lines = lines[start:min(start+rows, len(lines))]

	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, l))
		b.WriteString("\n")
	}
	return b.String()
}

func answerLines(answers []store.AnswerEventRecord) []string {
	if len(answers) == 0 {
		return []string{lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    no answers recorded")}
	}
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		mark, style := "✗", theme.Incorrect
		if a.Correct {
			mark, style = "✓", theme.Correct
		}
		line := fmt.Sprintf("    %s #%-4d %s  %.1fs", mark, a.ItemID, a.Choice, float64(a.ResponseTimeMs)/1000)
		if a.Reasoning != "" {
			line += "  " + truncate(a.Reasoning, 40)
		}
		out = append(out, style.Render(line))
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
