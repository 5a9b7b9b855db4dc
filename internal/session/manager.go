package session

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/kioku/internal/mastery"
	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/spacedrep"
	"github.com/abhisek/kioku/internal/stats"
	"github.com/abhisek/kioku/internal/store"
)

// Catalog is the part of the item bank the manager reads.
type Catalog interface {
	IDs() []int
}

// Scheduler is the review scheduler as seen by the manager.
type Scheduler interface {
	Schedule
	RecordOutcome(itemID int, correct bool, now time.Time) spacedrep.ReviewState
}

// StatsRecorder is the statistics aggregator as seen by the manager.
type StatsRecorder interface {
	RecordAnswer(itemID int, correct bool, now time.Time) stats.ItemStats
	FinalizeSession(rec stats.SessionRecord) stats.Aggregate
	Aggregate() stats.Aggregate
}

// WeaknessSet is the flagged-item set as seen by the manager.
type WeaknessSet interface {
	Flag(id int) bool
	IDs() []int
}

// EventLog receives the answer and session lifecycle events. It is called on
// the answer path, so an implementation should queue rather than wait on I/O.
type EventLog interface {
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data store.SessionEventData) error
}

// Deps are the collaborators of a Manager. Events, Sink, Clock and Logger
// are optional.
type Deps struct {
	Catalog    Catalog
	Scheduler  Scheduler
	Stats      StatsRecorder
	Weaknesses WeaknessSet
	Planner    *AdaptivePlanner
	Events     EventLog
	Sink       persist.Sink
	Clock      func() time.Time
	Logger     *slog.Logger
}

// StartOptions configures Start.
type StartOptions struct {
	// Items is the id list for category and search modes.
	Items []int

	// Restart discards a saved session for the mode instead of refusing.
	Restart bool

	// Shuffle randomizes the order of a non-adaptive sequence.
	Shuffle bool
}

// Manager drives the study session lifecycle. It keeps at most one saved
// session per mode and at most one active session. Methods must be called
// from a single goroutine.
type Manager struct {
	deps     Deps
	progress map[Mode]*Progress
	active   Mode
	phase    Phase
	last     *Summary
	subs     []func(Event)
}

// NewManager creates a manager with the saved sessions in snap. Saved
// sessions that cannot be resumed are dropped.
func NewManager(deps Deps, snap ProgressSnapshot) *Manager {
	if deps.Sink == nil {
		deps.Sink = persist.Discard
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Planner == nil {
		deps.Planner = NewPlanner(deps.Scheduler, nil)
	}

	m := &Manager{
		deps:     deps,
		progress: make(map[Mode]*Progress, len(snap)),
	}
	for mode, p := range snap {
		if !mode.Valid() || !p.valid() {
			deps.Logger.Warn("dropping unusable saved session", "mode", mode)
			continue
		}
		p := p.clone()
		m.progress[mode] = &p
	}
	return m
}

// Subscribe registers fn to receive change notifications.
func (m *Manager) Subscribe(fn func(Event)) {
	m.subs = append(m.subs, fn)
}

func (m *Manager) emit(ev Event) {
	for _, fn := range m.subs {
		fn(ev)
	}
}

// Phase returns the lifecycle state.
func (m *Manager) Phase() Phase {
	return m.phase
}

// Active returns the active mode and a copy of its progress.
func (m *Manager) Active() (Mode, Progress, bool) {
	if m.phase != PhaseActive {
		return "", Progress{}, false
	}
	return m.active, m.progress[m.active].clone(), true
}

// Saved returns a copy of the saved progress for mode.
func (m *Manager) Saved(mode Mode) (Progress, bool) {
	p, ok := m.progress[mode]
	if !ok {
		return Progress{}, false
	}
	return p.clone(), true
}

// SavedModes returns the modes with a saved session, in Modes order.
func (m *Manager) SavedModes() []Mode {
	var out []Mode
	for _, mode := range Modes {
		if _, ok := m.progress[mode]; ok {
			out = append(out, mode)
		}
	}
	return out
}

// LastSummary returns the summary of the most recently completed session.
func (m *Manager) LastSummary() *Summary {
	return m.last
}

// Start begins a new session in mode. It refuses with ErrSessionInFlight when
// a saved session exists and opts.Restart is not set; nothing changes in that
// case. An empty sequence returns ErrNoItems, also without changes.
func (m *Manager) Start(ctx context.Context, mode Mode, opts StartOptions) (Progress, error) {
	if !mode.Valid() {
		return Progress{}, ErrUnknownMode
	}
	if _, exists := m.progress[mode]; exists && !opts.Restart {
		return Progress{}, ErrSessionInFlight
	}

	now := m.deps.Clock()
	tier := mastery.Classify(m.deps.Stats.Aggregate())
	seq, err := m.deps.Planner.Sequence(mode, PlanInput{
		Items:      m.deps.Catalog.IDs(),
		Tier:       tier,
		Weaknesses: m.deps.Weaknesses.IDs(),
		Supplied:   opts.Items,
		Shuffle:    opts.Shuffle,
		Now:        now,
	})
	if err != nil {
		return Progress{}, err
	}
	if len(seq) == 0 {
		return Progress{}, ErrNoItems
	}

	// A session still active is abandoned before the new one takes over.
	m.Abandon()
	p := &Progress{
		SessionID: uuid.NewString(),
		Items:     seq,
		StartTime: now,
		Tier:      tier,
	}
	m.progress[mode] = p
	m.active = mode
	m.phase = PhaseActive
	m.save()

	m.appendSessionEvent(ctx, mode, p, "start", 0)
	m.emit(Event{Kind: EventStart, Mode: mode, Progress: p.clone()})
	return p.clone(), nil
}

// Resume makes the saved session for mode active. It returns false and
// changes nothing when no session is saved.
func (m *Manager) Resume(mode Mode) bool {
	p, ok := m.progress[mode]
	if !ok {
		return false
	}
	if m.active != mode {
		m.Abandon()
	}
	m.active = mode
	m.phase = PhaseActive
	m.emit(Event{Kind: EventResume, Mode: mode, Progress: p.clone()})
	return true
}

// Answer records the learner's response to the current item.
func (m *Manager) Answer(ctx context.Context, a Attempt) (AnswerResult, error) {
	p, err := m.current()
	if err != nil {
		return AnswerResult{}, err
	}

	now := m.deps.Clock()
	itemID := p.Current()

	res := AnswerResult{
		ItemID:  itemID,
		Correct: a.Correct,
		Review:  m.deps.Scheduler.RecordOutcome(itemID, a.Correct, now),
		Stats:   m.deps.Stats.RecordAnswer(itemID, a.Correct, now),
	}
	if !a.Correct {
		res.Flagged = m.deps.Weaknesses.Flag(itemID)
	}

	p.SessionTotal++
	if a.Correct {
		p.SessionCorrect++
	}
	m.save()

	if m.deps.Events != nil {
		err := m.deps.Events.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:      p.SessionID,
			Mode:           string(m.active),
			ItemID:         itemID,
			Correct:        a.Correct,
			Choice:         a.Choice,
			Reasoning:      a.Reasoning,
			ResponseTimeMs: a.ResponseTime,
		})
		if err != nil {
			m.deps.Logger.Warn("append answer event", "item", itemID, "err", err)
		}
	}

	m.emit(Event{Kind: EventAnswer, Mode: m.active, Progress: p.clone(), Answer: &res})
	return res, nil
}

// Advance moves to the next item. At the last item it completes the session
// and returns its summary.
func (m *Manager) Advance(ctx context.Context) (*Summary, error) {
	p, err := m.current()
	if err != nil {
		return nil, err
	}
	if p.AtEnd() {
		return m.complete(ctx), nil
	}
	m.moveTo(p, p.CurrentIndex+1)
	return nil, nil
}

// Retreat moves to the previous item. It is ignored at the first item.
func (m *Manager) Retreat() error {
	p, err := m.current()
	if err != nil {
		return err
	}
	m.moveTo(p, p.CurrentIndex-1)
	return nil
}

// GoTo jumps to index i. Out-of-range indexes are ignored.
func (m *Manager) GoTo(i int) error {
	p, err := m.current()
	if err != nil {
		return err
	}
	m.moveTo(p, i)
	return nil
}

func (m *Manager) moveTo(p *Progress, i int) {
	if i < 0 || i >= p.Len() || i == p.CurrentIndex {
		return
	}
	p.CurrentIndex = i
	m.save()
	m.emit(Event{Kind: EventMove, Mode: m.active, Progress: p.clone()})
}

func (m *Manager) complete(ctx context.Context) *Summary {
	mode := m.active
	p := m.progress[mode]
	now := m.deps.Clock()

	secs := int(math.Round(now.Sub(p.StartTime).Seconds()))
	secs = max(secs, 0)

	agg := m.deps.Stats.FinalizeSession(stats.SessionRecord{
		Date:    now,
		Correct: p.SessionCorrect,
		Total:   p.SessionTotal,
		Time:    secs,
	})

	delete(m.progress, mode)
	m.save()
	m.appendSessionEvent(ctx, mode, p, "end", secs)

	summary := buildSummary(mode, *p, time.Duration(secs)*time.Second, mastery.Classify(agg))
	m.active = ""
	m.phase = PhaseCompleted
	m.last = summary

	m.emit(Event{Kind: EventComplete, Mode: mode, Progress: p.clone(), Summary: summary})
	return summary
}

// Abandon leaves the active session saved for a later Resume.
func (m *Manager) Abandon() {
	if m.phase != PhaseActive {
		return
	}
	mode := m.active
	p := m.progress[mode]
	m.active = ""
	m.phase = PhaseIdle
	m.emit(Event{Kind: EventAbandon, Mode: mode, Progress: p.clone()})
}

// Discard deletes the saved session for mode. It returns false if none exists.
func (m *Manager) Discard(mode Mode) bool {
	p, ok := m.progress[mode]
	if !ok {
		return false
	}
	delete(m.progress, mode)
	if m.phase == PhaseActive && m.active == mode {
		m.active = ""
		m.phase = PhaseIdle
	}
	m.save()
	m.emit(Event{Kind: EventDiscard, Mode: mode, Progress: p.clone()})
	return true
}

func (m *Manager) current() (*Progress, error) {
	if m.phase != PhaseActive {
		return nil, ErrNoActiveSession
	}
	p, ok := m.progress[m.active]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return p, nil
}

// Snapshot exports the saved sessions for persistence.
func (m *Manager) Snapshot() ProgressSnapshot {
	out := make(ProgressSnapshot, len(m.progress))
	for mode, p := range m.progress {
		out[mode] = p.clone()
	}
	return out
}

func (m *Manager) save() {
	m.deps.Sink.Put(store.KeySessionProgress, m.Snapshot())
}

func (m *Manager) appendSessionEvent(ctx context.Context, mode Mode, p *Progress, action string, secs int) {
	if m.deps.Events == nil {
		return
	}
	err := m.deps.Events.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:       p.SessionID,
		Mode:            string(mode),
		Action:          action,
		QuestionsServed: p.SessionTotal,
		CorrectAnswers:  p.SessionCorrect,
		DurationSecs:    secs,
	})
	if err != nil {
		m.deps.Logger.Warn("append session event", "action", action, "err", err)
	}
}
