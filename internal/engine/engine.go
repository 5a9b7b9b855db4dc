// Package engine assembles the learner state components behind one facade
// used by the CLI and the TUI.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/critique"
	"github.com/abhisek/kioku/internal/llm"
	"github.com/abhisek/kioku/internal/mastery"
	"github.com/abhisek/kioku/internal/notebook"
	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/session"
	"github.com/abhisek/kioku/internal/spacedrep"
	"github.com/abhisek/kioku/internal/stats"
	"github.com/abhisek/kioku/internal/store"
)

// ErrNoBackup is returned by Restore when no backup exists.
var ErrNoBackup = errors.New("no backup to restore")

// Options configures Load. KV and Catalog are required.
type Options struct {
	KV      store.KV
	Events  store.EventRepo
	Backups store.BackupRepo
	Catalog *catalog.Catalog

	// Provider enables LLM critiques; nil uses local fallbacks.
	Provider llm.Provider
	Critique critique.Config

	// BackupsKept bounds the number of backups kept by Reset.
	BackupsKept int

	Logger *slog.Logger
	Clock  func() time.Time
	Rand   rand.Source
}

// Engine is the process-wide learner state: every domain component, rehydrated
// from the KV store and writing back through a background persist.Writer.
type Engine struct {
	Catalog   *catalog.Catalog
	Scheduler *spacedrep.Scheduler
	Stats     *stats.Aggregator
	Notebook  *notebook.Notebook
	Sessions  *session.Manager
	Reports   *critique.Reports
	Analyzer  *critique.Analyzer

	opts   Options
	writer *persist.Writer
	events *persist.EventQueue // nil without an event log
	subs   []func(session.Event)
	logger *slog.Logger
}

// Load rehydrates learner state from opts.KV. Missing or malformed entries
// fall back to empty state with a warning.
func Load(ctx context.Context, opts Options) (*Engine, error) {
	if opts.KV == nil {
		return nil, errors.New("engine: KV is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("engine: catalog is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	e := &Engine{
		Catalog:  opts.Catalog,
		Analyzer: critique.NewAnalyzer(opts.Provider, opts.Critique, opts.Logger),
		opts:     opts,
		writer:   persist.NewWriter(opts.KV, opts.Logger),
		logger:   opts.Logger,
	}
	if opts.Events != nil {
		e.events = persist.NewEventQueue(opts.Events, opts.Logger)
	}
	e.hydrate(ctx)
	return e, nil
}

func (e *Engine) hydrate(ctx context.Context) {
	kv, log := e.opts.KV, e.logger

	var schedule spacedrep.SnapshotData
	persist.Load(ctx, kv, store.KeyReviewSchedule, &schedule, log)

	var items stats.ItemSnapshot
	persist.Load(ctx, kv, store.KeyQuestionStats, &items, log)

	var agg stats.Aggregate
	persist.Load(ctx, kv, store.KeyStatistics, &agg, log)

	var progress session.ProgressSnapshot
	persist.Load(ctx, kv, store.KeySessionProgress, &progress, log)

	var weaknesses []int
	persist.Load(ctx, kv, store.KeyWeaknesses, &weaknesses, log)

	var memos map[int]string
	persist.Load(ctx, kv, store.KeyMemos, &memos, log)

	var reports map[string]critique.DailyCritique
	persist.Load(ctx, kv, store.KeyDailyReports, &reports, log)

	e.Scheduler = spacedrep.NewScheduler(schedule, e.writer)
	e.Stats = stats.NewAggregator(items, agg, e.writer)
	e.Notebook = notebook.New(weaknesses, memos, e.writer)
	e.Reports = critique.NewReports(reports, e.writer)

	var events session.EventLog
	if e.events != nil {
		events = e.events
	}
	e.Sessions = session.NewManager(session.Deps{
		Catalog:    e.Catalog,
		Scheduler:  e.Scheduler,
		Stats:      e.Stats,
		Weaknesses: e.Notebook,
		Planner:    session.NewPlanner(e.Scheduler, e.opts.Rand),
		Events:     events,
		Sink:       e.writer,
		Clock:      e.opts.Clock,
		Logger:     e.logger,
	}, progress)
	for _, fn := range e.subs {
		e.Sessions.Subscribe(fn)
	}
}

// Subscribe registers fn for session change notifications. The subscription
// carries over to the session manager rebuilt by Reset and Restore.
func (e *Engine) Subscribe(fn func(session.Event)) {
	e.subs = append(e.subs, fn)
	e.Sessions.Subscribe(fn)
}

// Flush waits until every state change and event made so far is stored.
func (e *Engine) Flush(ctx context.Context) error {
	err := e.writer.Flush(ctx)
	if e.events != nil {
		err = errors.Join(err, e.events.Flush(ctx))
	}
	return err
}

// Close flushes pending writes and events and stops both background queues.
func (e *Engine) Close() error {
	var err error
	if e.events != nil {
		err = e.events.Close()
	}
	return errors.Join(err, e.writer.Close())
}

// Now returns the app clock's current time.
func (e *Engine) Now() time.Time {
	return e.opts.Clock()
}

// Tier classifies the learner from the aggregate statistics.
func (e *Engine) Tier() mastery.Tier {
	return mastery.Classify(e.Stats.Aggregate())
}

// Due returns the items due for review now, in catalog order.
func (e *Engine) Due() []int {
	return e.Scheduler.DueItems(e.Catalog.IDs(), e.Now())
}

// Upcoming returns the next scheduled reviews, soonest first.
func (e *Engine) Upcoming(limit int) []spacedrep.ReviewState {
	return e.Scheduler.Upcoming(e.Catalog.IDs(), e.Now(), limit)
}

// StudyRequest describes the session a learner asked for.
type StudyRequest struct {
	Mode     session.Mode
	Category string
	Query    string
	Scope    catalog.SearchScope

	// Resume continues the saved session for Mode when one exists.
	Resume bool
	// Restart replaces the saved session for Mode.
	Restart bool
	Shuffle bool
}

// Begin resumes or starts the session described by req. Without Resume or
// Restart an existing saved session yields session.ErrSessionInFlight.
func (e *Engine) Begin(ctx context.Context, req StudyRequest) (session.Progress, error) {
	if req.Resume && e.Sessions.Resume(req.Mode) {
		p, _ := e.Sessions.Saved(req.Mode)
		return p, nil
	}

	opts := session.StartOptions{Restart: req.Restart, Shuffle: req.Shuffle}
	switch req.Mode {
	case session.ModeCategory:
		if strings.TrimSpace(req.Category) == "" {
			return session.Progress{}, errors.New("category mode needs a category")
		}
		opts.Items = e.Catalog.ByCategory(req.Category)
	case session.ModeSearch:
		if strings.TrimSpace(req.Query) == "" {
			return session.Progress{}, errors.New("search mode needs a query")
		}
		opts.Items = e.Catalog.Search(req.Query, req.Scope)
	}
	return e.Sessions.Start(ctx, req.Mode, opts)
}

// CurrentItem returns the item in front of the learner.
func (e *Engine) CurrentItem() (catalog.Item, session.Progress, bool) {
	_, p, ok := e.Sessions.Active()
	if !ok {
		return catalog.Item{}, session.Progress{}, false
	}
	it, found := e.Catalog.Get(p.Current())
	return it, p, found
}

// Submit grades choice against the current item and records the answer.
func (e *Engine) Submit(ctx context.Context, choice, reasoning string, elapsed time.Duration) (session.AnswerResult, catalog.Item, error) {
	it, _, ok := e.CurrentItem()
	if !ok {
		return session.AnswerResult{}, catalog.Item{}, session.ErrNoActiveSession
	}
	choice = catalog.NormalizeChoice(choice)
	res, err := e.Sessions.Answer(ctx, session.Attempt{
		Correct:      it.Check(choice),
		Choice:       choice,
		Reasoning:    strings.TrimSpace(reasoning),
		ResponseTime: elapsed.Milliseconds(),
	})
	return res, it, err
}

// Critique analyzes one answer.
func (e *Engine) Critique(ctx context.Context, it catalog.Item, choice, reasoning string, correct bool) critique.Critique {
	return e.Analyzer.Analyze(ctx, critique.Request{
		Item:      it,
		Reasoning: reasoning,
		Choice:    choice,
		Correct:   correct,
	})
}

// DailyReport analyzes the answers recorded on day and stores the report.
func (e *Engine) DailyReport(ctx context.Context, day time.Time) (critique.DailyCritique, error) {
	if e.opts.Events == nil {
		return critique.DailyCritique{}, errors.New("daily report needs the event log")
	}

	if err := e.events.Flush(ctx); err != nil {
		return critique.DailyCritique{}, fmt.Errorf("flush events: %w", err)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	records, err := e.opts.Events.QueryAnswerEvents(ctx, store.QueryOpts{
		From: start,
		To:   start.AddDate(0, 0, 1),
	})
	if err != nil {
		return critique.DailyCritique{}, fmt.Errorf("query answers: %w", err)
	}

	outcomes := make([]critique.Outcome, 0, len(records))
	for _, r := range records {
		o := critique.Outcome{
			ItemID:       r.ItemID,
			Correct:      r.Correct,
			Choice:       r.Choice,
			Reasoning:    r.Reasoning,
			ResponseTime: time.Duration(r.ResponseTimeMs) * time.Millisecond,
		}
		if it, ok := e.Catalog.Get(r.ItemID); ok {
			o.Question = it.Question
		}
		outcomes = append(outcomes, o)
	}

	key := start.Format(critique.DayLayout)
	report := e.Analyzer.AnalyzeDay(ctx, key, outcomes)
	if report.Stats.Total > 0 {
		e.Reports.Put(key, report)
	}
	return report, nil
}

// Backup stores a copy of every state entry.
func (e *Engine) Backup(ctx context.Context) (*store.Backup, error) {
	if e.opts.Backups == nil {
		return nil, errors.New("backups are not configured")
	}
	if err := e.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush state: %w", err)
	}

	b := &store.Backup{Timestamp: e.Now(), Entries: make(map[string][]byte)}
	for _, key := range store.AllKeys {
		v, err := e.opts.KV.Load(ctx, key)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		b.Entries[key] = v
	}
	if err := e.opts.Backups.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("save backup: %w", err)
	}
	return b, nil
}

// Reset backs up the learner state, clears it, and reloads empty state.
func (e *Engine) Reset(ctx context.Context) (*store.Backup, error) {
	b, err := e.Backup(ctx)
	if err != nil {
		return nil, err
	}
	if e.opts.BackupsKept > 0 {
		if err := e.opts.Backups.Prune(ctx, e.opts.BackupsKept); err != nil {
			e.logger.Warn("prune backups", "err", err)
		}
	}

	for _, key := range store.AllKeys {
		if err := e.opts.KV.Delete(ctx, key); err != nil {
			return b, fmt.Errorf("clear %s: %w", key, err)
		}
	}
	e.hydrate(ctx)
	return b, nil
}

// Restore replaces the learner state with the latest backup.
func (e *Engine) Restore(ctx context.Context) (*store.Backup, error) {
	if e.opts.Backups == nil {
		return nil, errors.New("backups are not configured")
	}
	b, err := e.opts.Backups.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest backup: %w", err)
	}
	if b == nil {
		return nil, ErrNoBackup
	}
	if err := e.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush state: %w", err)
	}

	for _, key := range store.AllKeys {
		if v, ok := b.Entries[key]; ok {
			e.writer.PutRaw(key, v)
			continue
		}
		if err := e.opts.KV.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("clear %s: %w", key, err)
		}
	}
	if err := e.Flush(ctx); err != nil {
		return nil, fmt.Errorf("flush restore: %w", err)
	}
	e.hydrate(ctx)
	return b, nil
}

// Events returns the event log, or nil when none is configured. Session and
// answer queries first wait for queued appends.
func (e *Engine) Events() store.EventRepo {
	if e.opts.Events == nil {
		return nil
	}
	return flushedEvents{EventRepo: e.opts.Events, queue: e.events}
}

type flushedEvents struct {
	store.EventRepo
	queue *persist.EventQueue
}

func (f flushedEvents) QueryAnswerEvents(ctx context.Context, opts store.QueryOpts) ([]store.AnswerEventRecord, error) {
	if err := f.queue.Flush(ctx); err != nil {
		return nil, err
	}
	return f.EventRepo.QueryAnswerEvents(ctx, opts)
}

func (f flushedEvents) QuerySessionEvents(ctx context.Context, opts store.QueryOpts) ([]store.SessionEventRecord, error) {
	if err := f.queue.Flush(ctx); err != nil {
		return nil, err
	}
	return f.EventRepo.QuerySessionEvents(ctx, opts)
}
