package stats

import (
	"time"

	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/store"
)

// ItemSnapshot is the persisted per-item counters keyed by item id.
type ItemSnapshot map[int]ItemStats

// Aggregator owns per-item counters and the aggregate statistics.
type Aggregator struct {
	items map[int]*ItemStats
	agg   Aggregate
	sink  persist.Sink
}

// NewAggregator creates an aggregator from persisted state. Counters that
// break their invariants are repaired.
func NewAggregator(items ItemSnapshot, agg Aggregate, sink persist.Sink) *Aggregator {
	if sink == nil {
		sink = persist.Discard
	}
	a := &Aggregator{
		items: make(map[int]*ItemStats, len(items)),
		agg:   agg.clone(),
		sink:  sink,
	}
	a.agg.sanitize()
	for id, s := range items {
		s.ItemID = id
		s.TotalAttempts = max(s.TotalAttempts, 0)
		s.CorrectAttempts = min(max(s.CorrectAttempts, 0), s.TotalAttempts)
		a.items[id] = &s
	}
	return a
}

// RecordAnswer counts one answer for itemID and updates the streaks.
// It returns the item's counters after the answer.
func (a *Aggregator) RecordAnswer(itemID int, correct bool, now time.Time) ItemStats {
	s := a.items[itemID]
	if s == nil {
		s = &ItemStats{ItemID: itemID}
		a.items[itemID] = s
	}

	s.TotalAttempts++
	s.LastAttempt = now
	a.agg.TotalAnswered++

	if correct {
		s.CorrectAttempts++
		a.agg.CorrectAnswers++
		a.agg.CurrentStreak++
		a.agg.MaxStreak = max(a.agg.MaxStreak, a.agg.CurrentStreak)
	} else {
		a.agg.CurrentStreak = 0
	}

	a.sink.Put(store.KeyQuestionStats, a.ItemSnapshot())
	a.sink.Put(store.KeyStatistics, a.agg)
	return *s
}

// FinalizeSession records a completed session and returns the updated
// aggregate. The oldest history entry is evicted past HistoryCap.
func (a *Aggregator) FinalizeSession(rec SessionRecord) Aggregate {
	a.agg.TotalSessions++
	a.agg.TotalTime += max(rec.Time, 0)
	a.agg.RecentSessions = append(a.agg.RecentSessions, rec)
	if n := len(a.agg.RecentSessions); n > HistoryCap {
		a.agg.RecentSessions = append([]SessionRecord(nil), a.agg.RecentSessions[n-HistoryCap:]...)
	}

	a.sink.Put(store.KeyStatistics, a.agg)
	return a.agg.clone()
}

// Item returns the counters for itemID; unseen items have zero counters.
func (a *Aggregator) Item(itemID int) ItemStats {
	if s := a.items[itemID]; s != nil {
		return *s
	}
	return ItemStats{ItemID: itemID}
}

// Aggregate returns a copy of the aggregate statistics.
func (a *Aggregator) Aggregate() Aggregate {
	return a.agg.clone()
}

// ItemSnapshot exports the per-item counters for persistence.
func (a *Aggregator) ItemSnapshot() ItemSnapshot {
	out := make(ItemSnapshot, len(a.items))
	for id, s := range a.items {
		out[id] = *s
	}
	return out
}
