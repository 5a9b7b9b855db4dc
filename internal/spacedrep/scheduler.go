package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/store"
)

// ReviewStateData is the persisted form of a ReviewState.
type ReviewStateData struct {
	Level              int    `json:"level"`
	ConsecutiveCorrect int    `json:"consecutiveCorrect"`
	LastReviewed       string `json:"lastReviewed"`
	NextReview         string `json:"nextReview"`
}

// SnapshotData is the persisted review schedule keyed by item id.
type SnapshotData map[int]ReviewStateData

// Partitions groups reviewed items by bucket, each in input order.
type Partitions struct {
	Mastered   []int
	Learning   []int
	Struggling []int
}

// Scheduler manages spaced repetition review scheduling.
type Scheduler struct {
	reviews map[int]*ReviewState
	sink    persist.Sink
}

// NewScheduler creates a scheduler, loading review state from the snapshot.
// Every RecordOutcome writes the full schedule to sink.
func NewScheduler(snap SnapshotData, sink persist.Sink) *Scheduler {
	if sink == nil {
		sink = persist.Discard
	}
	s := &Scheduler{
		reviews: make(map[int]*ReviewState),
		sink:    sink,
	}
	s.loadFromSnapshot(snap)
	return s
}

func (s *Scheduler) loadFromSnapshot(data SnapshotData) {
	for itemID, rd := range data {
		nextReview, err := time.Parse(time.RFC3339Nano, rd.NextReview)
		if err != nil {
			continue
		}
		lastReview, err := time.Parse(time.RFC3339Nano, rd.LastReviewed)
		if err != nil {
			continue
		}
		if nextReview.Before(lastReview) {
			nextReview = lastReview
		}
		s.reviews[itemID] = &ReviewState{
			ItemID:             itemID,
			Level:              min(max(rd.Level, 0), MaxLevel),
			ConsecutiveCorrect: max(rd.ConsecutiveCorrect, 0),
			LastReviewed:       lastReview,
			NextReview:         nextReview,
		}
	}
}

// RecordOutcome applies one answer to the item's schedule and returns the
// updated state. State is created on the item's first answer.
func (s *Scheduler) RecordOutcome(itemID int, correct bool, now time.Time) ReviewState {
	rs := s.reviews[itemID]
	if rs == nil {
		rs = &ReviewState{ItemID: itemID, LastReviewed: now, NextReview: now}
		s.reviews[itemID] = rs
	}

	rs.LastReviewed = now

	if correct {
		rs.Level = min(rs.Level+1, MaxLevel)
		rs.ConsecutiveCorrect++
		rs.NextReview = after(now, IntervalDays[rs.Level])
	} else {
		rs.Level = max(rs.Level-1, 0)
		rs.ConsecutiveCorrect = 0
		rs.NextReview = after(now, RetryIntervalDays)
	}

	s.sink.Put(store.KeyReviewSchedule, s.SnapshotData())
	return *rs
}

// State returns the review state for an item and whether it has been reviewed.
func (s *Scheduler) State(itemID int) (ReviewState, bool) {
	rs := s.reviews[itemID]
	if rs == nil {
		return ReviewState{ItemID: itemID}, false
	}
	return *rs, true
}

// Len returns the number of reviewed items.
func (s *Scheduler) Len() int {
	return len(s.reviews)
}

// DueItems returns the reviewed items that are due at now, in input order.
func (s *Scheduler) DueItems(items []int, now time.Time) []int {
	var due []int
	for _, id := range items {
		if rs := s.reviews[id]; rs != nil && rs.IsDue(now) {
			due = append(due, id)
		}
	}
	return due
}

// Partitions buckets the reviewed items by level. Unreviewed items are in no
// bucket; see Unanswered.
func (s *Scheduler) Partitions(items []int) Partitions {
	var p Partitions
	for _, id := range items {
		rs := s.reviews[id]
		if rs == nil {
			continue
		}
		switch rs.Bucket() {
		case BucketMastered:
			p.Mastered = append(p.Mastered, id)
		case BucketLearning:
			p.Learning = append(p.Learning, id)
		default:
			p.Struggling = append(p.Struggling, id)
		}
	}
	return p
}

// Unanswered returns the items without review state, in input order.
func (s *Scheduler) Unanswered(items []int) []int {
	var out []int
	for _, id := range items {
		if s.reviews[id] == nil {
			out = append(out, id)
		}
	}
	return out
}

// Upcoming returns up to limit reviewed items that are not yet due, soonest
// first. A non-positive limit returns all of them.
func (s *Scheduler) Upcoming(items []int, now time.Time, limit int) []ReviewState {
	var out []ReviewState
	for _, id := range items {
		if rs := s.reviews[id]; rs != nil && !rs.IsDue(now) {
			out = append(out, *rs)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextReview.Before(out[j].NextReview)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SnapshotData exports the current review state for persistence.
func (s *Scheduler) SnapshotData() SnapshotData {
	data := make(SnapshotData, len(s.reviews))
	for itemID, rs := range s.reviews {
		data[itemID] = ReviewStateData{
			Level:              rs.Level,
			ConsecutiveCorrect: rs.ConsecutiveCorrect,
			LastReviewed:       rs.LastReviewed.Format(time.RFC3339Nano),
			NextReview:         rs.NextReview.Format(time.RFC3339Nano),
		}
	}
	return data
}
