// Package stats tracks per-item attempt counters and the learner's aggregate
// study statistics.
package stats

import (
	"encoding/json"
	"math"
	"time"
)

// HistoryCap bounds the number of recent sessions kept in Aggregate.
const HistoryCap = 50

// ItemStats holds attempt counters for a single item.
type ItemStats struct {
	ItemID          int       `json:"-"`
	TotalAttempts   int       `json:"totalAttempts"`
	CorrectAttempts int       `json:"correctAttempts"`
	LastAttempt     time.Time `json:"lastAttempt,omitzero"`
}

// Attempted reports whether the item has been answered at least once.
func (s ItemStats) Attempted() bool {
	return s.TotalAttempts > 0
}

// Accuracy returns the percentage of correct attempts rounded to one decimal
// place, or 0 for an unattempted item.
func (s ItemStats) Accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return math.Round(float64(s.CorrectAttempts)/float64(s.TotalAttempts)*1000) / 10
}

// MarshalJSON adds the derived accuracy to the stored record. It is ignored
// when reading the record back.
func (s ItemStats) MarshalJSON() ([]byte, error) {
	type record ItemStats
	return json.Marshal(struct {
		record
		Accuracy float64 `json:"accuracy"`
	}{record(s), s.Accuracy()})
}

// Grade is a coarse accuracy band used for display.
type Grade string

const (
	GradeNone    Grade = "none"
	GradeGood    Grade = "good"
	GradeAverage Grade = "average"
	GradePoor    Grade = "poor"
)

// Accuracy thresholds, in percent.
const (
	GoodAccuracy = 70.0
	PoorAccuracy = 50.0
)

// Grade returns the accuracy band of the item.
func (s ItemStats) Grade() Grade {
	switch acc := s.Accuracy(); {
	case !s.Attempted():
		return GradeNone
	case acc >= GoodAccuracy:
		return GradeGood
	case acc >= PoorAccuracy:
		return GradeAverage
	default:
		return GradePoor
	}
}

// SessionRecord summarizes one completed session.
type SessionRecord struct {
	Date    time.Time `json:"date"`
	Correct int       `json:"correct"`
	Total   int       `json:"total"`
	Time    int       `json:"time"` // seconds
}

// Aggregate holds the learner's global statistics.
type Aggregate struct {
	TotalSessions  int             `json:"totalSessions"`
	TotalAnswered  int             `json:"totalAnswered"`
	CorrectAnswers int             `json:"correctAnswers"`
	TotalTime      int             `json:"totalTime"` // seconds
	CurrentStreak  int             `json:"currentStreak"`
	MaxStreak      int             `json:"maxStreak"`
	RecentSessions []SessionRecord `json:"recentSessions"`
}

// Accuracy returns the overall correct ratio in [0, 1].
func (a Aggregate) Accuracy() float64 {
	if a.TotalAnswered == 0 {
		return 0
	}
	return float64(a.CorrectAnswers) / float64(a.TotalAnswered)
}

// AverageSessionTime returns the mean completed-session duration.
func (a Aggregate) AverageSessionTime() time.Duration {
	if a.TotalSessions == 0 {
		return 0
	}
	return time.Duration(a.TotalTime/a.TotalSessions) * time.Second
}

func (a Aggregate) clone() Aggregate {
	out := a
	out.RecentSessions = append([]SessionRecord(nil), a.RecentSessions...)
	return out
}

// sanitize repairs counters that violate the aggregate's invariants.
func (a *Aggregate) sanitize() {
	a.TotalSessions = max(a.TotalSessions, 0)
	a.TotalAnswered = max(a.TotalAnswered, 0)
	a.CorrectAnswers = min(max(a.CorrectAnswers, 0), a.TotalAnswered)
	a.TotalTime = max(a.TotalTime, 0)
	a.CurrentStreak = max(a.CurrentStreak, 0)
	a.MaxStreak = max(a.MaxStreak, a.CurrentStreak)
	if n := len(a.RecentSessions); n > HistoryCap {
		a.RecentSessions = a.RecentSessions[n-HistoryCap:]
	}
}
