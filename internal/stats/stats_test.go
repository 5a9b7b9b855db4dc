package stats

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/store"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestItemStats_Accuracy(t *testing.T) {
	tests := []struct {
		correct, total int
		want           float64
	}{
		{0, 0, 0},
		{1, 1, 100},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 7, 71.4},
	}
	for _, tt := range tests {
		s := ItemStats{CorrectAttempts: tt.correct, TotalAttempts: tt.total}
		if got := s.Accuracy(); got != tt.want {
			t.Errorf("Accuracy(%d/%d) = %v, want %v", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestItemStats_StoredRecordCarriesAccuracy(t *testing.T) {
	snap := ItemSnapshot{4: {ItemID: 4, TotalAttempts: 3, CorrectAttempts: 2, LastAttempt: t0}}
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"totalAttempts":3`, `"correctAttempts":2`, `"accuracy":66.7`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("stored record %s missing %s", raw, want)
		}
	}

	var back ItemSnapshot
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if got := back[4]; got.TotalAttempts != 3 || got.CorrectAttempts != 2 || !got.LastAttempt.Equal(t0) {
		t.Errorf("read back %+v", got)
	}
}

func TestItemStats_Grade(t *testing.T) {
	tests := []struct {
		correct, total int
		want           Grade
	}{
		{0, 0, GradeNone},
		{7, 10, GradeGood},
		{1, 2, GradeAverage},
		{0, 3, GradePoor},
	}
	for _, tt := range tests {
		s := ItemStats{CorrectAttempts: tt.correct, TotalAttempts: tt.total}
		if got := s.Grade(); got != tt.want {
			t.Errorf("Grade(%d/%d) = %s, want %s", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestRecordAnswer_Streaks(t *testing.T) {
	a := NewAggregator(nil, Aggregate{}, nil)

	for _, correct := range []bool{true, true, true, false, true} {
		a.RecordAnswer(1, correct, t0)
	}

	agg := a.Aggregate()
	if agg.TotalAnswered != 5 {
		t.Errorf("TotalAnswered = %d, want 5", agg.TotalAnswered)
	}
	if agg.CorrectAnswers != 4 {
		t.Errorf("CorrectAnswers = %d, want 4", agg.CorrectAnswers)
	}
	if agg.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", agg.CurrentStreak)
	}
	if agg.MaxStreak != 3 {
		t.Errorf("MaxStreak = %d, want 3", agg.MaxStreak)
	}

	s := a.Item(1)
	if s.TotalAttempts != 5 || s.CorrectAttempts != 4 {
		t.Errorf("item = %d/%d, want 4/5", s.CorrectAttempts, s.TotalAttempts)
	}
	if s.Accuracy() != 80 {
		t.Errorf("item accuracy = %v, want 80", s.Accuracy())
	}
}

func TestItem_Unseen(t *testing.T) {
	a := NewAggregator(nil, Aggregate{}, nil)
	s := a.Item(99)
	if s.ItemID != 99 || s.TotalAttempts != 0 || s.Accuracy() != 0 {
		t.Errorf("Item(99) = %+v, want zero counters", s)
	}
}

func TestRecordAnswer_Persists(t *testing.T) {
	written := make(map[string]int)
	a := NewAggregator(nil, Aggregate{}, persist.SinkFunc(func(key string, _ any) {
		written[key]++
	}))

	a.RecordAnswer(1, true, t0)
	a.FinalizeSession(SessionRecord{Date: t0, Correct: 1, Total: 1, Time: 30})

	if written[store.KeyQuestionStats] != 1 {
		t.Errorf("questionStats writes = %d, want 1", written[store.KeyQuestionStats])
	}
	if written[store.KeyStatistics] != 2 {
		t.Errorf("statistics writes = %d, want 2", written[store.KeyStatistics])
	}
}

func TestFinalizeSession_HistoryCap(t *testing.T) {
	a := NewAggregator(nil, Aggregate{}, nil)

	for i := 0; i < HistoryCap+5; i++ {
		a.FinalizeSession(SessionRecord{Date: t0.Add(time.Duration(i) * time.Hour), Total: i, Time: 10})
	}

	agg := a.Aggregate()
	if agg.TotalSessions != HistoryCap+5 {
		t.Errorf("TotalSessions = %d, want %d", agg.TotalSessions, HistoryCap+5)
	}
	if agg.TotalTime != (HistoryCap+5)*10 {
		t.Errorf("TotalTime = %d, want %d", agg.TotalTime, (HistoryCap+5)*10)
	}
	if len(agg.RecentSessions) != HistoryCap {
		t.Fatalf("len(RecentSessions) = %d, want %d", len(agg.RecentSessions), HistoryCap)
	}
	if agg.RecentSessions[0].Total != 5 {
		t.Errorf("oldest kept = %d, want 5", agg.RecentSessions[0].Total)
	}
	if last := agg.RecentSessions[HistoryCap-1]; last.Total != HistoryCap+4 {
		t.Errorf("newest = %d, want %d", last.Total, HistoryCap+4)
	}
}

func TestAggregate_ReturnsCopy(t *testing.T) {
	a := NewAggregator(nil, Aggregate{}, nil)
	a.FinalizeSession(SessionRecord{Total: 1})

	agg := a.Aggregate()
	agg.RecentSessions[0].Total = 99
	agg.TotalSessions = 99

	again := a.Aggregate()
	if again.RecentSessions[0].Total != 1 || again.TotalSessions != 1 {
		t.Errorf("aggregate mutated through copy: %+v", again)
	}
}

func TestNewAggregator_RepairsState(t *testing.T) {
	history := make([]SessionRecord, HistoryCap+3)
	a := NewAggregator(
		ItemSnapshot{4: {TotalAttempts: 2, CorrectAttempts: 5}},
		Aggregate{TotalAnswered: 3, CorrectAnswers: 10, CurrentStreak: 4, MaxStreak: 2, RecentSessions: history},
		nil,
	)

	agg := a.Aggregate()
	if agg.CorrectAnswers != 3 {
		t.Errorf("CorrectAnswers = %d, want 3", agg.CorrectAnswers)
	}
	if agg.MaxStreak != 4 {
		t.Errorf("MaxStreak = %d, want 4", agg.MaxStreak)
	}
	if len(agg.RecentSessions) != HistoryCap {
		t.Errorf("len(RecentSessions) = %d, want %d", len(agg.RecentSessions), HistoryCap)
	}
	if s := a.Item(4); s.CorrectAttempts != 2 || s.ItemID != 4 {
		t.Errorf("item 4 = %+v, want 2/2", s)
	}
}

func TestAggregate_Accuracy(t *testing.T) {
	if got := (Aggregate{}).Accuracy(); got != 0 {
		t.Errorf("empty Accuracy() = %v, want 0", got)
	}
	if got := (Aggregate{TotalAnswered: 4, CorrectAnswers: 3}).Accuracy(); got != 0.75 {
		t.Errorf("Accuracy() = %v, want 0.75", got)
	}
	if got := (Aggregate{TotalSessions: 2, TotalTime: 90}).AverageSessionTime(); got != 45*time.Second {
		t.Errorf("AverageSessionTime() = %v, want 45s", got)
	}
}
