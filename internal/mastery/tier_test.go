package mastery

import (
	"testing"

	"github.com/abhisek/kioku/internal/stats"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		answered  int
		correct   int
		maxStreak int
		want      Tier
	}{
		{"no answers", 0, 0, 0, TierBeginner},
		{"below minimum even when perfect", 9, 9, 9, TierBeginner},
		{"expert", 100, 95, 25, TierExpert},
		{"expert accuracy, short streak", 100, 95, 15, TierAdvanced},
		{"advanced", 50, 40, 10, TierAdvanced},
		{"intermediate", 10, 7, 5, TierIntermediate},
		{"high accuracy, no streak", 10, 9, 4, TierBeginner},
		{"low accuracy, long streak", 100, 60, 30, TierBeginner},
		{"exact expert boundary", 20, 18, 20, TierExpert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := stats.Aggregate{
				TotalAnswered:  tt.answered,
				CorrectAnswers: tt.correct,
				MaxStreak:      tt.maxStreak,
			}
			if got := Classify(agg); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRankOrder(t *testing.T) {
	order := []Tier{TierBeginner, TierIntermediate, TierAdvanced, TierExpert}
	for i, tier := range order {
		if tier.Rank() != i {
			t.Errorf("%s.Rank() = %d, want %d", tier, tier.Rank(), i)
		}
		if tier.Label() == "" {
			t.Errorf("%s has no label", tier)
		}
	}
}

func TestCompare(t *testing.T) {
	if tr := Compare(TierBeginner, TierBeginner); tr != nil {
		t.Errorf("Compare(same) = %+v, want nil", tr)
	}
	tr := Compare(TierBeginner, TierAdvanced)
	if tr == nil || !tr.Promoted() {
		t.Fatalf("Compare(beginner, advanced) = %+v, want promotion", tr)
	}
	if Compare(TierExpert, TierIntermediate).Promoted() {
		t.Error("expected demotion")
	}
}
