// Package mastery classifies the learner into a proficiency tier from
// aggregate study statistics.
package mastery

import "github.com/abhisek/kioku/internal/stats"

// Tier is the learner's proficiency level.
type Tier string

const (
	TierBeginner     Tier = "beginner"
	TierIntermediate Tier = "intermediate"
	TierAdvanced     Tier = "advanced"
	TierExpert       Tier = "expert"
)

// MinAnswered is the number of answers below which every learner is a beginner.
const MinAnswered = 10

// threshold is the minimum accuracy and best streak for a tier.
type threshold struct {
	tier      Tier
	accuracy  float64
	maxStreak int
}

// thresholds are checked in order; the first match wins.
var thresholds = []threshold{
	{TierExpert, 0.9, 20},
	{TierAdvanced, 0.8, 10},
	{TierIntermediate, 0.7, 5},
}

// Classify derives the tier from aggregate statistics.
func Classify(agg stats.Aggregate) Tier {
	if agg.TotalAnswered < MinAnswered {
		return TierBeginner
	}
	acc := agg.Accuracy()
	for _, th := range thresholds {
		if acc >= th.accuracy && agg.MaxStreak >= th.maxStreak {
			return th.tier
		}
	}
	return TierBeginner
}

// Rank orders tiers from beginner (0) to expert (3).
func (t Tier) Rank() int {
	switch t {
	case TierIntermediate:
		return 1
	case TierAdvanced:
		return 2
	case TierExpert:
		return 3
	default:
		return 0
	}
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	switch t {
	case TierIntermediate:
		return "Intermediate"
	case TierAdvanced:
		return "Advanced"
	case TierExpert:
		return "Expert"
	default:
		return "Beginner"
	}
}

// Transition records a tier change for display.
type Transition struct {
	From Tier
	To   Tier
}

// Promoted reports whether the transition moved up a tier.
func (tr Transition) Promoted() bool {
	return tr.To.Rank() > tr.From.Rank()
}

// Compare returns the transition between two tiers, or nil if unchanged.
func Compare(before, after Tier) *Transition {
	if before == after {
		return nil
	}
	return &Transition{From: before, To: after}
}
