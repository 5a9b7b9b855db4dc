package session

import (
	"time"

	"github.com/abhisek/kioku/internal/mastery"
)

// Summary holds the results of a completed session.
type Summary struct {
	SessionID      string
	Mode           Mode
	Duration       time.Duration
	TotalQuestions int
	TotalAnswered  int
	TotalCorrect   int
	Accuracy       float64
	TierBefore     mastery.Tier
	TierAfter      mastery.Tier
}

// TierChange returns the tier transition caused by the session, or nil.
func (s *Summary) TierChange() *mastery.Transition {
	if s.TierBefore == "" {
		return nil
	}
	return mastery.Compare(s.TierBefore, s.TierAfter)
}

// buildSummary creates a Summary from finished progress.
func buildSummary(mode Mode, p Progress, elapsed time.Duration, tierAfter mastery.Tier) *Summary {
	var accuracy float64
	if p.SessionTotal > 0 {
		accuracy = float64(p.SessionCorrect) / float64(p.SessionTotal)
	}
	return &Summary{
		SessionID:      p.SessionID,
		Mode:           mode,
		Duration:       elapsed,
		TotalQuestions: p.Len(),
		TotalAnswered:  p.SessionTotal,
		TotalCorrect:   p.SessionCorrect,
		Accuracy:       accuracy,
		TierBefore:     p.Tier,
		TierAfter:      tierAfter,
	}
}
