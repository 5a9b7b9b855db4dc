package session

import "github.com/abhisek/kioku/internal/mastery"

// Pool names a source of candidate items for adaptive selection.
type Pool string

const (
	PoolUnanswered Pool = "unanswered"
	PoolStruggling Pool = "struggling"
	PoolLearning   Pool = "learning"
)

// Quota takes at most Max items from Pool.
type Quota struct {
	Pool Pool
	Max  int
}

// AdaptiveMix is the per-tier selection recipe. Quotas are filled in order.
var AdaptiveMix = map[mastery.Tier][]Quota{
	mastery.TierExpert: {
		{PoolUnanswered, 15},
		{PoolStruggling, 5},
	},
	mastery.TierAdvanced: {
		{PoolUnanswered, 10},
		{PoolLearning, 5},
		{PoolStruggling, 5},
	},
	mastery.TierIntermediate: {
		{PoolStruggling, 8},
		{PoolLearning, 7},
		{PoolUnanswered, 5},
	},
	mastery.TierBeginner: {
		{PoolUnanswered, 20},
	},
}

// FallbackSize is how many catalog items an empty adaptive selection falls back to.
const FallbackSize = 20

// MixCap returns the largest number of items the tier's recipe can select.
func MixCap(tier mastery.Tier) int {
	total := 0
	for _, q := range AdaptiveMix[tier] {
		total += q.Max
	}
	return total
}
