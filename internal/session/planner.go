package session

import (
	"math/rand/v2"
	"time"

	"github.com/abhisek/kioku/internal/mastery"
	"github.com/abhisek/kioku/internal/spacedrep"
)

// Schedule is the part of the review scheduler the planner reads.
type Schedule interface {
	DueItems(items []int, now time.Time) []int
	Partitions(items []int) spacedrep.Partitions
	Unanswered(items []int) []int
}

// PlanInput carries the learner state a question sequence is built from.
type PlanInput struct {
	// Items is the catalog's item ids in catalog order.
	Items []int

	// Tier is the learner's current proficiency tier.
	Tier mastery.Tier

	// Weaknesses is the flagged item set.
	Weaknesses []int

	// Supplied is the externally filtered id list for category and search.
	Supplied []int

	// Shuffle randomizes the order of a non-adaptive sequence.
	Shuffle bool

	Now time.Time
}

// AdaptivePlanner builds the question sequence for each study mode.
type AdaptivePlanner struct {
	Schedule Schedule
	rng      *rand.Rand
}

// NewPlanner creates a planner. A nil src seeds from the runtime's random source.
func NewPlanner(schedule Schedule, src rand.Source) *AdaptivePlanner {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &AdaptivePlanner{Schedule: schedule, rng: rand.New(src)}
}

// Sequence returns the ordered item ids for a new session in mode.
func (p *AdaptivePlanner) Sequence(mode Mode, in PlanInput) ([]int, error) {
	var seq []int
	switch mode {
	case ModeAll:
		seq = append([]int(nil), in.Items...)
	case ModeRandom:
		seq = append([]int(nil), in.Items...)
		p.shuffle(seq)
	case ModeAdaptive:
		return SelectAdaptive(in.Items,
			p.Schedule.Partitions(in.Items),
			p.Schedule.Unanswered(in.Items),
			in.Tier,
		), nil
	case ModeWeakness:
		seq = intersect(in.Items, in.Weaknesses)
	case ModeReview:
		seq = p.Schedule.DueItems(in.Items, in.Now)
	case ModeCategory, ModeSearch:
		seq = restrict(in.Supplied, in.Items)
	default:
		return nil, ErrUnknownMode
	}

	if in.Shuffle && mode != ModeRandom {
		p.shuffle(seq)
	}
	return seq, nil
}

func (p *AdaptivePlanner) shuffle(ids []int) {
	p.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

// SelectAdaptive concatenates bounded slices of the candidate pools according
// to the tier's recipe. Pools are drawn in the order given, which callers keep
// in catalog order. An empty selection falls back to the first FallbackSize
// items. The result never contains duplicates.
func SelectAdaptive(items []int, parts spacedrep.Partitions, unanswered []int, tier mastery.Tier) []int {
	mix, ok := AdaptiveMix[tier]
	if !ok {
		mix = AdaptiveMix[mastery.TierBeginner]
	}

	pools := map[Pool][]int{
		PoolUnanswered: unanswered,
		PoolStruggling: parts.Struggling,
		PoolLearning:   parts.Learning,
	}

	seen := make(map[int]bool)
	var out []int
	for _, q := range mix {
		taken := 0
		for _, id := range pools[q.Pool] {
			if taken == q.Max {
				break
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
			taken++
		}
	}

	if len(out) == 0 {
		for _, id := range items {
			if len(out) == FallbackSize {
				break
			}
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// intersect returns the items of ordered that are in set, in ordered's order.
func intersect(ordered, set []int) []int {
	in := make(map[int]bool, len(set))
	for _, id := range set {
		in[id] = true
	}
	var out []int
	for _, id := range ordered {
		if in[id] {
			out = append(out, id)
		}
	}
	return out
}

// restrict returns the items of list present in universe, in list's order,
// without duplicates.
func restrict(list, universe []int) []int {
	in := make(map[int]bool, len(universe))
	for _, id := range universe {
		in[id] = true
	}
	seen := make(map[int]bool, len(list))
	var out []int
	for _, id := range list {
		if in[id] && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
