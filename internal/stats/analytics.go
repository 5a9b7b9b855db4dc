package stats

import (
	"fmt"
	"sort"
)

// Filter selects which items an analytics listing includes.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterAttempted Filter = "attempted"
	FilterGood      Filter = "good"
	FilterPoor      Filter = "poor"
)

// SortKey orders an analytics listing.
type SortKey string

const (
	SortNumber   SortKey = "number"
	SortAttempts SortKey = "attempts"
	SortAccuracy SortKey = "accuracy"
)

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterAttempted, FilterGood, FilterPoor:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, attempted, good or poor)", s)
}

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortNumber, SortAttempts, SortAccuracy:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort %q (want number, attempts or accuracy)", s)
}

func (f Filter) match(s ItemStats) bool {
	switch f {
	case FilterAttempted:
		return s.Attempted()
	case FilterGood:
		return s.Attempted() && s.Accuracy() >= GoodAccuracy
	case FilterPoor:
		return s.Attempted() && s.Accuracy() < PoorAccuracy
	default:
		return true
	}
}

// Analyze returns the counters of the given items that pass filter, ordered
// by key. Ties keep ascending item id order.
func (a *Aggregator) Analyze(items []int, filter Filter, key SortKey) []ItemStats {
	var out []ItemStats
	for _, id := range items {
		if s := a.Item(id); filter.match(s) {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		switch key {
		case SortAttempts:
			if x.TotalAttempts != y.TotalAttempts {
				return x.TotalAttempts > y.TotalAttempts
			}
		case SortAccuracy:
			if x.Attempted() != y.Attempted() {
				return x.Attempted()
			}
			if x.Accuracy() != y.Accuracy() {
				return x.Accuracy() > y.Accuracy()
			}
		}
		return x.ItemID < y.ItemID
	})
	return out
}

// Overview summarizes per-item analytics across a set of items.
type Overview struct {
	Items        int
	Attempted    int
	Good         int
	Poor         int
	MeanAccuracy float64 // percent, over attempted items
}

// Overview computes the analytics summary for items.
func (a *Aggregator) Overview(items []int) Overview {
	o := Overview{Items: len(items)}
	var sum float64
	for _, id := range items {
		s := a.Item(id)
		if !s.Attempted() {
			continue
		}
		o.Attempted++
		sum += s.Accuracy()
		switch s.Grade() {
		case GradeGood:
			o.Good++
		case GradePoor:
			o.Poor++
		}
	}
	if o.Attempted > 0 {
		o.MeanAccuracy = sum / float64(o.Attempted)
	}
	return o
}
