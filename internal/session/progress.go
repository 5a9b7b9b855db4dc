package session

import (
	"time"

	"github.com/abhisek/kioku/internal/mastery"
)

// Progress is the saved state of one study session.
type Progress struct {
	SessionID      string       `json:"sessionId"`
	Items          []int        `json:"questions"`
	CurrentIndex   int          `json:"currentIndex"`
	StartTime      time.Time    `json:"startTime"`
	SessionCorrect int          `json:"sessionCorrect"`
	SessionTotal   int          `json:"sessionTotal"`
	Tier           mastery.Tier `json:"tier,omitempty"`
}

// ProgressSnapshot is the persisted set of saved sessions keyed by mode.
type ProgressSnapshot map[Mode]Progress

// Current returns the item id at the current index.
func (p Progress) Current() int {
	return p.Items[p.CurrentIndex]
}

// Len returns the number of items in the session.
func (p Progress) Len() int {
	return len(p.Items)
}

// AtEnd reports whether the current item is the last one.
func (p Progress) AtEnd() bool {
	return p.CurrentIndex == len(p.Items)-1
}

func (p Progress) clone() Progress {
	out := p
	out.Items = append([]int(nil), p.Items...)
	return out
}

// valid reports whether the saved progress can be resumed.
func (p Progress) valid() bool {
	return len(p.Items) > 0 &&
		p.CurrentIndex >= 0 && p.CurrentIndex < len(p.Items) &&
		p.SessionCorrect >= 0 && p.SessionCorrect <= p.SessionTotal
}
