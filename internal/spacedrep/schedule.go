package spacedrep

import "time"

// IntervalDays is the expanding review schedule in days, indexed by the level
// an item reaches after a correct answer. Index 0 is never reached by a
// promotion; it is kept so the table lines up with levels.
var IntervalDays = []int{1, 3, 7, 14, 30, 90}

// MaxLevel is the highest review level.
const MaxLevel = 5

// MasteredLevel is the lowest level counted as mastered.
const MasteredLevel = 4

// RetryIntervalDays is the delay before an item answered incorrectly is due again.
const RetryIntervalDays = 1

// DefaultUpcomingLimit is how many upcoming reviews a listing shows by default.
const DefaultUpcomingLimit = 10

// Day is the fixed length of one interval day. Intervals are added as
// elapsed time, so a DST change never shortens or stretches them.
const Day = 24 * time.Hour

// after returns now plus n interval days.
func after(now time.Time, n int) time.Time {
	return now.Add(time.Duration(n) * Day)
}
