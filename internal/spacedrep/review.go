package spacedrep

import (
	"math"
	"time"
)

// ReviewState holds the spaced repetition state for a single item.
type ReviewState struct {
	ItemID             int
	Level              int
	ConsecutiveCorrect int
	LastReviewed       time.Time
	NextReview         time.Time
}

// IsDue returns true if the item is due for review (at or past the review date).
func (rs ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReview)
}

// OverdueDays returns how many days past due the item is. Returns 0 if not yet due.
func (rs ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.NextReview) {
		return 0
	}
	return now.Sub(rs.NextReview).Hours() / 24.0
}

// DaysUntilReview returns the whole number of days until the next review,
// rounded up. Returns 0 if already due.
func (rs ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(math.Ceil(rs.NextReview.Sub(now).Hours() / 24.0))
}

// Bucket classifies an item by review level.
type Bucket string

const (
	BucketMastered   Bucket = "mastered"
	BucketLearning   Bucket = "learning"
	BucketStruggling Bucket = "struggling"
)

// Bucket returns the mastery bucket for the state's level.
func (rs ReviewState) Bucket() Bucket {
	switch {
	case rs.Level >= MasteredLevel:
		return BucketMastered
	case rs.Level >= 1:
		return BucketLearning
	default:
		return BucketStruggling
	}
}

// ReviewStatus describes an item's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for display. An item more than one full
// interval past its review date is overdue.
func (rs ReviewState) Status(now time.Time) ReviewStatus {
	if !rs.IsDue(now) {
		return ReviewNotDue
	}
	if rs.OverdueDays(now) > float64(rs.intervalDays()) {
		return ReviewOverdue
	}
	return ReviewDue
}

func (rs ReviewState) intervalDays() int {
	if rs.Level <= 0 {
		return RetryIntervalDays
	}
	if rs.Level >= len(IntervalDays) {
		return IntervalDays[len(IntervalDays)-1]
	}
	return IntervalDays[rs.Level]
}
