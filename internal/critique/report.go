package critique

import (
	"maps"
	"slices"

	"github.com/abhisek/kioku/internal/persist"
	"github.com/abhisek/kioku/internal/store"
)

// DayLayout formats the day keys of daily reports.
const DayLayout = "2006-01-02"

// Reports holds the daily critiques keyed by day.
type Reports struct {
	byDay map[string]DailyCritique
	sink  persist.Sink
}

// NewReports creates a report book from a saved snapshot.
func NewReports(snap map[string]DailyCritique, sink persist.Sink) *Reports {
	if sink == nil {
		sink = persist.Discard
	}
	byDay := make(map[string]DailyCritique, len(snap))
	maps.Copy(byDay, snap)
	return &Reports{byDay: byDay, sink: sink}
}

// Put stores the report for day, replacing any previous one.
func (r *Reports) Put(day string, c DailyCritique) {
	r.byDay[day] = c
	r.sink.Put(store.KeyDailyReports, r.Snapshot())
}

// Get returns the report for day.
func (r *Reports) Get(day string) (DailyCritique, bool) {
	c, ok := r.byDay[day]
	return c, ok
}

// Days returns the days with a report, newest first.
func (r *Reports) Days() []string {
	days := slices.Collect(maps.Keys(r.byDay))
	slices.Sort(days)
	slices.Reverse(days)
	return days
}

// Snapshot returns a copy of all reports.
func (r *Reports) Snapshot() map[string]DailyCritique {
	return maps.Clone(r.byDay)
}
