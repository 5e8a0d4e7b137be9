// Package report computes time aggregations over completed sessions:
// range totals, day/week/month bucketed series, period axes, cumulative
// series, and goal progress.
package report

import (
	"time"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/timeutil"
)

// Granularity selects the bucketing period for a series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ValidGranularity reports whether g is one of the supported granularities
func ValidGranularity(g Granularity) bool {
	return g == GranularityDay || g == GranularityWeek || g == GranularityMonth
}

// Included reports whether a session counts toward a report over
// [start, end]. Only completed, non-deleted sessions whose own
// [StartTime, EndTime] lies entirely within the window count; a session
// partially outside the window is excluded, not clipped. Both bounds are
// inclusive.
func Included(s model.Session, start, end time.Time) bool {
	if !s.Completed() || s.Deleted {
		return false
	}
	return timeutil.IsInRange(s.StartTime, start, end) &&
		timeutil.IsInRange(*s.EndTime, start, end)
}

// Decompose splits a second count into integer hours, minutes (0-59), and
// seconds (0-59). The decomposition is floor-based, not rounded.
func Decompose(totalSeconds int64) (hours, minutes, seconds int) {
	hours = int(totalSeconds / 3600)
	minutes = int((totalSeconds / 60) % 60)
	seconds = int(totalSeconds % 60)
	return hours, minutes, seconds
}

// TotalTime sums the durations of the entity's sessions included in
// [start, end] and returns the decomposed total as a transient report.
func TotalTime(sessions []model.Session, entityID uint64, start, end time.Time) model.Report {
	var totalSeconds int64
	for _, s := range sessions {
		if s.EntityID != entityID || !Included(s, start, end) {
			continue
		}
		totalSeconds += int64(s.Duration() / time.Second)
	}

	h, m, sec := Decompose(totalSeconds)
	return model.Report{
		EntityID:  entityID,
		StartDate: start,
		EndDate:   end,
		Hours:     h,
		Minutes:   m,
		Seconds:   sec,
	}
}

// PeriodKey returns the bucket key for the period containing t:
// the calendar date for day granularity, the Monday of the ISO week for
// week granularity, and the first of the month for month granularity.
// Keys are formatted dates so they compare and sort lexically.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		return timeutil.StartOfWeek(t).Format("2006-01-02")
	case GranularityMonth:
		return timeutil.StartOfMonth(t).Format("2006-01")
	default:
		return timeutil.StartOfDay(t).Format("2006-01-02")
	}
}

// Series is a per-entity mapping of period key to seconds spent in that period
type Series map[uint64]map[string]int64

// Bucket accumulates the included sessions of each entity into period
// buckets keyed by the period containing the session's StartTime. Multiple
// sessions in the same bucket sum.
func Bucket(sessions []model.Session, entityIDs []uint64, start, end time.Time, g Granularity) Series {
	inScope := make(map[uint64]bool, len(entityIDs))
	for _, id := range entityIDs {
		inScope[id] = true
	}

	series := make(Series, len(entityIDs))
	for _, id := range entityIDs {
		series[id] = map[string]int64{}
	}

	for _, s := range sessions {
		if !inScope[s.EntityID] || !Included(s, start, end) {
			continue
		}
		key := PeriodKey(s.StartTime, g)
		series[s.EntityID][key] += int64(s.Duration() / time.Second)
	}

	return series
}

// EarliestStart returns the earliest StartTime among the sessions included
// in [start, end] for the entities in scope, or nil if none are included.
func EarliestStart(sessions []model.Session, entityIDs []uint64, start, end time.Time) *time.Time {
	inScope := make(map[uint64]bool, len(entityIDs))
	for _, id := range entityIDs {
		inScope[id] = true
	}

	var earliest *time.Time
	for _, s := range sessions {
		if !inScope[s.EntityID] || !Included(s, start, end) {
			continue
		}
		if earliest == nil || s.StartTime.Before(*earliest) {
			t := s.StartTime
			earliest = &t
		}
	}
	return earliest
}

// Axis generates the ordered, contiguous period keys for a report graph.
// The graph start is the earliest included session date, clipped to not
// precede the user-selected start; the graph end is the user-selected end
// clipped to now. If clipping inverts the range, the raw selection is used.
// The asymmetric clamping keeps reports from rendering long empty leading
// ranges before any activity began, while never extending past today.
func Axis(start, end time.Time, earliest *time.Time, now time.Time, g Granularity) []string {
	graphStart := timeutil.StartOfDay(start)
	if earliest != nil && timeutil.StartOfDay(*earliest).After(graphStart) {
		graphStart = timeutil.StartOfDay(*earliest)
	}

	graphEnd := timeutil.MinTime(timeutil.StartOfDay(end), timeutil.StartOfDay(now))

	if graphStart.After(graphEnd) {
		graphStart = timeutil.StartOfDay(start)
	}

	var keys []string
	var cur time.Time
	switch g {
	case GranularityWeek:
		cur = timeutil.StartOfWeek(graphStart)
	case GranularityMonth:
		cur = timeutil.StartOfMonth(graphStart)
	default:
		cur = graphStart
	}

	for !cur.After(graphEnd) {
		keys = append(keys, PeriodKey(cur, g))
		switch g {
		case GranularityWeek:
			cur = timeutil.NextWeek(cur)
		case GranularityMonth:
			cur = timeutil.NextMonth(cur)
		default:
			cur = timeutil.NextDay(cur)
		}
	}

	return keys
}

// PerPeriodHours maps one entity's bucketed seconds onto the axis as hours
// per period.
func PerPeriodHours(buckets map[string]int64, axis []string) []float64 {
	hours := make([]float64, len(axis))
	for i, key := range axis {
		hours[i] = float64(buckets[key]) / 3600.0
	}
	return hours
}

// Cumulative returns the running sum of a per-period hours series
func Cumulative(perPeriodHours []float64) []float64 {
	cum := make([]float64, len(perPeriodHours))
	total := 0.0
	for i, h := range perPeriodHours {
		total += h
		cum[i] = total
	}
	return cum
}

// GoalProgress returns the percentage of targetHours covered by
// totalHours, clamped to 100. A non-positive target reports 100.
func GoalProgress(totalHours, targetHours float64) float64 {
	if targetHours <= 0 {
		return 100
	}
	progress := totalHours / targetHours * 100
	if progress > 100 {
		return 100
	}
	return progress
}
