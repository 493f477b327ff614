package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/sumback/internal/model"
)

// Streaks summarizes training consistency across sessions.
type Streaks struct {
	// Current is the consecutive-day run ending today or yesterday.
	// A run that ended before yesterday has been broken.
	Current int
	// Longest is the longest consecutive-day run in the history.
	Longest int
	// TotalDays is the number of distinct calendar days with at least one
	// recorded session.
	TotalDays int
}

// ComputeStreaks derives streak data from the persisted summaries. Days are
// calendar days in the location of today.
func ComputeStreaks(summaries []model.Summary, today time.Time) Streaks {
	loc := today.Location()
	seen := map[time.Time]struct{}{}
	for _, s := range summaries {
		seen[dayOf(s.EndedAt.In(loc))] = struct{}{}
	}
	if len(seen) == 0 {
		return Streaks{}
	}

	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest := 1
	run := 1
	for i := 1; i < len(days); i++ {
		if nextDay(days[i-1]).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	last := days[len(days)-1]
	todayDay := dayOf(today)
	if todayDay.Equal(last) || todayDay.Equal(nextDay(last)) {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if !nextDay(days[i]).Equal(days[i+1]) {
				break
			}
			current++
		}
	}

	return Streaks{
		Current:   current,
		Longest:   longest,
		TotalDays: len(days),
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// nextDay avoids 24h arithmetic so DST transitions do not break runs.
func nextDay(d time.Time) time.Time {
	return d.AddDate(0, 0, 1)
}
