package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/sumback/internal/model"
)

func summariesOnDays(days ...time.Time) []model.Summary {
	out := make([]model.Summary, 0, len(days))
	for _, d := range days {
		out = append(out, model.Summary{EndedAt: d})
	}
	return out
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestComputeStreaksEmpty(t *testing.T) {
	got := ComputeStreaks(nil, time.Now())
	if got != (Streaks{}) {
		t.Fatalf("empty streaks = %+v", got)
	}
}

func TestComputeStreaksCurrentRun(t *testing.T) {
	today := day(t, "2025-03-10 20:00")
	summaries := summariesOnDays(
		day(t, "2025-03-08 09:00"),
		day(t, "2025-03-09 22:30"),
		day(t, "2025-03-10 07:15"),
		day(t, "2025-03-10 19:00"), // second session the same day
	)
	got := ComputeStreaks(summaries, today)
	want := Streaks{Current: 3, Longest: 3, TotalDays: 3}
	if got != want {
		t.Fatalf("streaks = %+v, want %+v", got, want)
	}
}

func TestComputeStreaksYesterdayStillCounts(t *testing.T) {
	today := day(t, "2025-03-10 08:00")
	summaries := summariesOnDays(
		day(t, "2025-03-08 10:00"),
		day(t, "2025-03-09 10:00"),
	)
	got := ComputeStreaks(summaries, today)
	if got.Current != 2 {
		t.Fatalf("current streak = %d, want 2 (run ended yesterday)", got.Current)
	}
}

func TestComputeStreaksBrokenRun(t *testing.T) {
	today := day(t, "2025-03-10 08:00")
	summaries := summariesOnDays(
		day(t, "2025-03-01 10:00"),
		day(t, "2025-03-02 10:00"),
		day(t, "2025-03-03 10:00"),
		day(t, "2025-03-07 10:00"),
	)
	got := ComputeStreaks(summaries, today)
	want := Streaks{Current: 0, Longest: 3, TotalDays: 4}
	if got != want {
		t.Fatalf("streaks = %+v, want %+v", got, want)
	}
}
