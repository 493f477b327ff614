package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/sumback/internal/model"
)

// WriteReport renders the session history as plain text: the rollup and
// streak figures, a table of recent sessions, and the trend sparklines.
// width is the plot width; callers size it to the terminal.
func WriteReport(w io.Writer, summaries []model.Summary, today time.Time, window, width int) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}

	rollup := ComputeRollup(summaries)
	streaks := ComputeStreaks(summaries, today)
	header := fmt.Sprintf(
		"Sessions %d  Avg acc %.1f%%  Best acc %.1f%%  Avg latency %.0f ms  Lowest ISI %d ms",
		rollup.Sessions, rollup.AvgAccuracyPct, rollup.BestAccuracyPct,
		rollup.AvgLatencyMs, rollup.LowestISIMs)
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	streakLine := fmt.Sprintf("Streak %d days  Longest %d days  Training days %d",
		streaks.Current, streaks.Longest, streaks.TotalDays)
	if _, err := fmt.Fprintln(w, streakLine); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	headers := []string{"Date", "Mode", "N", "Score", "Acc", "Run", "ISI", "Lat (ms)"}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	rows := make([][]string, 0, len(summaries))
	for i := len(summaries) - 1; i >= 0; i-- {
		s := summaries[i]
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			string(s.Mode),
			fmt.Sprintf("%d", s.NBack),
			fmt.Sprintf("%d/%d", s.Correct, s.Attempts),
			fmt.Sprintf("%.1f%%", s.AccuracyPct),
			fmt.Sprintf("%d", s.BestRun),
			fmt.Sprintf("%d", s.LowestISIMs),
			fmt.Sprintf("%.0f", s.AvgLatencyMs),
		})
	}
	for _, line := range FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	trends := []struct {
		title  string
		values []float64
	}{
		{"Accuracy %", AccuracySeries(summaries)},
		{"Lowest ISI (ms)", LowestISISeries(summaries)},
		{"Latency (ms)", LatencySeries(summaries)},
	}
	for _, trend := range trends {
		series := []Series{{Name: "raw", Values: trend.values}}
		if window > 1 {
			series = append(series, Series{
				Name:   fmt.Sprintf("ma%d", window),
				Values: MovingAverage(trend.values, window),
			})
		}
		if err := RenderSeries(w, trend.title, series, width); err != nil {
			return err
		}
	}
	return nil
}
