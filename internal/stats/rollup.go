package stats

import (
	"github.com/verte-zerg/sumback/internal/model"
)

// Rollup aggregates the persisted history for reporting.
type Rollup struct {
	Sessions int
	// AvgAccuracyPct is weighted by attempts, so long sessions count for
	// more than short ones.
	AvgAccuracyPct  float64
	BestAccuracyPct float64
	AvgLatencyMs    float64
	TotalDurationMs int64
	AvgDurationMs   float64
	LowestISIMs     int
	TotalAttempts   int
	TotalCorrect    int
}

// ComputeRollup aggregates summaries. Mode filtering happens upstream via
// the store's SummaryFilter.
func ComputeRollup(summaries []model.Summary) Rollup {
	r := Rollup{Sessions: len(summaries)}
	if len(summaries) == 0 {
		return r
	}

	var latencyWeighted float64
	var latencyWeight int
	r.LowestISIMs = summaries[0].LowestISIMs
	for _, s := range summaries {
		r.TotalAttempts += s.Attempts
		r.TotalCorrect += s.Correct
		r.TotalDurationMs += s.DurationMs
		if s.AccuracyPct > r.BestAccuracyPct {
			r.BestAccuracyPct = s.AccuracyPct
		}
		if s.LowestISIMs < r.LowestISIMs {
			r.LowestISIMs = s.LowestISIMs
		}
		if s.TrialCount > 0 {
			latencyWeighted += s.AvgLatencyMs * float64(s.TrialCount)
			latencyWeight += s.TrialCount
		}
	}
	r.AvgAccuracyPct = Accuracy(r.TotalCorrect, r.TotalAttempts)
	if latencyWeight > 0 {
		r.AvgLatencyMs = latencyWeighted / float64(latencyWeight)
	}
	r.AvgDurationMs = float64(r.TotalDurationMs) / float64(len(summaries))
	return r
}

// AccuracySeries extracts per-session accuracy values, oldest first.
func AccuracySeries(summaries []model.Summary) []float64 {
	out := make([]float64, len(summaries))
	for i, s := range summaries {
		out[i] = s.AccuracyPct
	}
	return out
}

// LowestISISeries extracts per-session lowest-ISI values, oldest first.
func LowestISISeries(summaries []model.Summary) []float64 {
	out := make([]float64, len(summaries))
	for i, s := range summaries {
		out[i] = float64(s.LowestISIMs)
	}
	return out
}

// LatencySeries extracts per-session average latency values, oldest first.
func LatencySeries(summaries []model.Summary) []float64 {
	out := make([]float64, len(summaries))
	for i, s := range summaries {
		out[i] = s.AvgLatencyMs
	}
	return out
}
