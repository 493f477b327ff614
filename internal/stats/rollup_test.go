package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/sumback/internal/model"
)

func TestComputeRollup(t *testing.T) {
	summaries := []model.Summary{
		{
			Correct: 40, Attempts: 80, AccuracyPct: 50,
			DurationMs: 120000, LowestISIMs: 2800,
			TrialCount: 80, AvgLatencyMs: 2000,
		},
		{
			Correct: 60, Attempts: 60, AccuracyPct: 100,
			DurationMs: 60000, LowestISIMs: 2500,
			TrialCount: 60, AvgLatencyMs: 1000,
		},
	}
	r := ComputeRollup(summaries)
	if r.Sessions != 2 {
		t.Fatalf("sessions = %d", r.Sessions)
	}
	// Weighted by attempts: 100/140 correct.
	wantAcc := 100.0 / 140.0 * 100
	if diff := r.AvgAccuracyPct - wantAcc; diff > 0.01 || diff < -0.01 {
		t.Fatalf("avg accuracy = %.2f, want %.2f", r.AvgAccuracyPct, wantAcc)
	}
	if r.BestAccuracyPct != 100 {
		t.Fatalf("best accuracy = %.2f", r.BestAccuracyPct)
	}
	// Weighted by trial count: (2000*80 + 1000*60) / 140.
	wantLat := (2000.0*80 + 1000.0*60) / 140
	if diff := r.AvgLatencyMs - wantLat; diff > 0.01 || diff < -0.01 {
		t.Fatalf("avg latency = %.2f, want %.2f", r.AvgLatencyMs, wantLat)
	}
	if r.LowestISIMs != 2500 {
		t.Fatalf("lowest ISI = %d", r.LowestISIMs)
	}
	if r.TotalDurationMs != 180000 || r.AvgDurationMs != 90000 {
		t.Fatalf("durations = %d total, %.0f avg", r.TotalDurationMs, r.AvgDurationMs)
	}
}

func TestComputeRollupEmpty(t *testing.T) {
	r := ComputeRollup(nil)
	if r.Sessions != 0 || r.AvgAccuracyPct != 0 || r.LowestISIMs != 0 {
		t.Fatalf("empty rollup = %+v", r)
	}
}

func TestRenderSeries(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSeries(&buf, "Trends", []Series{
		{Name: "Accuracy", Values: []float64{50, 60, 70, 80}},
		{Name: "ISI", Values: []float64{3000, 2900, 2800, 2700}},
	}, 20)
	if err != nil {
		t.Fatalf("RenderSeries: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Trends") {
		t.Fatal("missing title")
	}
	if !strings.Contains(out, "Accuracy") || !strings.Contains(out, "ISI") {
		t.Fatalf("missing series labels:\n%s", out)
	}
	if !strings.Contains(out, "[50 .. 80]") {
		t.Fatalf("missing min/max annotation:\n%s", out)
	}
}

func TestRenderSeriesResamplesLongInput(t *testing.T) {
	values := make([]float64, 500)
	for i := range values {
		values[i] = float64(i)
	}
	var buf bytes.Buffer
	if err := RenderSeries(&buf, "", []Series{{Name: "A", Values: values}}, 20); err != nil {
		t.Fatalf("RenderSeries: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if len(line) == 0 {
		t.Fatal("no output")
	}
	// Label + sparkline + annotation never exceed a reasonable width.
	if len(line) > 60 {
		t.Fatalf("line too long (%d): %q", len(line), line)
	}
}
