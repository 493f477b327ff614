package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/sumback/internal/model"
)

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, nil, time.Now(), 5, 40); err != nil {
		t.Fatalf("WriteReport() = %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("empty report = %q", buf.String())
	}
}

func TestWriteReport(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	summaries := []model.Summary{
		{
			EndedAt: base, Mode: model.ModeStandard, NBack: 1,
			Correct: 40, Attempts: 58, AccuracyPct: 69.0,
			LowestISIMs: 2800, AvgLatencyMs: 950, BestRun: 6,
		},
		{
			EndedAt: base.AddDate(0, 0, 1), Mode: model.ModeCustom, NBack: 2,
			Correct: 50, Attempts: 60, AccuracyPct: 83.3,
			LowestISIMs: 2500, AvgLatencyMs: 840, BestRun: 9,
		},
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, summaries, base.AddDate(0, 0, 1), 5, 40); err != nil {
		t.Fatalf("WriteReport() = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Sessions 2",
		"Lowest ISI 2500 ms",
		"Training days 2",
		"50/60",
		"40/58",
		"Accuracy %",
		"Lowest ISI (ms)",
		"Latency (ms)",
		"ma5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}

	// Newest session is listed first.
	if strings.Index(out, "50/60") > strings.Index(out, "40/58") {
		t.Fatalf("sessions not newest-first:\n%s", out)
	}
}
