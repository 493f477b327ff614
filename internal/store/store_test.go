package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/sumback/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "sumback.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSettingsRoundTripClamped(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	in := model.DefaultSettings()
	in.NBack = 99
	in.Rate = 0.1
	in.Tone.Volume = 7
	in.Manual = model.ModeSettings{ISIMs: 50, Duration: time.Second}

	if err := st.SaveSettings(ctx, in); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	out, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	want := in.Clamp()
	if out != want {
		t.Fatalf("round trip = %+v, want clamped %+v", out, want)
	}
	// Clamping happened on the way in, so a reload stays identical.
	out2, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("reload settings: %v", err)
	}
	if out2 != out {
		t.Fatalf("second load differs: %+v vs %+v", out2, out)
	}
}

func TestLoadSettingsDefaultsWhenMissing(t *testing.T) {
	st := openTestStore(t)
	out, err := st.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if out != model.DefaultSettings() {
		t.Fatalf("missing settings = %+v, want defaults", out)
	}
}

func TestLoadSettingsCorruptFallsBack(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES ('settings', '{not json')`); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}
	out, err := st.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if out != model.DefaultSettings() {
		t.Fatalf("corrupt settings = %+v, want defaults", out)
	}
}

func seedSummaries(t *testing.T, st *Store, n int, mode model.Mode, start time.Time) []string {
	t.Helper()
	ctx := context.Background()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := st.InsertSummary(ctx, model.Summary{
			EndedAt:      start.Add(time.Duration(i) * time.Hour),
			Mode:         mode,
			NBack:        1,
			Correct:      40 + i,
			Attempts:     60,
			AccuracyPct:  float64(40+i) / 60 * 100,
			DurationMs:   120000,
			LowestISIMs:  2600,
			TrialCount:   60,
			AvgLatencyMs: 1500,
			BestRun:      8,
		})
		if err != nil {
			t.Fatalf("insert summary: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

func TestInsertAndListSummaries(t *testing.T) {
	st := openTestStore(t)
	start := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	ids := seedSummaries(t, st, 3, model.ModeStandard, start)
	seedSummaries(t, st, 2, model.ModeManual, start.Add(time.Minute))

	ctx := context.Background()
	all, err := st.ListSummaries(ctx, model.SummaryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("listed %d summaries, want 5", len(all))
	}

	standard, err := st.ListSummaries(ctx, model.SummaryFilter{Mode: model.ModeStandard})
	if err != nil {
		t.Fatalf("list standard: %v", err)
	}
	if len(standard) != 3 {
		t.Fatalf("listed %d standard summaries, want 3", len(standard))
	}
	if standard[0].ID != ids[0] {
		t.Fatalf("order: first id = %s, want %s", standard[0].ID, ids[0])
	}
	if standard[0].Correct != 40 || standard[0].Mode != model.ModeStandard {
		t.Fatalf("summary fields lost: %+v", standard[0])
	}

	since := start.Add(90 * time.Minute)
	recent, err := st.ListSummaries(ctx, model.SummaryFilter{Mode: model.ModeStandard, Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("listed %d recent summaries, want 1", len(recent))
	}

	last, err := st.ListSummaries(ctx, model.SummaryFilter{Last: 2})
	if err != nil {
		t.Fatalf("list last: %v", err)
	}
	if len(last) != 2 {
		t.Fatalf("listed %d last summaries, want 2", len(last))
	}
}

func TestClearSummaries(t *testing.T) {
	st := openTestStore(t)
	seedSummaries(t, st, 4, model.ModeCustom, time.Now().UTC())

	ctx := context.Background()
	n, err := st.ClearSummaries(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 4 {
		t.Fatalf("cleared %d rows, want 4", n)
	}
	remaining, err := st.ListSummaries(ctx, model.SummaryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("%d summaries left after clear", len(remaining))
	}
}
