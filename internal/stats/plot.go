package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotWidth  = 60
	minPlotWidth      = 10
	fallbackTermWidth = 80
)

// PlotWidthFor returns the plot width that fits a total rendering width,
// leaving room for the series label column.
func PlotWidthFor(totalWidth int) int {
	width := totalWidth - 14
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width
}

// AutoPlotWidth derives the plot width from the terminal, with a fallback
// when stdout is not a terminal.
func AutoPlotWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		w = fallbackTermWidth
	}
	return PlotWidthFor(w)
}

// RenderSeries writes one sparkline row per series with min/max annotations.
// Series longer than width are resampled; shorter ones are drawn as-is.
func RenderSeries(w io.Writer, title string, series []Series, width int) error {
	if width <= 0 {
		width = defaultPlotWidth
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	any := false
	for _, s := range series {
		if len(s.Values) > 0 {
			any = true
		}
	}
	if !any {
		return nil
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labelWidth := 0
	for _, s := range series {
		if len(s.Name) > labelWidth {
			labelWidth = len(s.Name)
		}
	}
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		values := resample(s.Values, width)
		minVal, maxVal := values[0], values[0]
		for _, v := range values[1:] {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		line := fmt.Sprintf("%-*s %s  [%s .. %s]",
			labelWidth, s.Name, Sparkline(values), formatValue(minVal), formatValue(maxVal))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// resample shrinks a series to at most width points by bucket averaging.
func resample(values []float64, width int) []float64 {
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		if hi <= lo {
			hi = lo + 1
		}
		var sum float64
		for j := lo; j < hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

func formatValue(v float64) string {
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return fmt.Sprintf("%d", int(math.Round(v)))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}
