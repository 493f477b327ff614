// Package main provides the CLI entrypoint for sumback.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/sumback/internal/audio"
	"github.com/verte-zerg/sumback/internal/config"
	"github.com/verte-zerg/sumback/internal/engine"
	"github.com/verte-zerg/sumback/internal/model"
	"github.com/verte-zerg/sumback/internal/sequence"
	"github.com/verte-zerg/sumback/internal/stats"
	"github.com/verte-zerg/sumback/internal/statsui"
	"github.com/verte-zerg/sumback/internal/store"
	"github.com/verte-zerg/sumback/internal/tui"
)

const defaultTrendWindow = 5

var (
	trainMode     string
	trainNBack    int
	trainISI      int
	trainDuration int
	trainRate     float64
	trainTone     bool
	trainVolume   float64
	trainTheme    string
	trainSeed     int64

	statsMode   string
	statsSince  string
	statsLast   int
	statsWindow int
	statsPlain  bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sumback",
		Short:         "Adaptive n-back addition trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrainCmd,
	}

	rootCmd.Flags().StringVar(&trainMode, "mode", "", "session mode: standard, custom or manual")
	rootCmd.Flags().IntVar(&trainNBack, "nback", 0, "n-back depth (1-10)")
	rootCmd.Flags().IntVar(&trainISI, "isi", 0, "starting inter-stimulus interval in ms (custom/manual)")
	rootCmd.Flags().IntVar(&trainDuration, "duration", 0, "session duration in seconds (custom/manual)")
	rootCmd.Flags().Float64Var(&trainRate, "rate", 0, "stimulus playback rate (1.0-1.5)")
	rootCmd.Flags().BoolVar(&trainTone, "error-tone", true, "ring the terminal bell on incorrect answers")
	rootCmd.Flags().Float64Var(&trainVolume, "volume", -1, "error tone volume (0-1)")
	rootCmd.Flags().StringVar(&trainTheme, "theme", "", "color theme: dark or light")
	rootCmd.Flags().Int64Var(&trainSeed, "seed", 0, "digit sequence seed (0 = random)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runTrainCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	settings, err := st.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	settings = applyFileConfig(settings, fileCfg)
	settings, err = applyFlags(cmd, settings)
	if err != nil {
		return err
	}
	settings = settings.Clamp()

	if err := st.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	pacing := settings.ForMode(settings.Mode)

	var src engine.DigitSource
	if trainSeed != 0 {
		src = sequence.NewSeededSource(trainSeed)
	} else {
		src = sequence.NewSource()
	}

	surface := &tui.Surface{}
	events := make(chan engine.Event, 128)
	eng := engine.New(engine.Config{
		Mode:     settings.Mode,
		NBack:    settings.NBack,
		ISIMs:    pacing.ISIMs,
		Duration: pacing.Duration,
		Rate:     settings.Rate,
		Player:   audio.WindowPlayer{},
		Tone:     audio.BellTone{Enabled: settings.Tone.Enabled, Volume: settings.Tone.Volume},
		Input:    surface,
		Notify:   func(ev engine.Event) { events <- ev },
		Source:   src,
	})

	m := tui.NewModel(settings, eng, st, surface, events)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// applyFileConfig layers the TOML config over the persisted settings. Pacing
// values land in the bucket of the mode in effect; standard mode is pinned
// and ignores them.
func applyFileConfig(settings model.Settings, fileCfg config.FileConfig) model.Settings {
	if fileCfg.Session.Mode != nil {
		settings.Mode = model.Mode(*fileCfg.Session.Mode)
	}
	if fileCfg.Session.NBack != nil {
		settings.NBack = *fileCfg.Session.NBack
	}
	if fileCfg.Session.ISIMs != nil {
		settings = setPacingISI(settings, *fileCfg.Session.ISIMs)
	}
	if fileCfg.Session.DurationSec != nil {
		settings = setPacingDuration(settings, time.Duration(*fileCfg.Session.DurationSec)*time.Second)
	}
	if fileCfg.Audio.Rate != nil {
		settings.Rate = *fileCfg.Audio.Rate
	}
	if fileCfg.Audio.ErrorTone != nil {
		settings.Tone.Enabled = *fileCfg.Audio.ErrorTone
	}
	if fileCfg.Audio.ToneVolume != nil {
		settings.Tone.Volume = *fileCfg.Audio.ToneVolume
	}
	if fileCfg.UI.Theme != nil {
		settings.Theme = *fileCfg.UI.Theme
	}
	return settings
}

func applyFlags(cmd *cobra.Command, settings model.Settings) (model.Settings, error) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode := model.Mode(trainMode)
		if !mode.Valid() {
			return settings, fmt.Errorf("invalid --mode %q (use standard, custom or manual)", trainMode)
		}
		settings.Mode = mode
	}
	if flags.Changed("nback") {
		settings.NBack = trainNBack
	}
	if flags.Changed("isi") {
		settings = setPacingISI(settings, trainISI)
	}
	if flags.Changed("duration") {
		if trainDuration <= 0 {
			return settings, fmt.Errorf("--duration must be > 0")
		}
		settings = setPacingDuration(settings, time.Duration(trainDuration)*time.Second)
	}
	if flags.Changed("rate") {
		settings.Rate = trainRate
	}
	if flags.Changed("error-tone") {
		settings.Tone.Enabled = trainTone
	}
	if flags.Changed("volume") {
		settings.Tone.Volume = trainVolume
	}
	if flags.Changed("theme") {
		if trainTheme != "dark" && trainTheme != "light" {
			return settings, fmt.Errorf("invalid --theme %q (use dark or light)", trainTheme)
		}
		settings.Theme = trainTheme
	}
	return settings, nil
}

func setPacingISI(settings model.Settings, isiMs int) model.Settings {
	switch settings.Mode {
	case model.ModeCustom:
		settings.Custom.ISIMs = isiMs
	case model.ModeManual:
		settings.Manual.ISIMs = isiMs
	}
	return settings
}

func setPacingDuration(settings model.Settings, d time.Duration) model.Settings {
	switch settings.Mode {
	case model.ModeCustom:
		settings.Custom.Duration = d
	case model.ModeManual:
		settings.Manual.Duration = d
	}
	return settings
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse session history",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var mode model.Mode
	if statsMode != "" {
		mode = model.Mode(statsMode)
		if !mode.Valid() {
			return fmt.Errorf("invalid --mode %q (use standard, custom or manual)", statsMode)
		}
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	filter := model.SummaryFilter{Mode: mode, Since: sinceTime, Last: statsLast}
	if statsPlain {
		summaries, err := st.ListSummaries(context.Background(), filter)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		return stats.WriteReport(cmd.OutOrStdout(), summaries, time.Now(), statsWindow, stats.AutoPlotWidth())
	}
	m := statsui.NewModel(st, filter, statsWindow)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage session history",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	})
	return cmd
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	n, err := st.ClearSummaries(context.Background())
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions\n", n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# sumback configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# mode = "standard"       # Session mode: standard, custom or manual
# nback = %d              # N-back depth (%d-%d)
# isi = %d              # Starting inter-stimulus interval in ms (custom/manual)
# duration = %d          # Session duration in seconds (custom/manual)

[audio]
# rate = %.1f              # Stimulus playback rate (%.1f-%.1f)
# error-tone = true       # Ring the terminal bell on incorrect answers
# volume = %.1f            # Error tone volume (0-1)

[ui]
# theme = "dark"          # Color theme: dark or light
`,
		1, model.MinNBack, model.MaxNBack,
		model.StandardISIMs,
		int(model.StandardDuration.Seconds()),
		model.MinRate, model.MinRate, model.MaxRate,
		0.8,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
