// Package tui provides the Bubble Tea training interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/sumback/internal/engine"
	"github.com/verte-zerg/sumback/internal/model"
	"github.com/verte-zerg/sumback/internal/stats"
	"github.com/verte-zerg/sumback/internal/store"
)

type engineMsg struct {
	ev engine.Event
}

type tickMsg time.Time

// Model implements the training session UI.
type Model struct {
	settings model.Settings
	eng      *engine.Engine
	store    *store.Store
	surface  *Surface
	events   chan engine.Event
	theme    Theme

	width  int
	height int

	digit   int
	playing bool
	seqLen  int

	padMode bool
	pad     string
	input   textinput.Model

	snap       engine.Snapshot
	lastResult *engine.TrialResolved
	hint       string

	ended     bool
	summary   model.Summary
	qualified bool
	saved     bool
}

// NewModel constructs a training TUI model. The events channel must be the
// one the engine's Notify callback feeds.
func NewModel(settings model.Settings, eng *engine.Engine, st *store.Store, surface *Surface, events chan engine.Event) *Model {
	in := textinput.New()
	in.Placeholder = "answer"
	in.CharLimit = 2
	in.Width = 8
	return &Model{
		settings: settings,
		eng:      eng,
		store:    st,
		surface:  surface,
		events:   events,
		theme:    ThemeByName(settings.Theme),
		padMode:  true,
		input:    in,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.eng.Start()
	m.snap = m.eng.Snapshot()
	return tea.Batch(m.listen(), tickCmd())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.ended {
			return m, nil
		}
		m.snap = m.eng.Snapshot()
		return m, tickCmd()
	case engineMsg:
		return m.handleEvent(msg.ev)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleEvent(ev engine.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case engine.StimulusStarted:
		m.digit = ev.Digit
		m.playing = true
		m.hint = ""
	case engine.StimulusPlayed:
		m.playing = false
		m.seqLen = ev.SequenceLen
	case engine.StimulusFailed:
		m.playing = false
		m.hint = "audio playback failed, retrying"
	case engine.TrialResolved:
		res := ev
		m.lastResult = &res
		// Only a correct resolution consumes the entry; after an
		// incorrect one the user keeps what they typed.
		if ev.Correct && !ev.Stale {
			m.clearEntry()
		}
	case engine.SessionEnded:
		m.ended = true
		m.summary = ev.Summary
		m.qualified = ev.Qualified
		if m.qualified {
			m.persistSummary(ev.Summary)
		}
		return m, nil
	}
	m.snap = m.eng.Snapshot()
	return m, m.listen()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ended {
		return m, tea.Quit
	}
	switch msg.Type {
	case tea.KeyCtrlC:
		m.eng.Stop()
		return m, tea.Quit
	case tea.KeyEsc:
		m.eng.Stop()
		return m, nil
	case tea.KeyTab:
		m.padMode = !m.padMode
		m.clearEntry()
		if m.padMode {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, nil
	case tea.KeyEnter:
		m.submit()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete:
		if m.padMode {
			if len(m.pad) > 0 {
				m.pad = m.pad[:len(m.pad)-1]
			}
		} else {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			m.syncSurface()
			return m, cmd
		}
		m.syncSurface()
		return m, nil
	case tea.KeyRunes:
		digits := digitsOnly(msg.Runes)
		if len(digits) == 0 {
			return m, nil
		}
		if m.padMode {
			for _, r := range digits {
				if len(m.pad) < 2 {
					m.pad += string(r)
				}
			}
			m.syncSurface()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: digits})
		m.syncSurface()
		return m, cmd
	default:
		return m, nil
	}
}

func (m *Model) submit() {
	n, ok := m.candidate()
	if !ok {
		m.hint = "type an answer first"
		return
	}
	switch err := m.eng.Submit(n); err {
	case nil:
		m.hint = ""
	case engine.ErrNotReady:
		m.hint = "no trial open yet"
	case engine.ErrTrialResolved:
		m.hint = "trial already resolved"
	case engine.ErrResolutionBusy:
		m.hint = "resolving, hold on"
	case engine.ErrSessionInactive:
		m.hint = "session over"
	default:
		m.hint = err.Error()
	}
}

func (m *Model) candidate() (int, bool) {
	raw := m.pad
	if !m.padMode {
		raw = strings.TrimSpace(m.input.Value())
	}
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (m *Model) syncSurface() {
	if n, ok := m.candidate(); ok {
		m.surface.Set(n)
		return
	}
	m.surface.Unset()
}

func (m *Model) clearEntry() {
	m.pad = ""
	m.input.SetValue("")
	m.surface.Unset()
}

func (m *Model) persistSummary(sum model.Summary) {
	ctx := context.Background()
	id, err := m.store.InsertSummary(ctx, sum)
	if err != nil {
		logErrf("failed to save session: %v\n", err)
		return
	}
	m.summary.ID = id
	m.saved = true
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return engineMsg{ev: ev}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func digitsOnly(runes []rune) []rune {
	var out []rune
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return out
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.ended {
		return m.viewSummary()
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.renderStimulus(),
		"",
		m.renderEntry(),
		m.renderResult(),
	)
	header := m.renderHeader()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return header + "\n" + content + "\n" + footer
	}
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	headerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, header)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return headerLine + "\n" + body + "\n" + footerLine
}

func (m *Model) renderHeader() string {
	mode := string(m.settings.Mode)
	parts := []string{
		m.theme.Accent.Render("sumback"),
		fmt.Sprintf("%s · %d-back", mode, m.settings.NBack),
		fmt.Sprintf("ISI %d ms", m.snap.ISIMs),
	}
	return m.theme.Muted.Render(strings.Join(parts, "  "))
}

func (m *Model) renderStimulus() string {
	if m.playing {
		return m.theme.Digit.Render(fmt.Sprintf("  %d  ", m.digit))
	}
	return m.theme.Muted.Render("  ·  ")
}

var padRows = []string{
	"7 8 9",
	"4 5 6",
	"1 2 3",
	"  0",
}

func (m *Model) renderEntry() string {
	if !m.padMode {
		return m.theme.Card.Render(m.input.View())
	}
	shown := m.pad
	if shown == "" {
		shown = "--"
	}
	width := 0
	for _, row := range padRows {
		if w := runewidth.StringWidth(row); w > width {
			width = w
		}
	}
	lines := make([]string, 0, len(padRows)+1)
	for _, row := range padRows {
		lines = append(lines, centerLine(m.theme.Muted.Render(row), row, width))
	}
	answer := "▸ " + shown
	lines = append(lines, centerLine(m.theme.Accent.Render(answer), answer, width))
	return m.theme.Card.Render(strings.Join(lines, "\n"))
}

// centerLine centers styled within width using the plain text's cell width.
func centerLine(styled, plain string, width int) string {
	pad := width - runewidth.StringWidth(plain)
	if pad <= 0 {
		return styled
	}
	left := pad / 2
	return strings.Repeat(" ", left) + styled + strings.Repeat(" ", pad-left)
}

func (m *Model) renderResult() string {
	if m.hint != "" {
		return m.theme.Muted.Render(m.hint)
	}
	if m.lastResult == nil {
		return ""
	}
	res := m.lastResult
	if res.Correct {
		return m.theme.Correct.Render(fmt.Sprintf("✓ %d (%d ms)", res.Answer, res.LatencyMs))
	}
	if res.UserAnswer != nil {
		return m.theme.Incorrect.Render(fmt.Sprintf("✗ %d, was %d", *res.UserAnswer, res.Answer))
	}
	return m.theme.Incorrect.Render(fmt.Sprintf("✗ no answer, was %d", res.Answer))
}

func (m *Model) renderFooter() string {
	remaining := m.snap.Remaining.Round(time.Second)
	acc := stats.Accuracy(m.snap.Correct, m.snap.Attempts)
	segments := []string{
		fmt.Sprintf("%s left", remaining),
		fmt.Sprintf("%d/%d · %.0f%%", m.snap.Correct, m.snap.Attempts, acc),
		"tab input · esc stop",
	}
	return m.theme.Footer.Render(strings.Join(segments, "  "))
}

func (m *Model) viewSummary() string {
	sum := m.summary
	lines := []string{
		m.theme.Accent.Render("Session complete"),
		"",
		fmt.Sprintf("%s · %d-back", sum.Mode, sum.NBack),
		fmt.Sprintf("Score     %d/%d (%.1f%%)", sum.Correct, sum.Attempts, sum.AccuracyPct),
		fmt.Sprintf("Best run  %d", sum.BestRun),
	}
	if sum.AvgLatencyMs > 0 {
		lines = append(lines, fmt.Sprintf("Latency   %.0f ms", sum.AvgLatencyMs))
	}
	if sum.Mode.Adaptive() {
		lines = append(lines, fmt.Sprintf("Lowest ISI %d ms", sum.LowestISIMs))
	}
	lines = append(lines, "")
	switch {
	case m.saved:
		lines = append(lines, m.theme.Muted.Render("saved to history"))
	case !m.qualified:
		lines = append(lines, m.theme.Muted.Render(fmt.Sprintf("not recorded (fewer than %d attempts)", model.MinQualifyingAttempts)))
	default:
		lines = append(lines, m.theme.Incorrect.Render("not saved"))
	}
	lines = append(lines, m.theme.Footer.Render("press any key to exit"))
	card := m.theme.Card.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return card
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
