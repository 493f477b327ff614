package tui

import "github.com/charmbracelet/lipgloss"

// Theme groups the styles for one color scheme.
type Theme struct {
	Name      string
	Digit     lipgloss.Style
	Muted     lipgloss.Style
	Correct   lipgloss.Style
	Incorrect lipgloss.Style
	Accent    lipgloss.Style
	Footer    lipgloss.Style
	Card      lipgloss.Style
}

var darkTheme = Theme{
	Name:      "dark",
	Digit:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	Correct:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77")),
	Incorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
	Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	Card: lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(lipgloss.Color("#4A4A4A")),
}

var lightTheme = Theme{
	Name:      "light",
	Digit:     lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
	Correct:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1E7D32")),
	Incorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828")),
	Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8A6D1F")),
	Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	Card: lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(lipgloss.Color("#B0B0B0")),
}

// ThemeByName returns the named theme, falling back to dark.
func ThemeByName(name string) Theme {
	if name == "light" {
		return lightTheme
	}
	return darkTheme
}
