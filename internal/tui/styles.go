package tui

import "github.com/charmbracelet/lipgloss"

type palette struct {
	accent, slate, dark, alert, good, muted lipgloss.Color
}

var colors = palette{
	accent: "#F4A259",
	slate:  "#5B6C7A",
	dark:   "#23303B",
	alert:  "#E45858",
	good:   "#5FBF8F",
	muted:  "#6C757D",
}

type styles struct {
	App, TopBar, Header, Card lipgloss.Style
	Title, Subtitle, Help     lipgloss.Style
	Good, Bad                 lipgloss.Style
	Menu, MenuActive, MenuKey lipgloss.Style
}

var theme = newStyles(colors)

func newStyles(c palette) styles {
	underline := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(c.slate).
		Padding(0, 1)

	return styles{
		App:    lipgloss.NewStyle().Margin(1, 2),
		TopBar: underline.MarginBottom(1),
		Header: underline.Foreground(c.accent).Bold(true),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.slate).
			Padding(0, 1).
			Margin(0, 1),

		Title:    lipgloss.NewStyle().Foreground(c.accent).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(c.slate).Italic(true),
		Help:     lipgloss.NewStyle().Foreground(c.muted),

		Good: lipgloss.NewStyle().Foreground(c.good).Bold(true),
		Bad:  lipgloss.NewStyle().Foreground(c.alert).Bold(true),

		Menu:       lipgloss.NewStyle().Foreground(c.slate).Padding(0, 1),
		MenuActive: lipgloss.NewStyle().Foreground(c.dark).Background(c.accent).Bold(true).Padding(0, 1),
		MenuKey:    lipgloss.NewStyle().Foreground(c.muted).Faint(true),
	}
}
