package tui

import "github.com/charmbracelet/lipgloss"

// ANSI palette so the indicator follows the terminal theme.
const (
	colorConnected    lipgloss.Color = "2" // Green
	colorDisconnected lipgloss.Color = "1" // Red
	colorAccent       lipgloss.Color = "5" // Magenta
	colorMuted        lipgloss.Color = "8" // Gray
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 3)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Foreground(lipgloss.Color("15")).
			Background(colorAccent)

	buttonBusyStyle = buttonStyle.
			Background(colorMuted)

	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().Foreground(colorDisconnected)
)

func statusStyle(online bool) lipgloss.Style {
	color := colorDisconnected
	if online {
		color = colorConnected
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(color)
}
