package popup

import "github.com/charmbracelet/lipgloss"

// Palette shared by every popup element.
var (
	salmonPink  = lipgloss.Color("#FFB3BA")
	mintGreen   = lipgloss.Color("#A8E6CF")
	mutedGray   = lipgloss.Color("#6B7280")
	brightWhite = lipgloss.Color("#F9FAFB")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true).
			MarginBottom(1)

	buttonStyle = lipgloss.NewStyle().
			Foreground(brightWhite).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 2)

	selectedButtonStyle = buttonStyle.
				BorderForeground(salmonPink).
				Foreground(salmonPink).
				Bold(true)

	shortcutStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	busyStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(salmonPink).
			PaddingLeft(1)

	containerStyle = lipgloss.NewStyle().
			Padding(1, 2)
)
