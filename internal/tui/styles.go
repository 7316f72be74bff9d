package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Brand colors
	clockOrange  = lipgloss.Color("#d97757") // Primary accent
	clockBlue    = lipgloss.Color("#6a9bcc") // Secondary accent
	clockGreen   = lipgloss.Color("#788c5d") // Tertiary accent
	clockMidGray = lipgloss.Color("#b0aea5") // Secondary elements

	primaryColor = clockOrange
	accentColor  = clockBlue
	successColor = clockGreen
	dimTextColor = clockMidGray

	// App frame
	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Logo
	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	// Clock display
	taskStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	elapsedStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	untrackedStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Italic(true)

	// Status indicators
	statusOK = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	// Misc
	subtitleStyle = lipgloss.NewStyle().
			Foreground(dimTextColor).
			Italic(true)

	// Divider
	dividerStyle = lipgloss.NewStyle().
			Foreground(dimTextColor)
)
