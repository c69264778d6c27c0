package viewer

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor   = lipgloss.Color("63")
	secondaryColor = lipgloss.Color("240")
	accentColor    = lipgloss.Color("205")
	errorColor     = lipgloss.Color("196")
	okColor        = lipgloss.Color("42")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Underline(true).
			PaddingRight(2)

	tabStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			PaddingRight(2)

	dimStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(okColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1).
			MarginTop(1)
)
