package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorGood    = lipgloss.Color("#04B575")
	colorBad     = lipgloss.Color("#FF5F87")
	colorSubtle  = lipgloss.Color("#767676")

	titleStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	valueStyle  = lipgloss.NewStyle().Foreground(colorGood).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(colorBad)
	subtleStyle = lipgloss.NewStyle().Foreground(colorSubtle)
)
