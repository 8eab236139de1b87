package ui

import "github.com/charmbracelet/lipgloss"

// palette follows the rose-pine scheme the original reader shipped with
var (
	colorTitle  = lipgloss.Color("#eb6f92")
	colorLink   = lipgloss.Color("#c4a7e7")
	colorFeed   = lipgloss.Color("#31748f")
	colorMuted  = lipgloss.Color("#6e6a86")
	colorText   = lipgloss.Color("#e0def4")
	colorCursor = lipgloss.Color("#f6c177")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	linkStyle     = lipgloss.NewStyle().Foreground(colorLink).Italic(true).Underline(true)
	feedStyle     = lipgloss.NewStyle().Foreground(colorFeed).Italic(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	textStyle     = lipgloss.NewStyle().Foreground(colorText)
	selectedStyle = lipgloss.NewStyle().Foreground(colorCursor).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#eb6f92"))
	statusStyle   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
)
