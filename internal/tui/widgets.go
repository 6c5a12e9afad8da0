package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// ========================================
// Brand Colors - Kartoza standard palette
// ========================================

var (
	ColorOrange = lipgloss.Color("#DDA036") // Primary/Active
	ColorBlue   = lipgloss.Color("#569FC6") // Secondary/Links
	ColorGray   = lipgloss.Color("#9A9EA0") // Inactive/Subtle
	ColorRed    = lipgloss.Color("#E95420") // Error
	ColorGreen  = lipgloss.Color("#4CAF50") // Success
)

// HeaderWidth is the standard width for the header
const HeaderWidth = 60

// RenderSimpleHeader renders the application title for a screen
func RenderSimpleHeader(screenTitle string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorOrange).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	mottoStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(ColorGray).
		Align(lipgloss.Center).
		Width(HeaderWidth)

	dividerStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Width(HeaderWidth)

	title := titleStyle.Render("Kartoza Loudness - " + screenTitle)
	motto := mottoStyle.Render("consistent audio levels")
	divider := dividerStyle.Render("────────────────────────────────────────────────────────────")

	return lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		motto,
		divider,
	)
}

// RenderHelpFooter renders the help line below a screen
func RenderHelpFooter(helpText string, width int) string {
	helpStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	if width <= 0 {
		return helpStyle.Render(helpText)
	}

	footerStyle := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center)

	return footerStyle.Render(helpStyle.Render(helpText))
}

// ========================================
// Common Styles
// ========================================

// Box style for content areas
var BoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorOrange).
	Padding(1, 2)

// Title style for section headings
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorOrange)

// Label style for form labels
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// Warning style for warnings
var WarningStyle = lipgloss.NewStyle().
	Foreground(ColorOrange)

// Error style for error messages
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// Success style for success messages
var SuccessStyle = lipgloss.NewStyle().
	Foreground(ColorGreen).
	Bold(true)
