// Package ui renders CLI output for docscout commands.
package ui

import "github.com/charmbracelet/lipgloss"

// Color palette. One accent color, everything else neutral.
const (
	ColorCyan     = "45"  // Primary accent
	ColorCyanDim  = "30"  // Dimmed accent
	ColorWhite    = "255" // Headers
	ColorGray     = "245" // Labels, secondary text
	ColorDarkGray = "238" // Separators
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds the lipgloss styles used by command output.
type Styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Score   lipgloss.Style
	Crumb   lipgloss.Style
	Label   lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the colored style set.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorCyan)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyanDim)),
		Crumb:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorCyan)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
	}
}

// NoColorStyles returns an unstyled set for plain output.
func NoColorStyles() Styles {
	return Styles{}
}

// GetStyles picks the style set for the color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
