package ui

import "github.com/charmbracelet/lipgloss"

// Rosé Pine Moon palette
// https://rosepinetheme.com/palette/
var (
	// Base tones
	ColorBase    = lipgloss.Color("#232136")
	ColorSurface = lipgloss.Color("#2a273f")
	ColorOverlay = lipgloss.Color("#393552")
	ColorMuted   = lipgloss.Color("#6e6a86")
	ColorSubtle  = lipgloss.Color("#908caa")
	ColorText    = lipgloss.Color("#e0def4")

	// Semantic colors
	ColorLove = lipgloss.Color("#eb6f92") // error, danger, delete prompts
	ColorGold = lipgloss.Color("#f6c177") // warning, installing
	ColorRose = lipgloss.Color("#ea9a97") // accent, secondary
	ColorPine = lipgloss.Color("#3e8fb0") // link
	ColorFoam = lipgloss.Color("#9ccfd8") // info, running, enabled
	ColorIris = lipgloss.Color("#c4a7e7") // highlight, focus

	// Gradient endpoints for the banner, header and active tab label
	GradientStart = "#9ccfd8" // foam
	GradientEnd   = "#c4a7e7" // iris
)

// Shared text styles. Screens compose these instead of building their own.
var (
	TextStyle      = lipgloss.NewStyle().Foreground(ColorText)
	MutedStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	SubtleStyle    = lipgloss.NewStyle().Foreground(ColorSubtle)
	SelectedStyle  = lipgloss.NewStyle().Foreground(ColorBase).Background(ColorIris).Bold(true)
	HighlightStyle = lipgloss.NewStyle().Foreground(ColorFoam).Bold(true)
	DangerStyle    = lipgloss.NewStyle().Foreground(ColorLove).Bold(true)
	WarningStyle   = lipgloss.NewStyle().Foreground(ColorGold)
	StruckStyle    = lipgloss.NewStyle().Foreground(ColorMuted).Strikethrough(true)
)

// BorderColor is the frame color of a block: iris when it has focus.
func BorderColor(focused bool) lipgloss.TerminalColor {
	if focused {
		return ColorIris
	}
	return ColorOverlay
}
