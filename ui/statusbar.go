package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CloseHint is shown at the right edge of the header.
const CloseHint = "[Ctrl + C] to close."

// StatusBarData holds the contextual information displayed in the header.
type StatusBarData struct {
	Section  string // e.g. "Instances"; empty on the home screen
	Instance string // name of the viewed instance
	Tab      string // active ViewInstance tab
	Running  bool   // the viewed instance is playing
}

// StatusBar is the one-line header at the top of the screen.
type StatusBar struct {
	width int
	data  StatusBarData
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetSize sets the terminal width for the status bar.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetData updates the status bar content.
func (s *StatusBar) SetData(data StatusBarData) {
	s.data = data
}

var statusBarStyle = lipgloss.NewStyle().
	Background(ColorSurface).
	Foreground(ColorText).
	Padding(0, 1)

var statusBarSepStyle = lipgloss.NewStyle().
	Foreground(ColorOverlay).
	Background(ColorSurface)

var statusBarSectionStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle).
	Background(ColorSurface)

var statusBarInstanceStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSurface)

var statusBarRunningStyle = lipgloss.NewStyle().
	Foreground(ColorFoam).
	Background(ColorSurface)

var statusBarHintStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Background(ColorSurface)

const statusBarSep = " │ "

func (s *StatusBar) String() string {
	if s.width < 10 {
		return ""
	}

	parts := make([]string, 0, 4)
	parts = append(parts, lipgloss.NewStyle().Bold(true).Background(ColorSurface).
		Render(GradientText(AppTitle, GradientStart, GradientEnd)))

	if s.data.Section != "" {
		parts = append(parts, statusBarSectionStyle.Render(s.data.Section))
	}
	if s.data.Instance != "" {
		label := statusBarInstanceStyle.Render(s.data.Instance)
		if s.data.Tab != "" {
			label += statusBarSectionStyle.Render(" / " + s.data.Tab)
		}
		parts = append(parts, label)
	}
	if s.data.Running {
		parts = append(parts, statusBarRunningStyle.Render("● playing"))
	}

	sep := statusBarSepStyle.Render(statusBarSep)
	left := strings.Join(parts, sep)
	right := statusBarHintStyle.Render(CloseHint)

	inner := s.width - statusBarStyle.GetHorizontalFrameSize()
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// drop the hint before the breadcrumbs
		return statusBarStyle.Width(s.width).MaxHeight(1).Render(left)
	}
	filler := lipgloss.NewStyle().Background(ColorSurface).Render(strings.Repeat(" ", gap))
	return statusBarStyle.Width(s.width).Render(left + filler + right)
}
