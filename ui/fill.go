package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// FillBackground pads s to height lines so bubbletea's alt-screen renderer
// doesn't leave stale content below the rendered view. When bg is set, short
// lines are also padded to width in that color for terminals that ignore
// OSC 11.
func FillBackground(s string, width, height int, bg lipgloss.TerminalColor) string {
	if height <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	if bg == nil || width <= 0 {
		return strings.Join(lines, "\n")
	}

	pad := lipgloss.NewStyle().Background(bg)
	for i, l := range lines {
		if n := ansi.StringWidth(l); n < width {
			lines[i] = l + pad.Render(strings.Repeat(" ", width-n))
		}
	}
	return strings.Join(lines, "\n")
}
