package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// GradientText colors every visible rune of s along a horizontal gradient
// from start to end. Multi-line input shares one gradient per column, so a
// block banner reads as a single sweep. Bad hex values return s unchanged.
func GradientText(s, start, end string) string {
	from, err := colorful.Hex(start)
	if err != nil {
		return s
	}
	to, err := colorful.Hex(end)
	if err != nil {
		return s
	}

	lines := strings.Split(s, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	if width == 0 {
		return s
	}

	// one style per column, reused across lines
	styles := make([]lipgloss.Style, width)
	for i := range styles {
		t := 0.0
		if width > 1 {
			t = float64(i) / float64(width-1)
		}
		c := from.BlendLuv(to, t).Clamped()
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	}

	var b strings.Builder
	for li, line := range lines {
		if li > 0 {
			b.WriteByte('\n')
		}
		for i, r := range []rune(line) {
			if r == ' ' {
				b.WriteRune(r)
				continue
			}
			b.WriteString(styles[i].Render(string(r)))
		}
	}
	return b.String()
}
