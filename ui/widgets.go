package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

var blockStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

var blockTitleStyle = lipgloss.NewStyle().Bold(true)

// Block draws body in a rounded box of exactly width x height cells with
// title set into the top border. Body lines are clipped to fit.
func Block(title, body string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	color := BorderColor(focused)
	innerW := width - blockStyle.GetHorizontalFrameSize()
	innerH := height - blockStyle.GetVerticalFrameSize()

	lines := strings.Split(body, "\n")
	if len(lines) > innerH {
		lines = lines[:max(innerH, 0)]
	}
	for i, l := range lines {
		if ansi.StringWidth(l) > innerW {
			lines[i] = ansi.Truncate(l, innerW, "")
		}
	}
	box := blockStyle.
		BorderForeground(color).
		Width(innerW + 2).
		Height(max(innerH, 0)).
		Render(strings.Join(lines, "\n"))
	if title == "" {
		return box
	}

	// splice the title into the top border
	border := lipgloss.NewStyle().Foreground(color)
	label := " " + Truncate(title, width-6) + " "
	labelStyle := blockTitleStyle.Foreground(ColorSubtle)
	if focused {
		labelStyle = blockTitleStyle.Foreground(ColorIris)
	}
	fill := max(width-3-ansi.StringWidth(label), 0)
	top := border.Render("╭─") + labelStyle.Render(label) + border.Render(strings.Repeat("─", fill)+"╮")
	boxLines := strings.Split(box, "\n")
	boxLines[0] = top
	return strings.Join(boxLines, "\n")
}

var (
	chipStyle         = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorSubtle).Background(ColorSurface)
	chipSelectedStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorBase).Background(ColorFoam).Bold(true)
	chipFocusedStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(ColorBase).Background(ColorIris).Bold(true)
)

// Chips renders a horizontal single-choice selector.
func Chips(options []string, selected int, focused bool) string {
	parts := make([]string, len(options))
	for i, o := range options {
		switch {
		case i == selected && focused:
			parts[i] = chipFocusedStyle.Render(o)
		case i == selected:
			parts[i] = chipSelectedStyle.Render(o)
		default:
			parts[i] = chipStyle.Render(o)
		}
	}
	return strings.Join(parts, " ")
}

// Truncate shortens plain text to width cells with a trailing ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// Row renders one list line padded to width. Selected rows are highlighted
// across the full width.
func Row(text string, width int, selected bool) string {
	text = Truncate(text, width)
	if pad := width - ansi.StringWidth(text); pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	if selected {
		return SelectedStyle.Render(text)
	}
	return TextStyle.Render(text)
}

// Column is a fixed-width table column. Width 0 takes the remaining space.
type Column struct {
	Title string
	Width int
}

// Table lays out rows under a header. Cells are truncated to their column.
// selected is the highlighted row index, or -1.
func Table(cols []Column, rows [][]string, width, selected int) string {
	widths := make([]int, len(cols))
	fixed := len(cols) - 1 // separators
	for i, c := range cols {
		widths[i] = c.Width
		fixed += c.Width
	}
	for i, c := range cols {
		if c.Width == 0 {
			widths[i] = max(width-fixed, 1)
		}
	}

	cell := func(s string, w int) string {
		s = Truncate(s, w)
		return s + strings.Repeat(" ", max(w-ansi.StringWidth(s), 0))
	}
	line := func(cells []string) string {
		out := make([]string, len(cols))
		for i := range cols {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			out[i] = cell(v, widths[i])
		}
		return strings.Join(out, " ")
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title
	}
	lines := []string{SubtleStyle.Bold(true).Render(line(header))}
	for i, r := range rows {
		if i == selected {
			lines = append(lines, SelectedStyle.Render(line(r)))
			continue
		}
		lines = append(lines, TextStyle.Render(line(r)))
	}
	return strings.Join(lines, "\n")
}

// RenderMarkdown renders a project body for the terminal, wrapped to width.
func RenderMarkdown(md string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
