package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/kastheco/craftdeck/config/auditlog"
)

// ActivityLine is a pre-formatted event for rendering in the activity pane.
type ActivityLine struct {
	Time    string // formatted as "Jan 02 15:04"
	Kind    string // event kind string (e.g. "instance_created")
	Icon    string // single-char icon
	Message string
	Color   lipgloss.Color // icon color
	Level   string         // "info", "warn", "error"
}

// ActivityLines converts stored events, newest first, into display lines.
func ActivityLines(events []auditlog.Event) []ActivityLine {
	lines := make([]ActivityLine, 0, len(events))
	for _, e := range events {
		icon, color := EventKindIcon(e.Kind.String())
		lines = append(lines, ActivityLine{
			Time:    e.Timestamp.Local().Format("Jan 02 15:04"),
			Kind:    e.Kind.String(),
			Icon:    icon,
			Message: e.Message,
			Color:   color,
			Level:   e.Level,
		})
	}
	return lines
}

// ActivityPane renders a scrollable list of recent launcher activity.
type ActivityPane struct {
	lines       []ActivityLine
	viewport    viewport.Model
	width       int
	height      int
	filterLabel string
}

func NewActivityPane() *ActivityPane {
	return &ActivityPane{viewport: viewport.New(0, 0)}
}

// SetSize updates the pane dimensions and rebuilds the viewport content.
func (p *ActivityPane) SetSize(w, h int) {
	p.width = w
	// 1 line for the header.
	p.height = h
	p.viewport.Width = w
	p.viewport.Height = max(h-1, 0)
	p.viewport.SetContent(p.renderBody())
}

func (p *ActivityPane) Height() int {
	return p.height
}

// SetLines replaces the event list and scrolls back to the newest entry.
func (p *ActivityPane) SetLines(lines []ActivityLine) {
	p.lines = lines
	p.viewport.SetContent(p.renderBody())
	p.viewport.GotoTop()
}

// SetFilter updates the filter label shown in the header.
func (p *ActivityPane) SetFilter(label string) {
	p.filterLabel = label
}

func (p *ActivityPane) ScrollDown(n int) {
	p.viewport.LineDown(n)
}

func (p *ActivityPane) ScrollUp(n int) {
	p.viewport.LineUp(n)
}

var (
	activityHeaderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	activityTimeStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	activityMsgStyle    = lipgloss.NewStyle().Foreground(ColorText)
	activityWarnStyle   = lipgloss.NewStyle().Foreground(ColorGold)
	activityErrorStyle  = lipgloss.NewStyle().Foreground(ColorLove)
	activityEmptyStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// String renders a 1-line header and the scrollable body.
func (p *ActivityPane) String() string {
	return lipgloss.JoinVertical(lipgloss.Left, p.renderHeader(), p.viewport.View())
}

func (p *ActivityPane) renderHeader() string {
	left := "── activity ──"
	right := p.filterLabel
	if right == "" {
		right = "all"
	}
	gap := max(p.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return activityHeaderStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func (p *ActivityPane) renderBody() string {
	if len(p.lines) == 0 {
		return activityEmptyStyle.Render(EmptyIcon + " no activity yet")
	}

	out := make([]string, 0, len(p.lines))
	for _, e := range p.lines {
		// time + space + icon + space
		avail := p.width - lipgloss.Width(e.Time) - lipgloss.Width(e.Icon) - 2
		msg := e.Message
		if p.width > 0 && avail > 0 {
			msg = ansi.Truncate(msg, avail, "…")
		}
		style := activityMsgStyle
		switch e.Level {
		case "warn":
			style = activityWarnStyle
		case "error":
			style = activityErrorStyle
		}
		icon := lipgloss.NewStyle().Foreground(e.Color).Render(e.Icon)
		out = append(out, activityTimeStyle.Render(e.Time)+" "+icon+" "+style.Render(msg))
	}
	return strings.Join(out, "\n")
}

// EmptyIcon marks placeholder rows.
const EmptyIcon = "·"

// EventKindIcon returns the icon and color for a given event kind string.
func EventKindIcon(kind string) (icon string, color lipgloss.Color) {
	switch auditlog.EventKind(kind) {
	case auditlog.EventInstanceCreated:
		return "✦", ColorFoam
	case auditlog.EventInstanceInstalled:
		return "✓", ColorFoam
	case auditlog.EventInstanceEdited:
		return "✎", ColorIris
	case auditlog.EventInstanceDeleted:
		return "✕", ColorLove
	case auditlog.EventInstanceLaunched:
		return "▶", ColorGold
	case auditlog.EventFileToggled:
		return "⟳", ColorSubtle
	case auditlog.EventFileRemoved:
		return "✕", ColorRose
	case auditlog.EventProjectInstalled:
		return "↓", ColorFoam
	case auditlog.EventPackInstalled:
		return "⇒", ColorIris
	case auditlog.EventAccountAdded:
		return "◆", ColorPine
	case auditlog.EventError:
		return "!", ColorLove
	default:
		return EmptyIcon, ColorMuted
	}
}
