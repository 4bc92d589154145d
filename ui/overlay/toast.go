// Package overlay draws floating layers on top of a rendered screen.
package overlay

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kastheco/craftdeck/notify"
	"github.com/mattn/go-runewidth"
)

// AnimPhase represents the current animation phase of a toast.
type AnimPhase int

const (
	PhaseSlidingIn AnimPhase = iota
	PhaseVisible
	PhaseSlidingOut
	PhaseDone
)

// Animation and display constants.
const (
	SlideInDuration  = 300 * time.Millisecond
	SlideOutDuration = 200 * time.Millisecond

	MinToastWidth = 24
	MaxToastWidth = notify.DefaultWidth + 4
	MaxToasts     = 5
)

// Phase derives the animation phase of n at now from its creation time and
// TTL. A notification with a TTL shorter than both slides only slides in.
func Phase(n notify.Notification, now time.Time) AnimPhase {
	elapsed := now.Sub(n.Created)
	switch {
	case n.Expired(now):
		return PhaseDone
	case elapsed < SlideInDuration:
		return PhaseSlidingIn
	case n.TTL-elapsed < SlideOutDuration && n.TTL > SlideInDuration+SlideOutDuration:
		return PhaseSlidingOut
	default:
		return PhaseVisible
	}
}

// calcToastWidth sizes a toast to its widest line plus padding (2) and
// border (2).
func calcToastWidth(n notify.Notification) int {
	content := runewidth.StringWidth(n.Title)
	for _, line := range strings.Split(n.Body, "\n") {
		content = max(content, runewidth.StringWidth(line))
	}
	return clampInt(content+4, MinToastWidth, MaxToastWidth)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// slideOffset returns the horizontal offset for a toast's slide animation.
func slideOffset(n notify.Notification, width int, now time.Time) int {
	fullOffset := width + 4
	elapsed := now.Sub(n.Created)
	switch Phase(n, now) {
	case PhaseSlidingIn:
		progress := float64(elapsed) / float64(SlideInDuration)
		// ease-out
		progress = 1 - (1-progress)*(1-progress)
		return int(float64(fullOffset) * (1 - progress))
	case PhaseSlidingOut:
		remaining := n.TTL - elapsed
		progress := 1 - float64(remaining)/float64(SlideOutDuration)
		// ease-in
		progress = progress * progress
		return int(float64(fullOffset) * progress)
	default:
		return 0
	}
}

// Toasts renders the visible notifications as a stack anchored to the top
// right corner of a width-wide screen.
type Toasts struct {
	width int
	now   func() time.Time
}

func NewToasts() *Toasts {
	return &Toasts{now: time.Now}
}

// SetSize updates the available viewport width for positioning.
func (t *Toasts) SetSize(width int) {
	t.width = width
}

// SetClock replaces time.Now.
func (t *Toasts) SetClock(now func() time.Time) {
	t.now = now
}

func renderToast(n notify.Notification, width int) string {
	title := lipgloss.NewStyle().Bold(true).Render(n.Title)
	content := title
	if n.Body != "" {
		content += "\n" + n.Body
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(n.Colors.Bg).
		BorderBackground(n.Colors.Bg).
		Foreground(n.Colors.Fg).
		Background(n.Colors.Bg).
		Padding(0, 1).
		Width(width - 2).
		Render(content)
}

// Overlay places the newest MaxToasts notifications over bg. Toasts are
// stacked oldest first and slide in from the right edge.
func (t *Toasts) Overlay(bg string, items []notify.Notification) string {
	if len(items) == 0 || t.width <= 0 {
		return bg
	}
	if len(items) > MaxToasts {
		items = items[len(items)-MaxToasts:]
	}
	now := t.now()
	y := 1
	for _, n := range items {
		if Phase(n, now) == PhaseDone {
			continue
		}
		w := calcToastWidth(n)
		box := renderToast(n, w)
		x := max(t.width-w-2, 0) + slideOffset(n, w, now)
		bg = PlaceOverlay(bg, box, x, y, t.width)
		y += lipgloss.Height(box)
	}
	return bg
}
