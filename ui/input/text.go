// Package input holds the keyboard-driven form primitives shared by every
// screen: a text buffer, list/chip cursors and a paged search cursor.
package input

import (
	tea "github.com/charmbracelet/bubbletea"
)

// blinkPeriod is the number of ticks in one caret on/off cycle.
const blinkPeriod = 10

// TextBuffer is an append-only line editor with a blinking caret.
type TextBuffer struct {
	text  []rune
	blink bool
}

// NewTextBuffer returns a buffer holding initial.
func NewTextBuffer(initial string) *TextBuffer {
	return &TextBuffer{text: []rune(initial)}
}

// HandleKey appends printable runes and erases the last rune on
// backspace/delete. Anything else is left for the caller.
func (b *TextBuffer) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return false
		}
		b.text = append(b.text, msg.Runes...)
	case tea.KeySpace:
		b.text = append(b.text, ' ')
	case tea.KeyBackspace, tea.KeyDelete:
		if len(b.text) > 0 {
			b.text = b.text[:len(b.text)-1]
		}
	default:
		return false
	}
	return true
}

// Tick recomputes the caret phase. The caret shows for the first half of
// every blinkPeriod ticks.
func (b *TextBuffer) Tick(n uint64) {
	b.blink = n%blinkPeriod < blinkPeriod/2
}

// Blink reports whether the caret is in its visible phase.
func (b *TextBuffer) Blink() bool {
	return b.blink
}

func (b *TextBuffer) Value() string {
	return string(b.text)
}

func (b *TextBuffer) Set(s string) {
	b.text = []rune(s)
}

// Display renders the value, with a caret when focused and visible.
func (b *TextBuffer) Display(focused bool) string {
	if focused && b.blink {
		return string(b.text) + "_"
	}
	return string(b.text)
}
