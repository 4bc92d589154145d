package input

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Mode picks the key set a Cursor answers to.
type Mode int

const (
	// ListMode moves with Up/Down and jumps with PgUp/PgDn.
	ListMode Mode = iota
	// ChipMode moves with Left/Right and jumps with Home/End.
	ChipMode
)

// Cursor is an optional selection over a fixed option set. When an index is
// selected it is always within [0, len(options)).
type Cursor[T any] struct {
	options []T
	index   int // -1 when nothing is selected
	mode    Mode
}

// NewList returns a list-mode cursor selecting initial, or nothing when
// initial is out of range.
func NewList[T any](options []T, initial int) *Cursor[T] {
	return newCursor(options, initial, ListMode)
}

// NewChip returns a chip-mode cursor selecting initial, or nothing when
// initial is out of range.
func NewChip[T any](options []T, initial int) *Cursor[T] {
	return newCursor(options, initial, ChipMode)
}

func newCursor[T any](options []T, initial int, mode Mode) *Cursor[T] {
	c := &Cursor[T]{options: options, index: -1, mode: mode}
	c.Select(initial)
	return c
}

// HandleKey moves the selection. The first direction press on an unselected,
// non-empty cursor selects the first option. Recognised keys are consumed
// even when there is nothing to move.
func (c *Cursor[T]) HandleKey(msg tea.KeyMsg) bool {
	prev, next, first, last := tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown
	if c.mode == ChipMode {
		prev, next, first, last = tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd
	}

	n := len(c.options)
	switch msg.Type {
	case prev:
		if c.index < 0 {
			if n > 0 {
				c.index = 0
			}
		} else if c.index > 0 {
			c.index--
		}
	case next:
		if c.index < 0 {
			if n > 0 {
				c.index = 0
			}
		} else if c.index+1 < n {
			c.index++
		}
	case first:
		if n > 0 {
			c.index = 0
		}
	case last:
		if n > 0 {
			c.index = n - 1
		}
	default:
		return false
	}
	return true
}

// Selected returns the selected option.
func (c *Cursor[T]) Selected() (T, bool) {
	if c.index < 0 || c.index >= len(c.options) {
		var zero T
		return zero, false
	}
	return c.options[c.index], true
}

// Index returns the selected index, or -1.
func (c *Cursor[T]) Index() int {
	return c.index
}

// Select sets the selection; an out of range i clears it.
func (c *Cursor[T]) Select(i int) {
	if i < 0 || i >= len(c.options) {
		c.index = -1
		return
	}
	c.index = i
}

// Clear drops the selection.
func (c *Cursor[T]) Clear() {
	c.index = -1
}

// SetOptions replaces the option set and clears the selection.
func (c *Cursor[T]) SetOptions(options []T) {
	c.options = options
	c.index = -1
}

func (c *Cursor[T]) Options() []T {
	return c.options
}

func (c *Cursor[T]) Len() int {
	return len(c.options)
}
