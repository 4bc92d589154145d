package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/schedule"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/input"
)

// maxLogLines bounds the in-memory tail; older lines are dropped first.
const maxLogLines = 5000

type logsFocus int

const (
	logsFocusNone logsFocus = iota
	logsFocusFilter
	logsFocusLines
)

// logsTab tails the instance log and filters it by a case-insensitive
// substring.
type logsTab struct {
	v      *viewScreen
	focus  logsFocus
	filter *input.TextBuffer

	lines   []string
	partial string // trailing output without a newline yet
	cursor  int64
	tailed  bool

	debounce schedule.Debouncer
	dirty    bool
	shown    []string
	viewport viewport.Model
	follow   bool
}

func newLogsTab(v *viewScreen) *logsTab {
	return &logsTab{
		v:        v,
		filter:   input.NewTextBuffer(""),
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

// appendOutput splits output into lines, carrying an unterminated tail over
// to the next chunk.
func (t *logsTab) appendOutput(output string) {
	if output == "" {
		return
	}
	text := t.partial + strings.ReplaceAll(output, "\t", "    ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	t.partial = parts[len(parts)-1]
	t.lines = append(t.lines, parts[:len(parts)-1]...)
	if over := len(t.lines) - maxLogLines; over > 0 {
		t.lines = t.lines[over:]
	}
	t.dirty = true
}

func (t *logsTab) tail() {
	cursor := t.cursor
	chunk, ok := async.RunOrNotify(t.v.m.bridge, "tail log", func(ctx context.Context) (launcher.LogChunk, error) {
		return t.v.m.backend.TailLog(ctx, t.v.inst.ID, cursor)
	}, nil)
	t.tailed = true
	if !ok {
		return
	}
	if chunk.Cursor < cursor {
		// the log was truncated by a new run
		t.lines = nil
		t.partial = ""
		t.dirty = true
	}
	t.cursor = chunk.Cursor
	t.appendOutput(chunk.Output)
}

// visible is every complete line plus the pending partial one.
func (t *logsTab) visible() []string {
	if t.partial == "" {
		return t.lines
	}
	return append(t.lines[:len(t.lines):len(t.lines)], t.partial)
}

func (t *logsTab) refilter() {
	needle := strings.ToLower(strings.TrimSpace(t.filter.Value()))
	if !t.debounce.Changed(needle) && !t.dirty {
		return
	}
	t.dirty = false

	all := t.visible()
	if needle == "" {
		t.shown = all
	} else {
		t.shown = t.shown[:0:0]
		for _, l := range all {
			if strings.Contains(strings.ToLower(l), needle) {
				t.shown = append(t.shown, l)
			}
		}
	}
	t.viewport.SetContent(strings.Join(t.shown, "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *logsTab) tick() {
	t.filter.Tick(t.v.m.sched.Tick())
	first := !t.tailed
	if first || t.v.m.sched.Due(schedule.Slow) {
		t.tail()
	}
	if first || t.v.m.sched.Due(schedule.Fast) {
		t.refilter()
	}
}

func (t *logsTab) handleKey(msg tea.KeyMsg) bool {
	if t.focus != logsFocusNone && keys.Matches(msg, keys.KeyEsc) {
		t.focus = logsFocusNone
		return true
	}
	switch t.focus {
	case logsFocusFilter:
		if keys.Matches(msg, keys.KeyEnter) {
			t.focus = logsFocusLines
			return true
		}
		return t.filter.HandleKey(msg)
	case logsFocusLines:
		t.viewport, _ = t.viewport.Update(msg)
		t.follow = t.viewport.AtBottom()
		return true
	}

	switch {
	case keys.Matches(msg, keys.KeyFocusSearch):
		t.focus = logsFocusFilter
	case keys.Matches(msg, keys.KeyFocusLines):
		t.focus = logsFocusLines
	default:
		return false
	}
	return true
}

func (t *logsTab) bindings() []key.Binding {
	switch t.focus {
	case logsFocusFilter:
		return keys.Bindings(keys.KeyEnter)
	case logsFocusLines:
		return keys.Bindings(keys.KeyUp, keys.KeyDown, keys.KeyPageUp, keys.KeyPageDown)
	}
	filter := keys.GlobalkeyBindings[keys.KeyFocusSearch]
	filter.SetHelp("s", "filter")
	return []key.Binding{filter, keys.GlobalkeyBindings[keys.KeyFocusLines]}
}

func (t *logsTab) view(width, height int) string {
	label := ui.SubtleStyle.Render("[S]earch ")
	if t.focus == logsFocusFilter {
		label = ui.HighlightStyle.Render("[S]earch ")
	}
	filterLine := label + ui.TextStyle.Render(t.filter.Display(t.focus == logsFocusFilter))

	bodyH := max(height-2, 1)
	if len(t.shown) == 0 {
		msg := "No log output yet"
		if t.filter.Value() != "" {
			msg = "No matching lines"
		}
		empty := lipgloss.Place(width, bodyH, lipgloss.Center, lipgloss.Center, ui.MutedStyle.Render(msg))
		return lipgloss.JoinVertical(lipgloss.Left, filterLine, "", empty)
	}

	if t.viewport.Width != width || t.viewport.Height != bodyH {
		t.viewport.Width = width
		t.viewport.Height = bodyH
		if t.follow {
			t.viewport.GotoBottom()
		}
	}
	style := ui.TextStyle
	if t.focus != logsFocusLines {
		style = ui.SubtleStyle
	}
	return lipgloss.JoinVertical(lipgloss.Left, filterLine, "", style.Render(t.viewport.View()))
}
