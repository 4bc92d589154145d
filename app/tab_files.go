package app

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/input"
)

const (
	filesFooter  = "[↵] to enable/disable mod | [Del] to remove mod"
	deletePrompt = "Press [Del] again to delete."
)

// filesTab lists the instance's installed files sorted by file name.
type filesTab struct {
	v             *viewScreen
	cursor        *input.Cursor[launcher.ProjectFile]
	pendingDelete bool
}

func newFilesTab(v *viewScreen) *filesTab {
	return &filesTab{v: v, cursor: input.NewList[launcher.ProjectFile](nil, -1)}
}

// sortFiles flattens the id map into file name order.
func sortFiles(files map[string]launcher.ProjectFile) []launcher.ProjectFile {
	out := make([]launcher.ProjectFile, 0, len(files))
	for _, f := range files {
		out = append(out, f)
	}
	slices.SortFunc(out, func(a, b launcher.ProjectFile) int {
		if c := strings.Compare(a.FileName, b.FileName); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// reload refreshes the list and selects the file with id, or nothing.
func (t *filesTab) reload(selectID string) {
	files, ok := async.RunOrNotify(t.v.m.bridge, "list files", func(ctx context.Context) (map[string]launcher.ProjectFile, error) {
		return t.v.m.backend.ListFiles(ctx, t.v.inst.ID)
	}, nil)
	if !ok {
		return
	}
	sorted := sortFiles(files)
	t.cursor.SetOptions(sorted)
	if selectID != "" {
		t.cursor.Select(slices.IndexFunc(sorted, func(f launcher.ProjectFile) bool { return f.ID == selectID }))
	}
}

// installedProjects is the set of Modrinth project ids already in the
// instance.
func (t *filesTab) installedProjects() map[string]bool {
	out := make(map[string]bool)
	for _, f := range t.cursor.Options() {
		if f.ProjectID != "" {
			out[f.ProjectID] = true
		}
	}
	return out
}

func (t *filesTab) handleKey(msg tea.KeyMsg) bool {
	switch {
	case keys.Matches(msg, keys.KeyUp), keys.Matches(msg, keys.KeyDown):
		t.pendingDelete = false
		return t.cursor.HandleKey(msg)
	case keys.Matches(msg, keys.KeyEnter):
		t.toggle()
		return true
	case keys.Matches(msg, keys.KeyDelete):
		if _, ok := t.cursor.Selected(); !ok {
			return true
		}
		if !t.pendingDelete {
			t.pendingDelete = true
			return true
		}
		t.pendingDelete = false
		t.remove()
		return true
	case keys.Matches(msg, keys.KeyAdd):
		if t.v.inst.Loader != launcher.LoaderVanilla {
			t.v.setTab(TabDiscover)
		}
		return true
	}
	// any move away from the file cancels its delete prompt
	before := t.cursor.Index()
	handled := t.cursor.HandleKey(msg)
	if t.cursor.Index() != before {
		t.pendingDelete = false
	}
	return handled
}

// handleMouse selects the clicked file.
func (t *filesTab) handleMouse(msg tea.MouseMsg) bool {
	i, ok := ui.ClickedRow(msg, 0, t.cursor.Len())
	if !ok {
		return false
	}
	if i != t.cursor.Index() {
		t.pendingDelete = false
	}
	t.cursor.Select(i)
	return true
}

func (t *filesTab) toggle() {
	sel, ok := t.cursor.Selected()
	if !ok {
		return
	}
	f, ok := async.RunOrNotify(t.v.m.bridge, "toggle file", func(ctx context.Context) (launcher.ProjectFile, error) {
		return t.v.m.backend.ToggleFile(ctx, t.v.inst.ID, sel.ID)
	}, nil)
	if ok {
		t.reload(f.ID)
	}
}

// remove deletes the selected file and re-selects the one before it.
func (t *filesTab) remove() {
	sel, ok := t.cursor.Selected()
	if !ok {
		return
	}
	prev, _ := input.PreviousMatching(t.cursor.Options(), func(f launcher.ProjectFile) bool { return f.ID == sel.ID })
	removed := async.Do(t.v.m.bridge, "remove file", func(ctx context.Context) error {
		return t.v.m.backend.RemoveFile(ctx, t.v.inst.ID, sel.ID)
	}, nil)
	if !removed {
		return
	}
	t.reload(prev.ID)
	if _, ok := t.cursor.Selected(); !ok && t.cursor.Len() > 0 {
		// the first file was removed; its successor moves up
		t.cursor.Select(0)
	}
}

func (t *filesTab) tick() {}

func (t *filesTab) bindings() []key.Binding {
	add := keys.GlobalkeyBindings[keys.KeyAdd]
	add.SetEnabled(t.v.inst.Loader != launcher.LoaderVanilla)
	return append(keys.Bindings(keys.KeyEnter, keys.KeyDelete), add)
}

func (t *filesTab) view(width, height int) string {
	footer := ui.MutedStyle.Render(filesFooter)
	if t.pendingDelete {
		footer = ui.DangerStyle.Render(deletePrompt)
	}

	files := t.cursor.Options()
	if len(files) == 0 {
		empty := lipgloss.Place(width, max(height-1, 1), lipgloss.Center, lipgloss.Center,
			ui.MutedStyle.Render("No Mods Found..."))
		return lipgloss.JoinVertical(lipgloss.Left, empty, footer)
	}

	// header + footer
	rowsH := max(height-2, 1)
	sel := t.cursor.Index()
	start := 0
	if sel >= rowsH {
		start = sel - rowsH + 1
	}
	end := min(start+rowsH, len(files))

	rows := make([][]string, 0, end-start)
	for _, f := range files[start:end] {
		state := "on"
		if f.Disabled() {
			state = "off"
		}
		rows = append(rows, []string{state, f.DisplayName(), f.Kind.String(), f.DisplaySize()})
	}
	table := ui.Table([]ui.Column{
		{Title: "", Width: 3},
		{Title: "Name"},
		{Title: "Kind", Width: 12},
		{Title: "Size", Width: 9},
	}, rows, width, sel-start)
	lines := strings.Split(table, "\n")
	for k := 1; k < len(lines); k++ {
		lines[k] = zone.Mark(ui.RowZoneID(start+k-1), lines[k])
	}
	table = strings.Join(lines, "\n")

	table = lipgloss.NewStyle().Height(height - 1).Render(table)
	return lipgloss.JoinVertical(lipgloss.Left, table, footer)
}
