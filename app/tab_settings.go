package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/input"
)

type settingsFocus int

const (
	settingsFocusNone settingsFocus = iota
	settingsFocusActions
	settingsFocusName
	settingsFocusMemory
	settingsFocusFullscreen
)

type settingsAction int

const (
	actionLogs settingsAction = iota
	actionUpdateLoader
	actionOpenFolder
	actionCopyPath
	actionDelete
)

var settingsActions = []settingsAction{actionLogs, actionUpdateLoader, actionOpenFolder, actionCopyPath, actionDelete}

func (a settingsAction) String() string {
	switch a {
	case actionLogs:
		return "Logs"
	case actionUpdateLoader:
		return "Update Loader"
	case actionOpenFolder:
		return "Open Folder"
	case actionCopyPath:
		return "Copy Path"
	case actionDelete:
		return "Delete"
	}
	return ""
}

// memoryOptions are the heap sizes offered, in MB.
var memoryOptions = []int{2048, 4096, 6144, 8192}

func memoryLabel(mb int) string {
	return fmt.Sprintf("%d GB", mb/1024)
}

// memoryIndex maps a stored heap size to its chip. Unset means the default.
func memoryIndex(mb int) int {
	if mb <= 0 {
		mb = launcher.DefaultMemoryMB
	}
	return min(max(mb/2048-1, 0), len(memoryOptions)-1)
}

// settingsTab edits the instance options. Edits are held locally and written
// when the tab is left.
type settingsTab struct {
	v             *viewScreen
	focus         settingsFocus
	actions       *input.Cursor[settingsAction]
	name          *input.TextBuffer
	memory        *input.Cursor[int]
	fullscreen    *input.Cursor[bool]
	pendingDelete bool

	// memoryStart is the chip shown on entry; a stored size that is not one
	// of the options is only replaced once the chip moves off it.
	memoryStart int
}

func newSettingsTab(v *viewScreen) *settingsTab {
	fullscreen := 1
	if v.inst.Fullscreen != nil && *v.inst.Fullscreen {
		fullscreen = 0
	}
	memory := memoryIndex(v.inst.MemoryMB)
	return &settingsTab{
		v:           v,
		actions:     input.NewChip(settingsActions, 0),
		name:        input.NewTextBuffer(v.inst.Name),
		memory:      input.NewChip(memoryOptions, memory),
		fullscreen:  input.NewChip([]bool{true, false}, fullscreen),
		memoryStart: memory,
	}
}

func (t *settingsTab) handleKey(msg tea.KeyMsg) bool {
	if t.focus != settingsFocusNone && keys.Matches(msg, keys.KeyEsc) {
		t.focus = settingsFocusNone
		t.pendingDelete = false
		return true
	}
	switch t.focus {
	case settingsFocusActions:
		if keys.Matches(msg, keys.KeyEnter) {
			t.runAction()
			return true
		}
		before := t.actions.Index()
		handled := t.actions.HandleKey(msg)
		if t.actions.Index() != before {
			t.pendingDelete = false
		}
		return handled
	case settingsFocusName:
		if keys.Matches(msg, keys.KeyEnter) {
			t.focus = settingsFocusNone
			return true
		}
		return t.name.HandleKey(msg)
	case settingsFocusMemory:
		return t.memory.HandleKey(msg)
	case settingsFocusFullscreen:
		return t.fullscreen.HandleKey(msg)
	}

	switch {
	case keys.Matches(msg, keys.KeyFocusActions):
		t.focus = settingsFocusActions
	case keys.Matches(msg, keys.KeyFocusName):
		t.focus = settingsFocusName
	case keys.Matches(msg, keys.KeyFocusMemory):
		t.focus = settingsFocusMemory
	case keys.Matches(msg, keys.KeyFocusFullscreen):
		t.focus = settingsFocusFullscreen
	default:
		return false
	}
	return true
}

func (t *settingsTab) runAction() {
	action, _ := t.actions.Selected()
	if action != actionDelete {
		t.pendingDelete = false
	}
	m := t.v.m
	id := t.v.inst.ID

	switch action {
	case actionLogs:
		t.v.setTab(TabDiagnostics)
	case actionUpdateLoader:
		inst, ok := async.RunOrNotify(m.bridge, "update loader", func(ctx context.Context) (launcher.Instance, error) {
			return m.backend.UpdateLoader(ctx, id)
		}, nil)
		if ok {
			t.v.updateInstance(inst)
			m.success("Loader Updated", inst.VersionLabel())
		}
	case actionOpenFolder:
		async.Do(m.bridge, "open folder", func(ctx context.Context) error {
			return m.backend.OpenFolder(ctx, id)
		}, nil)
	case actionCopyPath:
		path, ok := async.RunOrNotify(m.bridge, "instance path", func(ctx context.Context) (string, error) {
			return m.backend.InstancePath(ctx, id)
		}, nil)
		if !ok {
			return
		}
		if err := clipboard.WriteAll(path); err != nil {
			m.bridge.Fail("copy path", err, nil)
			return
		}
		m.success("Copied", path)
	case actionDelete:
		if !t.pendingDelete {
			t.pendingDelete = true
			return
		}
		t.pendingDelete = false
		name := t.v.inst.Name
		deleted := async.Do(m.bridge, "delete instance", func(ctx context.Context) error {
			return m.backend.DeleteInstance(ctx, id)
		}, nil)
		if !deleted {
			return
		}
		m.removeInstance(id)
		m.reloadActivity()
		m.enter(SectionNone)
		m.success("Deleted", name)
	}
}

// save writes the edited options back if any of them changed.
func (t *settingsTab) save() {
	name := strings.TrimSpace(t.name.Value())
	if name == "" {
		name = t.v.inst.Name
	}
	fullscreen, _ := t.fullscreen.Selected()

	inst := t.v.inst
	current := inst.Fullscreen != nil && *inst.Fullscreen
	memory := inst.MemoryMB
	if t.memory.Index() != t.memoryStart {
		memory, _ = t.memory.Selected()
	}
	if name == inst.Name && memory == inst.MemoryMB && fullscreen == current {
		return
	}

	m := t.v.m
	edited, ok := async.RunOrNotify(m.bridge, "edit instance", func(ctx context.Context) (launcher.Instance, error) {
		return m.backend.EditInstance(ctx, inst.ID, func(i *launcher.Instance) {
			i.Name = name
			i.MemoryMB = memory
			i.Fullscreen = &fullscreen
		})
	}, nil)
	if !ok {
		return
	}
	t.v.updateInstance(edited)
	m.success("Saved", edited.Name)
}

func (t *settingsTab) tick() {
	t.name.Tick(t.v.m.sched.Tick())
}

func (t *settingsTab) bindings() []key.Binding {
	switch t.focus {
	case settingsFocusActions:
		enter := keys.GlobalkeyBindings[keys.KeyEnter]
		if t.pendingDelete {
			enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "confirm delete"))
		}
		return append(keys.Bindings(keys.KeyLeft, keys.KeyRight), enter)
	case settingsFocusMemory, settingsFocusFullscreen:
		return keys.Bindings(keys.KeyLeft, keys.KeyRight)
	case settingsFocusName:
		return keys.Bindings(keys.KeyEnter)
	}
	return keys.Bindings(keys.KeyFocusActions, keys.KeyFocusName, keys.KeyFocusMemory, keys.KeyFocusFullscreen)
}

func (t *settingsTab) view(width, height int) string {
	label := func(text string, focus settingsFocus) string {
		if t.focus == focus {
			return ui.HighlightStyle.Render(text)
		}
		return ui.SubtleStyle.Render(text)
	}

	actionNames := make([]string, len(settingsActions))
	for i, a := range settingsActions {
		actionNames[i] = a.String()
	}
	memNames := make([]string, len(memoryOptions))
	for i, mb := range memoryOptions {
		memNames[i] = memoryLabel(mb)
	}

	lines := []string{
		label("[A]ctions", settingsFocusActions),
		ui.Chips(actionNames, t.actions.Index(), t.focus == settingsFocusActions),
	}
	if t.pendingDelete {
		lines = append(lines, ui.DangerStyle.Render("Press [↵] again to delete "+t.v.inst.Name+"."))
	}
	lines = append(lines,
		"",
		label("[N]ame", settingsFocusName)+"  "+ui.TextStyle.Render(t.name.Display(t.focus == settingsFocusName)),
		"",
		label("[M]emory", settingsFocusMemory),
		ui.Chips(memNames, t.memory.Index(), t.focus == settingsFocusMemory),
		"",
		label("[F]ullscreen", settingsFocusFullscreen),
		ui.Chips([]string{"true", "false"}, t.fullscreen.Index(), t.focus == settingsFocusFullscreen),
	)
	form := joinLines(lines)

	info := t.infoBlock(width)
	formH := max(height-lipgloss.Height(info), 1)
	form = lipgloss.NewStyle().Height(formH).MaxHeight(formH).Render(form)
	return lipgloss.JoinVertical(lipgloss.Left, form, info)
}

// infoBlock is the read-only summary under the form.
func (t *settingsTab) infoBlock(width int) string {
	inst := t.v.inst
	loader := inst.Loader.String()
	if inst.LoaderVersion != "" {
		loader += " " + inst.LoaderVersion
	}
	rows := []string{
		ui.MutedStyle.Render("Game     ") + ui.TextStyle.Render(inst.GameVersion),
		ui.MutedStyle.Render("Loader   ") + ui.TextStyle.Render(loader),
		ui.MutedStyle.Render("Stage    ") + ui.TextStyle.Render(string(inst.Stage)),
		ui.MutedStyle.Render("Created  ") + ui.TextStyle.Render(inst.Created.Format("Jan 02 2006 15:04")),
	}
	return ui.Block("Option Info", joinLines(rows), width, len(rows)+2, false)
}
