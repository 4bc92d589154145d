package app

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/schedule"
	"github.com/kastheco/craftdeck/ui"
)

var (
	keyNextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	keyPrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
)

// viewScreen is ViewInstance: a tab bar over the instance's files, Modrinth
// search, options and log.
type viewScreen struct {
	m       *home
	inst    launcher.Instance
	tabBar  *ui.TabBar
	active  Tab
	running bool

	files    *filesTab
	discover *discoverTab
	settings *settingsTab
	logs     *logsTab
}

func newViewScreen(m *home, inst launcher.Instance) *viewScreen {
	v := &viewScreen{
		m:      m,
		inst:   inst,
		tabBar: ui.NewTabBar(tabNames...),
	}
	v.files = newFilesTab(v)
	v.discover = newDiscoverTab(v)
	v.settings = newSettingsTab(v)
	v.logs = newLogsTab(v)

	if running, ok := async.RunOrNotify(m.bridge, "check running", v.isRunning, nil); ok {
		v.running = running
	}
	v.files.reload("")
	return v
}

func (v *viewScreen) isRunning(ctx context.Context) (bool, error) {
	return v.m.backend.IsRunning(ctx, v.inst.ID)
}

func (v *viewScreen) current() tab {
	switch v.active {
	case TabDiscover:
		return v.discover
	case TabSettings:
		return v.settings
	case TabDiagnostics:
		return v.logs
	default:
		return v.files
	}
}

// setTab switches tabs. Leaving Options saves its edits; entering it starts
// from the stored instance.
func (v *viewScreen) setTab(t Tab) {
	if t == v.active {
		return
	}
	if v.active == TabSettings {
		v.settings.save()
	}
	if t == TabSettings {
		v.settings = newSettingsTab(v)
	}
	v.active = t
	v.tabBar.SetActiveTab(int(t))
}

func (v *viewScreen) handleKey(msg tea.KeyMsg) bool {
	if v.current().handleKey(msg) {
		return true
	}
	switch {
	case keys.Matches(msg, keys.KeyPlay):
		if !v.running {
			v.play()
		}
	case keys.Matches(msg, keys.KeyOptions):
		v.setTab(TabSettings)
	case key.Matches(msg, keyNextTab):
		v.setTab(Tab((int(v.active) + 1) % len(tabNames)))
	case key.Matches(msg, keyPrevTab):
		v.setTab(Tab((int(v.active) - 1 + len(tabNames)) % len(tabNames)))
	case keys.Matches(msg, keys.KeyEsc) && v.active != TabPrimary:
		v.setTab(TabPrimary)
	default:
		return false
	}
	return true
}

// mouseTab is a tab with clickable content.
type mouseTab interface {
	handleMouse(msg tea.MouseMsg) bool
}

func (v *viewScreen) handleMouse(msg tea.MouseMsg) {
	if v.tabBar.HandleClick(msg) {
		target := Tab(v.tabBar.ActiveTab())
		// let setTab see the old tab
		v.tabBar.SetActiveTab(int(v.active))
		v.setTab(target)
		return
	}
	if t, ok := v.current().(mouseTab); ok {
		t.handleMouse(msg)
	}
}

func (v *viewScreen) play() {
	ok := async.Do(v.m.bridge, "run instance", func(ctx context.Context) error {
		return v.m.backend.RunInstance(ctx, v.inst.ID)
	}, func(err error) string {
		if errors.Is(err, launcher.ErrAlreadyRunning) {
			return v.inst.Name + " is already running"
		}
		return "Failed to launch " + v.inst.Name + ": " + err.Error()
	})
	if ok {
		v.running = true
		v.m.success("Launched", v.inst.Name)
	}
}

func (v *viewScreen) tick() {
	if v.running && v.m.sched.Due(schedule.Slow) {
		if running, ok := async.RunOrNotify(v.m.bridge, "check running", v.isRunning, nil); ok {
			v.running = running
		}
	}
	v.current().tick()
}

func (v *viewScreen) bindings() []key.Binding {
	out := v.current().bindings()
	play := keys.GlobalkeyBindings[keys.KeyPlay]
	play.SetEnabled(!v.running && v.inst.Installed())
	return append(out, play, keys.GlobalkeyBindings[keys.KeyOptions], keyNextTab)
}

// updateInstance replaces the viewed instance and its snapshot entry.
func (v *viewScreen) updateInstance(inst launcher.Instance) {
	v.inst = inst
	v.m.replaceInstance(inst)
}

func (v *viewScreen) view(width, height int) string {
	status := ui.MutedStyle.Render("stopped")
	if v.running {
		status = ui.HighlightStyle.Render("● playing")
	}
	title := ui.TextStyle.Bold(true).Render("Viewing: "+v.inst.Name) + "  " +
		ui.SubtleStyle.Render(v.inst.VersionLabel()) + "  " + status
	if !v.inst.Installed() {
		title += "  " + ui.WarningStyle.Render("not installed")
	}

	v.tabBar.SetSize(width, height-1)
	cw, ch := v.tabBar.ContentSize()
	content := v.current().view(cw, ch)
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.Truncate(title, width),
		v.tabBar.String(content),
	)
}
