package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/log"
	"github.com/kastheco/craftdeck/notify"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/input"
)

type createFocus int

const (
	createFocusNone createFocus = iota
	createFocusName
	createFocusLoader
	createFocusVersion
)

// createScreen is the new-instance form. Save stays unavailable until the
// name is set and a version is chosen.
type createScreen struct {
	m       *home
	focus   createFocus
	name    *input.TextBuffer
	loader  *input.Cursor[launcher.Loader]
	version *input.Cursor[launcher.GameVersion]
}

func newCreateScreen(m *home) *createScreen {
	return &createScreen{
		m:       m,
		name:    input.NewTextBuffer(""),
		loader:  input.NewChip(launcher.Loaders, 0),
		version: input.NewList(m.versions, -1),
	}
}

func (s *createScreen) valid() bool {
	_, ok := s.version.Selected()
	return strings.TrimSpace(s.name.Value()) != "" && ok
}

func (s *createScreen) handleKey(msg tea.KeyMsg) bool {
	if s.focus != createFocusNone && keys.Matches(msg, keys.KeyEsc) {
		s.focus = createFocusNone
		return true
	}
	switch s.focus {
	case createFocusName:
		return s.name.HandleKey(msg)
	case createFocusLoader:
		before := s.loader.Index()
		handled := s.loader.HandleKey(msg)
		if s.loader.Index() != before {
			s.version.Clear()
		}
		return handled
	case createFocusVersion:
		return s.version.HandleKey(msg)
	}

	switch {
	case keys.Matches(msg, keys.KeyFocusName):
		s.focus = createFocusName
	case keys.Matches(msg, keys.KeyFocusLoader):
		s.focus = createFocusLoader
	case keys.Matches(msg, keys.KeyFocusVersion):
		s.focus = createFocusVersion
		if s.version.Index() < 0 && s.version.Len() > 0 {
			s.version.Select(0)
		}
	case keys.Matches(msg, keys.KeySave):
		if !s.valid() {
			return false
		}
		s.save()
	default:
		return false
	}
	return true
}

// save starts the install task and hands over to the install screen.
func (s *createScreen) save() {
	loader, _ := s.loader.Selected()
	version, _ := s.version.Selected()
	req := launcher.CreateRequest{
		Name:        strings.TrimSpace(s.name.Value()),
		GameVersion: version.Version,
		Loader:      loader,
	}
	backend := s.m.backend
	err := s.m.install.Start(s.m.bridge.Executor(), "create instance", func(ctx context.Context) (launcher.Instance, error) {
		return backend.CreateInstance(ctx, req)
	})
	if err != nil {
		s.m.bridge.Fail("create instance", err, nil)
		return
	}
	s.m.enter(SectionInstallInstance)
}

func (s *createScreen) tick() {
	s.name.Tick(s.m.sched.Tick())
}

func (s *createScreen) bindings() []key.Binding {
	switch s.focus {
	case createFocusLoader:
		return keys.Bindings(keys.KeyLeft, keys.KeyRight)
	case createFocusVersion:
		return keys.Bindings(keys.KeyUp, keys.KeyDown)
	case createFocusName:
		return nil
	}
	save := keys.GlobalkeyBindings[keys.KeySave]
	save.SetEnabled(s.valid())
	return append(keys.Bindings(keys.KeyFocusName, keys.KeyFocusLoader, keys.KeyFocusVersion), save)
}

func (s *createScreen) view(width, height int) string {
	innerW := width - 4
	label := func(text string, focus createFocus) string {
		if s.focus == focus {
			return ui.HighlightStyle.Render(text)
		}
		return ui.SubtleStyle.Render(text)
	}

	loaderNames := make([]string, len(launcher.Loaders))
	for i, l := range launcher.Loaders {
		loaderNames[i] = l.String()
	}

	save := ui.MutedStyle.Render("[S]ave")
	if s.valid() {
		save = ui.HighlightStyle.Render("[S]ave")
	}

	header := []string{
		label("[N]ame", createFocusName) + "  " + ui.TextStyle.Render(s.name.Display(s.focus == createFocusName)),
		"",
		label("[M]od Loader", createFocusLoader),
		ui.Chips(loaderNames, s.loader.Index(), s.focus == createFocusLoader),
		"",
		label("[G]ame Version", createFocusVersion),
	}
	listH := max(height-2-len(header)-2, 1)
	versions := s.versionRows(innerW, listH)
	body := lipgloss.JoinVertical(lipgloss.Left, append(header, versions, "", save)...)
	return ui.Block("Create Instance", body, width, height, true)
}

// versionRows renders a window of the version list that keeps the selection
// visible.
func (s *createScreen) versionRows(width, height int) string {
	opts := s.version.Options()
	if len(opts) == 0 {
		return ui.MutedStyle.Render(s.m.placeholder("No game versions available"))
	}
	sel := s.version.Index()
	start := 0
	if sel >= height {
		start = sel - height + 1
	}
	end := min(start+height, len(opts))
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, ui.Row(opts[i].Version, width, i == sel))
	}
	return joinLines(rows)
}

// installScreen is modal: it swallows every key until the install task has
// finished and the user acknowledges it.
type installScreen struct {
	m *home
}

func (s *installScreen) handleKey(msg tea.KeyMsg) bool {
	if !keys.Matches(msg, keys.KeyContinue) || !s.m.install.Finished() {
		return true
	}
	if _, err, _ := s.m.install.Take(); err != nil {
		log.ErrorLog.Printf("install instance: %v", err)
		notify.Error(s.m.notifier, "Failed to install instance: "+err.Error())
	}
	s.m.reloadInstances()
	s.m.reloadActivity()
	s.m.enter(SectionListInstances)
	return true
}

func (s *installScreen) tick() {}

func (s *installScreen) bindings() []key.Binding {
	if s.m.install.Finished() {
		return keys.Bindings(keys.KeyContinue)
	}
	return nil
}

func (s *installScreen) view(width, height int) string {
	var body string
	switch {
	case s.m.install.Running():
		body = s.m.spinner.View() + " " + ui.WarningStyle.Render("Installing...")
	case s.m.install.Finished():
		_, err, _ := s.m.install.Peek()
		if err != nil {
			body = lipgloss.JoinVertical(lipgloss.Left,
				ui.DangerStyle.Render("Install failed"),
				ui.TextStyle.Render(notify.Wrap(err.Error(), max(width-8, 20))),
				"",
				ui.SubtleStyle.Render("Press [C] to continue."),
			)
		} else {
			body = ui.HighlightStyle.Render("Installed, press [C] to continue.")
		}
	}
	inner := lipgloss.Place(width-4, height-2, lipgloss.Center, lipgloss.Center, body)
	return ui.Block("Create Instance", inner, width, height, true)
}
