package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/schedule"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/input"
)

// noneScreen is the landing section: banner, prompt and recent activity.
type noneScreen struct {
	m     *home
	frame int
}

func (s *noneScreen) handleKey(msg tea.KeyMsg) bool {
	switch {
	case keys.Matches(msg, keys.KeyAccounts):
		s.m.enter(SectionListAccounts)
	case keys.Matches(msg, keys.KeyInstances):
		s.m.enter(SectionListInstances)
	default:
		return false
	}
	return true
}

func (s *noneScreen) tick() {
	if s.m.sched.Due(schedule.Slow) {
		s.m.reloadActivity()
		s.frame++
	}
}

func (s *noneScreen) bindings() []key.Binding {
	return keys.Bindings(keys.KeyInstances, keys.KeyAccounts)
}

func (s *noneScreen) view(width, height int) string {
	innerW := width - 4
	prompt := "Select or Create Instance"
	if !s.m.loaded {
		prompt = "Loading..."
	}
	top := lipgloss.JoinVertical(lipgloss.Center,
		ui.Banner(s.frame, innerW),
		"",
		ui.SubtleStyle.Render(prompt),
	)
	top = lipgloss.PlaceHorizontal(innerW, lipgloss.Center, top)

	paneH := max(height-2-lipgloss.Height(top)-1, 3)
	s.m.activityPane.SetSize(innerW, paneH)
	body := lipgloss.JoinVertical(lipgloss.Left, top, "", s.m.activityPane.String())
	return ui.Block("", body, width, height, false)
}

// instancesScreen opens an instance by its list character.
type instancesScreen struct {
	m *home
}

func (s *instancesScreen) handleKey(msg tea.KeyMsg) bool {
	if keys.Matches(msg, keys.KeyAdd) {
		s.m.enter(SectionCreateInstance)
		return true
	}
	if i, ok := instanceIndex(msg); ok && i < len(s.m.instances) {
		s.m.openInstance(s.m.instances[i])
		return true
	}
	return false
}

func (s *instancesScreen) tick() {}

func (s *instancesScreen) bindings() []key.Binding {
	open := key.NewBinding(key.WithKeys(strings.Split(instanceKeys, "")...), key.WithHelp("0-z", "open"))
	return append([]key.Binding{open}, keys.Bindings(keys.KeyAdd)...)
}

func (s *instancesScreen) view(width, height int) string {
	if len(s.m.instances) == 0 {
		msg := s.m.placeholder("No instances yet. Press [+] to create one.")
		return ui.Block("Instances", ui.MutedStyle.Render(msg), width, height, true)
	}
	rows := make([][]string, 0, len(s.m.instances))
	for i, inst := range s.m.instances {
		played := "never"
		if !inst.LastPlayed.IsZero() {
			played = humanize.Time(inst.LastPlayed)
		}
		name := inst.Name
		if !inst.Installed() {
			name += " (" + strings.ReplaceAll(string(inst.Stage), "_", " ") + ")"
		}
		rows = append(rows, []string{instanceKey(i), name, inst.VersionLabel(), played})
	}
	table := ui.Table([]ui.Column{
		{Title: "", Width: 1},
		{Title: "Name"},
		{Title: "Version", Width: 28},
		{Title: "Last played", Width: 14},
	}, rows, width-4, -1)
	return ui.Block("Instances", table, width, height, true)
}

// accountsScreen lists offline accounts and adds new ones.
type accountsScreen struct {
	m        *home
	adding   bool
	username *input.TextBuffer
}

func newAccountsScreen(m *home) *accountsScreen {
	return &accountsScreen{m: m, username: input.NewTextBuffer("")}
}

func (s *accountsScreen) handleKey(msg tea.KeyMsg) bool {
	if s.adding {
		switch {
		case keys.Matches(msg, keys.KeyEsc):
			s.adding = false
			s.username.Set("")
			return true
		case keys.Matches(msg, keys.KeyEnter):
			s.add()
			return true
		}
		return s.username.HandleKey(msg)
	}
	if keys.Matches(msg, keys.KeyAdd) {
		s.adding = true
		return true
	}
	return false
}

func (s *accountsScreen) add() {
	name := strings.TrimSpace(s.username.Value())
	if name == "" {
		return
	}
	acc, ok := async.RunOrNotify(s.m.bridge, "add account", func(ctx context.Context) (launcher.Account, error) {
		return s.m.backend.AddAccount(ctx, name)
	}, nil)
	if !ok {
		return
	}
	s.adding = false
	s.username.Set("")
	s.m.reloadAccounts()
	s.m.success("Account Added", acc.Username)
}

func (s *accountsScreen) tick() {
	s.username.Tick(s.m.sched.Tick())
}

func (s *accountsScreen) bindings() []key.Binding {
	if s.adding {
		return keys.Bindings(keys.KeyEnter)
	}
	return keys.Bindings(keys.KeyAdd)
}

func (s *accountsScreen) view(width, height int) string {
	var lines []string
	if s.adding {
		lines = append(lines,
			ui.SubtleStyle.Render("Username: ")+ui.TextStyle.Render(s.username.Display(true)),
			"",
		)
	}
	if len(s.m.accounts) == 0 {
		lines = append(lines, ui.MutedStyle.Render(s.m.placeholder("No accounts yet. Press [+] to add one.")))
	} else {
		rows := make([][]string, 0, len(s.m.accounts))
		for _, a := range s.m.accounts {
			rows = append(rows, []string{a.Username, humanize.Time(a.Added)})
		}
		lines = append(lines, ui.Table([]ui.Column{{Title: "Username"}, {Title: "Added", Width: 16}}, rows, width-4, -1))
	}
	return ui.Block("Accounts", joinLines(lines), width, height, true)
}
