package app

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/kastheco/craftdeck/async"
	"github.com/kastheco/craftdeck/config"
	"github.com/kastheco/craftdeck/config/auditlog"
	"github.com/kastheco/craftdeck/keys"
	"github.com/kastheco/craftdeck/launcher"
	"github.com/kastheco/craftdeck/log"
	"github.com/kastheco/craftdeck/notify"
	"github.com/kastheco/craftdeck/schedule"
	"github.com/kastheco/craftdeck/ui"
	"github.com/kastheco/craftdeck/ui/overlay"
)

// activityLimit is how many audit events the home screen shows.
const activityLimit = 50

// Options are the collaborators of the session loop.
type Options struct {
	Config   *config.Config
	Backend  launcher.Backend
	Notifier notify.Notifier
	Executor *async.Executor
}

// Run is the main entrypoint into the application.
func Run(ctx context.Context, opts Options) error {
	// Set the terminal's default background to the theme base color so every
	// ANSI reset and unstyled cell falls back to it instead of black.
	restore := ui.SetTerminalBackground(string(ui.ColorBase))
	defer restore()

	zone.NewGlobal()
	p := tea.NewProgram(
		newHome(ctx, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if err != nil {
		log.ErrorLog.Printf("program exited: %v", err)
	}
	return err
}

type home struct {
	ctx context.Context

	cfg      *config.Config
	backend  launcher.Backend
	bridge   *async.Bridge
	notifier notify.Notifier
	sched    *schedule.Scheduler

	// -- Navigation --

	section Section
	screen  screen

	// -- Snapshots, refreshed on load and after mutations --

	loaded    bool
	accounts  []launcher.Account
	instances []launcher.Instance
	versions  []launcher.GameVersion
	activity  []auditlog.Event

	// install holds the CreateInstance task while the install screen is up.
	install async.Slot[launcher.Instance]

	// -- UI Components --

	statusBar    *ui.StatusBar
	menu         *ui.Menu
	activityPane *ui.ActivityPane
	toasts       *overlay.Toasts
	spinner      spinner.Model

	termWidth, termHeight int
}

func newHome(ctx context.Context, opts Options) *home {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewQueue(notify.WithWidth(cfg.GetNotificationWidth()))
	}
	exec := opts.Executor
	if exec == nil {
		exec = async.NewExecutor(cfg.GetMaxWorkers(), nil)
	}

	sched := schedule.New(cfg.TickInterval())
	sched.Register(schedule.Fast, cfg.FastRefresh())
	sched.Register(schedule.Slow, cfg.SlowRefresh())

	m := &home{
		ctx:          ctx,
		cfg:          cfg,
		backend:      opts.Backend,
		bridge:       async.NewBridge(exec, notifier, cfg.BridgeTimeout()),
		notifier:     notifier,
		sched:        sched,
		statusBar:    ui.NewStatusBar(),
		menu:         ui.NewMenu(),
		activityPane: ui.NewActivityPane(),
		toasts:       overlay.NewToasts(),
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.HighlightStyle)),
	}
	m.enter(SectionNone)
	return m
}

// tickMsg drives the whole session: schedule triggers, polling, caret blink.
type tickMsg time.Time

type keyupMsg struct{}

func (m *home) tickCmd() tea.Cmd {
	return tea.Tick(m.sched.Interval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *home) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tickCmd())
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick(time.Time(msg))
		return m, m.tickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case keyupMsg:
		m.menu.ClearKeydown()
		return m, nil
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case tea.MouseMsg:
		if v, ok := m.screen.(*viewScreen); ok {
			v.handleMouse(msg)
		}
		return m, nil
	case tea.KeyMsg:
		if name, ok := keys.Lookup(msg); ok && name == keys.KeyQuit {
			return m.handleQuit()
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

// tick advances the scheduler, performs the first load, then lets the active
// screen poll.
func (m *home) tick(now time.Time) {
	m.sched.Advance(now)
	if !m.loaded {
		m.load()
	}
	m.screen.tick()
}

// handleKey routes a key to the active screen. An unconsumed Esc returns to
// the home section.
func (m *home) handleKey(msg tea.KeyMsg) tea.Cmd {
	bindings := m.screen.bindings()
	if m.screen.handleKey(msg) {
		return m.keydownCallback(bindings, msg)
	}
	if name, ok := keys.Lookup(msg); ok && name == keys.KeyEsc && m.section != SectionNone {
		m.enter(SectionNone)
		return nil
	}
	return nil
}

// keydownCallback underlines the footer hint of the pressed key until the
// keyup message arrives.
func (m *home) keydownCallback(bindings []key.Binding, msg tea.KeyMsg) tea.Cmd {
	for _, b := range bindings {
		if key.Matches(msg, b) {
			m.menu.Keydown(b.Help().Key)
			return func() tea.Msg {
				select {
				case <-m.ctx.Done():
				case <-time.After(500 * time.Millisecond):
				}
				return keyupMsg{}
			}
		}
	}
	return nil
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	return m, tea.Quit
}

// enter switches to a section with a fresh screen. ViewInstance is entered
// through openInstance.
func (m *home) enter(section Section) {
	m.section = section
	switch section {
	case SectionListAccounts:
		m.screen = newAccountsScreen(m)
	case SectionListInstances:
		m.screen = &instancesScreen{m: m}
	case SectionCreateInstance:
		m.screen = newCreateScreen(m)
	case SectionInstallInstance:
		m.screen = &installScreen{m: m}
	default:
		m.section = SectionNone
		m.screen = &noneScreen{m: m}
	}
}

// openInstance enters ViewInstance on the Primary tab with fresh detail state.
func (m *home) openInstance(inst launcher.Instance) {
	m.section = SectionViewInstance
	m.screen = newViewScreen(m, inst)
}

// load fills every snapshot once. Failures are reported by the bridge and
// not retried.
func (m *home) load() {
	m.loaded = true
	m.reloadInstances()
	m.reloadAccounts()
	if versions, ok := async.RunOrNotify(m.bridge, "list game versions", m.backend.GameVersions, nil); ok {
		m.versions = versions
	}
	m.reloadActivity()
}

func (m *home) reloadInstances() {
	if instances, ok := async.RunOrNotify(m.bridge, "list instances", m.backend.ListInstances, nil); ok {
		m.instances = instances
	}
}

func (m *home) reloadAccounts() {
	if accounts, ok := async.RunOrNotify(m.bridge, "list accounts", m.backend.ListAccounts, nil); ok {
		m.accounts = accounts
	}
}

func (m *home) reloadActivity() {
	events, ok := async.RunOrNotify(m.bridge, "recent activity", func(ctx context.Context) ([]auditlog.Event, error) {
		return m.backend.RecentActivity(ctx, activityLimit)
	}, nil)
	if ok {
		m.activity = events
		m.activityPane.SetLines(ui.ActivityLines(events))
	}
}

// replaceInstance updates the snapshot entry with inst's id.
func (m *home) replaceInstance(inst launcher.Instance) {
	for i := range m.instances {
		if m.instances[i].ID == inst.ID {
			m.instances[i] = inst
			return
		}
	}
}

func (m *home) removeInstance(id string) {
	m.instances = slices.DeleteFunc(m.instances, func(i launcher.Instance) bool { return i.ID == id })
}

// success shows a short confirmation toast.
func (m *home) success(title, body string) {
	m.notifier.Push(title, body, notify.SuccessPair, 3*time.Second)
}

// updateHandleWindowSizeEvent sets the sizes of the components.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.termWidth = msg.Width
	m.termHeight = msg.Height
	m.statusBar.SetSize(msg.Width)
	m.menu.SetSize(msg.Width, 1)
	m.toasts.SetSize(msg.Width)
}

// sidebarWidth is the instance/account column width for the current terminal.
func (m *home) sidebarWidth() int {
	return min(max(m.termWidth/4, 24), 36)
}

func (m *home) statusData() ui.StatusBarData {
	data := ui.StatusBarData{Section: m.section.String()}
	if v, ok := m.screen.(*viewScreen); ok {
		data.Instance = v.inst.Name
		data.Tab = v.active.String()
		data.Running = v.running
	}
	return data
}

func (m *home) View() string {
	if m.termWidth == 0 || m.termHeight == 0 {
		return ""
	}
	bodyHeight := max(m.termHeight-2, 3)
	sideW := m.sidebarWidth()
	mainW := max(m.termWidth-sideW, 10)

	m.statusBar.SetData(m.statusData())
	m.menu.SetBindings(m.screen.bindings())

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebarView(sideW, bodyHeight),
		m.screen.view(mainW, bodyHeight),
	)
	result := lipgloss.JoinVertical(lipgloss.Left, m.statusBar.String(), body, m.menu.String())

	result = m.toasts.Overlay(result, m.notifier.Poll())

	// Process bubblezone markers before rendering is complete
	// (zone markers inflate lipgloss.Width if left in place).
	result = zone.Scan(result)

	return ui.FillBackground(result, m.termWidth, m.termHeight, nil)
}

// sidebarView renders the instance list over the account list, splitting the
// height 4:1.
func (m *home) sidebarView(width, height int) string {
	accountsH := max(height/5, 3)
	instancesH := height - accountsH

	instanceRows := make([]string, 0, len(m.instances))
	viewing := ""
	if v, ok := m.screen.(*viewScreen); ok {
		viewing = v.inst.ID
	}
	innerW := width - 4
	for i, inst := range m.instances {
		label := inst.Name
		if k := instanceKey(i); k != "" {
			label = "[" + k + "] " + label
		}
		label = ui.Truncate(label, innerW)
		switch {
		case inst.ID == viewing:
			instanceRows = append(instanceRows, ui.Row(label, innerW, true))
		case !inst.Installed():
			instanceRows = append(instanceRows, ui.StruckStyle.Render(label))
		default:
			instanceRows = append(instanceRows, ui.TextStyle.Render(label))
		}
	}
	if len(instanceRows) == 0 {
		instanceRows = append(instanceRows, ui.MutedStyle.Render(m.placeholder("No instances")))
	}

	accountRows := make([]string, 0, len(m.accounts))
	for _, a := range m.accounts {
		accountRows = append(accountRows, ui.TextStyle.Render(ui.Truncate(a.Username, innerW)))
	}
	if len(accountRows) == 0 {
		accountRows = append(accountRows, ui.MutedStyle.Render(m.placeholder("No accounts")))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		ui.Block("Instances", joinLines(instanceRows), width, instancesH, m.section == SectionListInstances),
		ui.Block("Accounts", joinLines(accountRows), width, accountsH, m.section == SectionListAccounts),
	)
}

// placeholder is "Loading..." until the first load completes.
func (m *home) placeholder(empty string) string {
	if !m.loaded {
		return "Loading..."
	}
	return empty
}

func joinLines(lines []string) string {
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
