package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var keyStyle = lipgloss.NewStyle().Foreground(ColorSubtle)

var descStyle = lipgloss.NewStyle().Foreground(ColorMuted)

var sepStyle = lipgloss.NewStyle().Foreground(ColorOverlay)

var actionGroupStyle = lipgloss.NewStyle().Foreground(ColorRose)

var separator = " • "
var verticalSeparator = " │ "

// Menu is the key hint line at the bottom of the screen. Hints come in two
// groups: the screen's own actions, rendered in the accent color, and the
// navigation keys that work everywhere.
type Menu struct {
	actions       []key.Binding
	system        []key.Binding
	width, height int

	// keyDown is the help key of the binding last pressed, underlined until
	// the next tick clears it.
	keyDown string
}

// DefaultSystemBindings are shown after every screen's actions.
var DefaultSystemBindings = []key.Binding{
	key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "close")),
}

func NewMenu() *Menu {
	return &Menu{system: DefaultSystemBindings}
}

// SetBindings replaces the action group.
func (m *Menu) SetBindings(actions []key.Binding) {
	m.actions = actions
}

// SetSystemBindings replaces the trailing group.
func (m *Menu) SetSystemBindings(system []key.Binding) {
	m.system = system
}

func (m *Menu) Keydown(helpKey string) {
	m.keyDown = helpKey
}

func (m *Menu) ClearKeydown() {
	m.keyDown = ""
}

// SetSize sets the width of the window. The menu will be centered horizontally within this width.
func (m *Menu) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Menu) renderGroup(bindings []key.Binding, action bool) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		var (
			localActionStyle = actionGroupStyle
			localKeyStyle    = keyStyle
			localDescStyle   = descStyle
		)
		if m.keyDown != "" && m.keyDown == help.Key {
			localActionStyle = localActionStyle.Underline(true)
			localKeyStyle = localKeyStyle.Underline(true)
			localDescStyle = localDescStyle.Underline(true)
		}
		if action {
			out = append(out, localActionStyle.Render(help.Key+" "+help.Desc))
		} else {
			out = append(out, localKeyStyle.Render(help.Key)+descStyle.Render(" ")+localDescStyle.Render(help.Desc))
		}
	}
	return out
}

func (m *Menu) String() string {
	groups := make([]string, 0, 2)
	if items := m.renderGroup(m.actions, true); len(items) > 0 {
		groups = append(groups, strings.Join(items, sepStyle.Render(separator)))
	}
	if items := m.renderGroup(m.system, false); len(items) > 0 {
		groups = append(groups, strings.Join(items, sepStyle.Render(separator)))
	}
	text := strings.Join(groups, sepStyle.Render(verticalSeparator))
	if m.width <= 0 {
		return text
	}
	return lipgloss.Place(m.width, max(m.height, 1), lipgloss.Center, lipgloss.Center, text)
}
