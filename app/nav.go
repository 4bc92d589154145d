package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Section is the top-level navigation state. Exactly one is active.
type Section int

const (
	SectionNone Section = iota
	SectionListAccounts
	SectionListInstances
	SectionCreateInstance
	SectionInstallInstance
	SectionViewInstance
)

func (s Section) String() string {
	switch s {
	case SectionListAccounts:
		return "Accounts"
	case SectionListInstances:
		return "Instances"
	case SectionCreateInstance:
		return "Create Instance"
	case SectionInstallInstance:
		return "Installing"
	case SectionViewInstance:
		return "Viewing"
	default:
		return ""
	}
}

// Tab is the active pane of ViewInstance. It only matters in that section.
type Tab int

const (
	TabPrimary Tab = iota
	TabDiscover
	TabSettings
	TabDiagnostics
)

// tabNames is indexed by Tab.
var tabNames = []string{"Files", "Discover", "Options", "Logs"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return ""
}

// screen is the handler of one Section. handleKey reports whether the key was
// consumed; unconsumed keys fall through to the root.
type screen interface {
	handleKey(msg tea.KeyMsg) bool
	tick()
	view(width, height int) string
	bindings() []key.Binding
}

// tab is the handler of one ViewInstance tab. It sees keys before the
// shortcuts shared by every tab.
type tab interface {
	handleKey(msg tea.KeyMsg) bool
	tick()
	view(width, height int) string
	bindings() []key.Binding
}

// instanceKeys are the characters that open an instance from the list, by
// list position.
const instanceKeys = "0123456789abcdefghijklmnopqrstuvwxyz"

// instanceKey returns the list character of index i, or "" past the end.
func instanceKey(i int) string {
	if i < 0 || i >= len(instanceKeys) {
		return ""
	}
	return instanceKeys[i : i+1]
}

// instanceIndex maps a single-rune key press to a list position.
func instanceIndex(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return 0, false
	}
	i := strings.IndexRune(instanceKeys, msg.Runes[0])
	return i, i >= 0
}
