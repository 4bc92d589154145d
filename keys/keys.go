package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyQuit // ctrl+c, checked before any screen sees the key

	// None section
	KeyAccounts
	KeyInstances

	KeyAdd // create an instance / open Discover from the files tab

	// Create screen
	KeyFocusName
	KeyFocusLoader
	KeyFocusVersion
	KeySave

	KeyContinue // acknowledge a finished install

	// ViewInstance shortcuts
	KeyPlay
	KeyOptions

	// Discover and Diagnostics
	KeyFocusSearch
	KeyFocusResults
	KeyFocusLines
	KeyDetails

	// Settings
	KeyFocusActions
	KeyFocusMemory
	KeyFocusFullscreen
)

// GlobalKeyStringsMap maps the unambiguous navigation keys to their names.
// Letter shortcuts are contextual and only reachable through GlobalkeyBindings;
// they answer to either case.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pgup":      KeyPageUp,
	"pgdown":    KeyPageDown,
	"enter":     KeyEnter,
	"esc":       KeyEsc,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"ctrl+c":    KeyQuit,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	KeyLeft: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←", "left"),
	),
	KeyRight: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("→", "right"),
	),
	KeyHome: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home", "first"),
	),
	KeyEnd: key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "last"),
	),
	KeyPageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "first"),
	),
	KeyPageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "last"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "select"),
	),
	KeyEsc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	KeyBackspace: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("⌫", "erase"),
	),
	KeyDelete: key.NewBinding(
		key.WithKeys("delete"),
		key.WithHelp("del", "remove"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "close"),
	),

	KeyAccounts: key.NewBinding(
		key.WithKeys("a", "A"),
		key.WithHelp("a", "accounts"),
	),
	KeyInstances: key.NewBinding(
		key.WithKeys("i", "I"),
		key.WithHelp("i", "instances"),
	),
	KeyAdd: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "add"),
	),

	KeyFocusName: key.NewBinding(
		key.WithKeys("n", "N"),
		key.WithHelp("n", "name"),
	),
	KeyFocusLoader: key.NewBinding(
		key.WithKeys("m", "M"),
		key.WithHelp("m", "mod loader"),
	),
	KeyFocusVersion: key.NewBinding(
		key.WithKeys("g", "G"),
		key.WithHelp("g", "game version"),
	),
	KeySave: key.NewBinding(
		key.WithKeys("s", "S"),
		key.WithHelp("s", "save"),
	),
	KeyContinue: key.NewBinding(
		key.WithKeys("c", "C"),
		key.WithHelp("c", "continue"),
	),

	KeyPlay: key.NewBinding(
		key.WithKeys("p", "P"),
		key.WithHelp("p", "play"),
	),
	KeyOptions: key.NewBinding(
		key.WithKeys("o", "O"),
		key.WithHelp("o", "options"),
	),

	KeyFocusSearch: key.NewBinding(
		key.WithKeys("s", "S"),
		key.WithHelp("s", "search"),
	),
	KeyFocusResults: key.NewBinding(
		key.WithKeys("r", "R"),
		key.WithHelp("r", "results"),
	),
	KeyFocusLines: key.NewBinding(
		key.WithKeys("l", "L"),
		key.WithHelp("l", "lines"),
	),
	KeyDetails: key.NewBinding(
		key.WithKeys("d", "D"),
		key.WithHelp("d", "details"),
	),

	KeyFocusActions: key.NewBinding(
		key.WithKeys("a", "A"),
		key.WithHelp("a", "actions"),
	),
	KeyFocusMemory: key.NewBinding(
		key.WithKeys("m", "M"),
		key.WithHelp("m", "memory"),
	),
	KeyFocusFullscreen: key.NewBinding(
		key.WithKeys("f", "F"),
		key.WithHelp("f", "fullscreen"),
	),
}

// Lookup names the navigation key msg stands for, if any.
func Lookup(msg tea.KeyMsg) (KeyName, bool) {
	name, ok := GlobalKeyStringsMap[msg.String()]
	return name, ok
}

// Matches reports whether msg triggers the binding registered for name.
func Matches(msg tea.KeyMsg, name KeyName) bool {
	b, ok := GlobalkeyBindings[name]
	if !ok {
		return false
	}
	return key.Matches(msg, b)
}

// Bindings returns the bindings for names in order, skipping unknown names.
// Used to build per-screen footers.
func Bindings(names ...KeyName) []key.Binding {
	out := make([]key.Binding, 0, len(names))
	for _, n := range names {
		if b, ok := GlobalkeyBindings[n]; ok {
			out = append(out, b)
		}
	}
	return out
}
