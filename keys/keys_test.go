package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestEveryNameHasABinding(t *testing.T) {
	for n := KeyUp; n <= KeyFocusFullscreen; n++ {
		_, ok := GlobalkeyBindings[n]
		assert.True(t, ok, "KeyName %d has no binding", n)
	}
}

func TestGlobalKeyStringsMap_NavigationOnly(t *testing.T) {
	assert.Equal(t, KeyQuit, GlobalKeyStringsMap["ctrl+c"])
	assert.Equal(t, KeyPageDown, GlobalKeyStringsMap["pgdown"])
	_, ok := GlobalKeyStringsMap["a"]
	assert.False(t, ok, "letter shortcuts are contextual")
}

func TestGlobalKeyStringsMap_AgreesWithBindings(t *testing.T) {
	for s, name := range GlobalKeyStringsMap {
		assert.Contains(t, GlobalkeyBindings[name].Keys(), s)
	}
}

func TestLookup(t *testing.T) {
	name, ok := Lookup(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, ok)
	assert.Equal(t, KeyQuit, name)

	name, ok = Lookup(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, ok)
	assert.Equal(t, KeyEsc, name)

	_, ok = Lookup(runeKey('p'))
	assert.False(t, ok)
}

func TestMatches_LettersIgnoreCase(t *testing.T) {
	for _, name := range []KeyName{KeyAccounts, KeyInstances, KeyContinue, KeyPlay, KeyOptions, KeyDetails, KeyFocusFullscreen} {
		b := GlobalkeyBindings[name]
		lower := []rune(b.Keys()[0])[0]
		assert.True(t, Matches(runeKey(lower), name), b.Help().Desc)
		assert.True(t, Matches(runeKey(lower-'a'+'A'), name), b.Help().Desc)
	}
	assert.False(t, Matches(runeKey('P'), KeyOptions))
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches(runeKey('+'), KeyAdd))
	assert.True(t, Matches(runeKey('='), KeyAdd))
	assert.False(t, Matches(runeKey('-'), KeyAdd))
	assert.True(t, Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, KeyQuit))
	assert.True(t, Matches(tea.KeyMsg{Type: tea.KeyDelete}, KeyDelete))
	assert.True(t, Matches(tea.KeyMsg{Type: tea.KeyPgDown}, KeyPageDown))
	assert.False(t, Matches(runeKey('k'), KeyUp), "vim keys stay free for text input")
}

func TestBindings_PreservesOrder(t *testing.T) {
	bs := Bindings(KeyPlay, KeyOptions, KeyName(9999))
	if assert.Len(t, bs, 2) {
		assert.Equal(t, "play", bs[0].Help().Desc)
		assert.Equal(t, "options", bs[1].Help().Desc)
	}
}
