package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyOf(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestTextBuffer(t *testing.T) {
	b := NewTextBuffer("ab")

	assert.True(t, b.HandleKey(runes("c")))
	assert.True(t, b.HandleKey(keyOf(tea.KeySpace)))
	assert.True(t, b.HandleKey(runes("é")))
	assert.Equal(t, "abc é", b.Value())

	assert.True(t, b.HandleKey(keyOf(tea.KeyBackspace)))
	assert.True(t, b.HandleKey(keyOf(tea.KeyDelete)))
	assert.Equal(t, "abc", b.Value())

	assert.False(t, b.HandleKey(keyOf(tea.KeyEnter)))
	assert.False(t, b.HandleKey(keyOf(tea.KeyUp)))

	b.Set("")
	assert.True(t, b.HandleKey(keyOf(tea.KeyBackspace)), "erasing empty is still consumed")
	assert.Equal(t, "", b.Value())
}

func TestTextBuffer_Blink(t *testing.T) {
	b := NewTextBuffer("x")
	for tick, want := range map[uint64]bool{0: true, 4: true, 5: false, 9: false, 10: true, 23: true, 27: false} {
		b.Tick(tick)
		assert.Equal(t, want, b.Blink(), "tick %d", tick)
	}

	b.Tick(0)
	assert.Equal(t, "x_", b.Display(true))
	assert.Equal(t, "x", b.Display(false))
}

func TestCursor_ListClamps(t *testing.T) {
	c := NewList([]string{"a", "b", "c"}, -1)
	_, ok := c.Selected()
	assert.False(t, ok)

	assert.True(t, c.HandleKey(keyOf(tea.KeyUp)))
	assert.Equal(t, 0, c.Index(), "first press selects 0")

	assert.True(t, c.HandleKey(keyOf(tea.KeyUp)))
	assert.Equal(t, 0, c.Index(), "up at 0 is a no-op")

	for i := 0; i < 5; i++ {
		c.HandleKey(keyOf(tea.KeyDown))
		assert.GreaterOrEqual(t, c.Index(), 0)
		assert.Less(t, c.Index(), 3)
	}
	assert.Equal(t, 2, c.Index(), "down at N-1 is a no-op")

	c.HandleKey(keyOf(tea.KeyPgUp))
	assert.Equal(t, 0, c.Index())
	c.HandleKey(keyOf(tea.KeyPgDown))
	v, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", v)

	assert.False(t, c.HandleKey(keyOf(tea.KeyLeft)), "list mode ignores chip keys")
}

func TestCursor_ChipKeys(t *testing.T) {
	c := NewChip([]int{2048, 4096, 6144, 8192}, 1)
	assert.False(t, c.HandleKey(keyOf(tea.KeyUp)))

	c.HandleKey(keyOf(tea.KeyRight))
	assert.Equal(t, 2, c.Index())
	c.HandleKey(keyOf(tea.KeyHome))
	assert.Equal(t, 0, c.Index())
	c.HandleKey(keyOf(tea.KeyLeft))
	assert.Equal(t, 0, c.Index())
	c.HandleKey(keyOf(tea.KeyEnd))
	assert.Equal(t, 3, c.Index())
}

func TestCursor_EmptyStillConsumes(t *testing.T) {
	c := NewList[string](nil, 0)
	assert.Equal(t, -1, c.Index())
	assert.True(t, c.HandleKey(keyOf(tea.KeyDown)))
	assert.Equal(t, -1, c.Index())
}

func TestCursor_SetOptionsClears(t *testing.T) {
	c := NewList([]string{"a"}, 0)
	c.SetOptions([]string{"x", "y"})
	assert.Equal(t, -1, c.Index())
	assert.Equal(t, 2, c.Len())
	c.Select(5)
	assert.Equal(t, -1, c.Index())
}

func TestMatching(t *testing.T) {
	items := []int{10, 11, 12, 13, 14}
	is := func(v int) func(int) bool { return func(x int) bool { return x == v } }

	prev, ok := PreviousMatching(items, is(12))
	require.True(t, ok)
	assert.Equal(t, 11, prev)
	next, _ := NextMatching(items, is(12))
	assert.Equal(t, 13, next)

	prev, _ = PreviousMatching(items, is(10))
	assert.Equal(t, 10, prev, "saturates at the start")
	next, _ = NextMatching(items, is(14))
	assert.Equal(t, 14, next, "saturates at the end")

	prev, _ = PreviousMatching(items, is(99))
	assert.Equal(t, 10, prev)
	next, _ = NextMatching(items, is(99))
	assert.Equal(t, 14, next)

	_, ok = PreviousMatching([]int{}, is(1))
	assert.False(t, ok)
	_, ok = NextMatching[int](nil, is(1))
	assert.False(t, ok)
}

type fetchRecorder struct {
	calls []SearchRequest
	total int
	fail  bool
}

func (f *fetchRecorder) fetch(req SearchRequest) (SearchPage[int], bool) {
	f.calls = append(f.calls, req)
	if f.fail {
		return SearchPage[int]{}, false
	}
	var hits []int
	for i := req.Offset(); i < min(req.Offset()+req.PageSize, f.total); i++ {
		hits = append(hits, i)
	}
	return SearchPage[int]{Hits: hits, Offset: req.Offset(), TotalHits: f.total}, true
}

func TestSearchCursor_OnlyRequeriesOnChange(t *testing.T) {
	f := &fetchRecorder{total: 25}
	s := NewSearchCursor(f.fetch, 10)

	assert.True(t, s.TrySearch([]string{`["project_type:mod"]`}, ""))
	assert.False(t, s.TrySearch([]string{`["project_type:mod"]`}, ""))
	assert.True(t, s.TrySearch([]string{`["project_type:mod"]`}, "sodium"))
	assert.True(t, s.TrySearch([]string{`["project_type:mod"]`, `["versions:1.20.1"]`}, "sodium"))
	assert.Len(t, f.calls, 3)
	assert.Equal(t, "sodium", f.calls[2].Query)
	assert.Equal(t, 3, s.Pages())
}

func TestSearchCursor_Paging(t *testing.T) {
	f := &fetchRecorder{total: 25}
	s := NewSearchCursor(f.fetch, 10)
	s.TrySearch(nil, "")

	s.HandleKey(keyOf(tea.KeyDown))
	assert.Equal(t, 0, s.Index())

	assert.True(t, s.HandleKey(keyOf(tea.KeyLeft)))
	assert.Len(t, f.calls, 1, "no previous page")

	s.HandleKey(keyOf(tea.KeyRight))
	s.HandleKey(keyOf(tea.KeyRight))
	assert.Equal(t, 2, s.Page())
	assert.Equal(t, -1, s.Index(), "paging resets the selection")
	assert.Len(t, s.Hits(), 5)
	assert.Equal(t, 20, f.calls[2].Offset())

	s.HandleKey(keyOf(tea.KeyRight))
	assert.Equal(t, 2, s.Page(), "no page past the last hit")
	assert.Len(t, f.calls, 3)

	s.HandleKey(keyOf(tea.KeyPgDown))
	hit, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 24, hit)
}

func TestSearchCursor_FailureKeepsResults(t *testing.T) {
	f := &fetchRecorder{total: 5}
	s := NewSearchCursor(f.fetch, 10)
	s.TrySearch(nil, "a")
	s.HandleKey(keyOf(tea.KeyDown))

	f.fail = true
	s.TrySearch(nil, "b")
	assert.Len(t, s.Hits(), 5)
	assert.Equal(t, 0, s.Index())
}

func TestSearchCursor_Select(t *testing.T) {
	f := &fetchRecorder{total: 5}
	s := NewSearchCursor(f.fetch, 10)
	s.TrySearch(nil, "")

	s.Select(3)
	hit, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 3, hit)

	s.Select(5)
	assert.Equal(t, -1, s.Index())
	_, ok = s.Selected()
	assert.False(t, ok)
}
