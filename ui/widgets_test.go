package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_ExactSize(t *testing.T) {
	out := ansi.Strip(Block("Instances", "one\ntwo\nthree\nfour", 20, 4, true))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	for _, l := range lines {
		assert.Equal(t, 20, ansi.StringWidth(l))
	}
	assert.True(t, strings.HasPrefix(lines[0], "╭─ Instances ─"))
	assert.True(t, strings.HasSuffix(lines[0], "╮"))
	assert.Contains(t, lines[1], "one")
	assert.Contains(t, lines[2], "two")
	assert.NotContains(t, out, "three", "body is clipped to the inner height")
}

func TestBlock_ClipsWideLines(t *testing.T) {
	out := ansi.Strip(Block("", strings.Repeat("x", 50), 12, 3, false))
	for _, l := range strings.Split(out, "\n") {
		assert.Equal(t, 12, ansi.StringWidth(l))
	}
}

func TestBlock_TooSmall(t *testing.T) {
	assert.Empty(t, Block("t", "b", 3, 3, false))
}

func TestChips(t *testing.T) {
	out := ansi.Strip(Chips([]string{"2 GB", "4 GB"}, 1, true))
	assert.Equal(t, " 2 GB   4 GB ", out)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestRow_PadsToWidth(t *testing.T) {
	assert.Equal(t, "abc   ", ansi.Strip(Row("abc", 6, false)))
	assert.Equal(t, "abcde…", ansi.Strip(Row("abcdefghij", 6, true)))
}

func TestTable(t *testing.T) {
	out := ansi.Strip(Table(
		[]Column{{Title: "Name"}, {Title: "Size", Width: 6}},
		[][]string{{"sodium", "1.2 MB"}, {"a-very-long-mod-name", "12 kB"}},
		20, 1,
	))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name          Size  ", lines[0])
	assert.Equal(t, "sodium        1.2 MB", lines[1])
	assert.Equal(t, "a-very-long-… 12 kB ", lines[2])
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Sodium\n\nA **fast** renderer.", 40)
	require.NoError(t, err)
	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Sodium")
	assert.Contains(t, plain, "fast")
}
