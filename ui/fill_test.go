package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestFillBackground_PadsHeight(t *testing.T) {
	out := FillBackground("a\nb", 4, 4, nil)
	assert.Equal(t, "a\nb\n\n", out)
}

func TestFillBackground_PadsWidthWithColor(t *testing.T) {
	out := FillBackground("ab", 5, 2, ColorBase)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	for _, l := range lines {
		assert.Equal(t, 5, ansi.StringWidth(l))
	}
}

func TestFillBackground_ZeroHeight(t *testing.T) {
	assert.Equal(t, "x", FillBackground("x", 10, 0, ColorBase))
}
