package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTerminalBackground(t *testing.T) {
	var buf bytes.Buffer
	restore := setTermBg(&buf, string(ColorBase))
	assert.Contains(t, buf.String(), "]11;#232136")

	buf.Reset()
	restore()
	assert.Equal(t, "\x1b]111\a", buf.String())
}

func TestSetTerminalBackground_EmptyColor(t *testing.T) {
	var buf bytes.Buffer
	restore := setTermBg(&buf, "")
	assert.Zero(t, buf.Len())
	restore()
	assert.Zero(t, buf.Len())
}
