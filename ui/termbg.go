package ui

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// resetBackgroundSeq is OSC 111: restore the configured default background.
const resetBackgroundSeq = termenv.OSC + "111" + "\a"

// SetTerminalBackground points the terminal's default background at c so that
// cells reset by ANSI sequences keep the theme base instead of black. The
// returned func restores the terminal's own default.
func SetTerminalBackground(c string) func() {
	return setTermBg(os.Stdout, c)
}

func setTermBg(w io.Writer, hex string) func() {
	if hex == "" {
		return func() {}
	}
	out := termenv.NewOutput(w)
	out.SetBackgroundColor(termenv.RGBColor(hex))
	return func() {
		_, _ = io.WriteString(w, resetBackgroundSeq)
	}
}
