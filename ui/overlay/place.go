package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// PlaceOverlay draws fg over bg with its top-left corner at (x, y). Cells of
// fg falling outside the width-wide bg are clipped. Styles on both sides of
// the overlaid span are kept.
func PlaceOverlay(bg, fg string, x, y, width int) string {
	if fg == "" || x >= width {
		return bg
	}
	x = max(x, 0)
	y = max(y, 0)

	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	fgW := 0
	for _, l := range fgLines {
		fgW = max(fgW, ansi.StringWidth(l))
	}
	fgW = min(fgW, width-x)

	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		if n := ansi.StringWidth(bgLine); n < width {
			bgLine += strings.Repeat(" ", width-n)
		}
		left := ansi.Cut(bgLine, 0, x)
		right := ansi.Cut(bgLine, x+fgW, width)

		fgLine := fgLines[i]
		if n := ansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = ansi.Cut(fgLine, 0, fgW)
		}
		bgLines[y+i] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}
