package ui

import "strings"

// AppTitle is the plain header title.
const AppTitle = "Craftdeck"

// Block-art glyphs, each 6 rows tall. Rows of one glyph share a width.
var bannerGlyphs = map[rune][6]string{
	'C': {
		" ██████╗",
		"██╔════╝",
		"██║     ",
		"██║     ",
		"╚██████╗",
		" ╚═════╝",
	},
	'R': {
		"██████╗ ",
		"██╔══██╗",
		"██████╔╝",
		"██╔══██╗",
		"██║  ██║",
		"╚═╝  ╚═╝",
	},
	'A': {
		" █████╗ ",
		"██╔══██╗",
		"███████║",
		"██╔══██║",
		"██║  ██║",
		"╚═╝  ╚═╝",
	},
	'F': {
		"███████╗",
		"██╔════╝",
		"█████╗  ",
		"██╔══╝  ",
		"██║     ",
		"╚═╝     ",
	},
	'T': {
		"████████╗",
		"╚══██╔══╝",
		"   ██║   ",
		"   ██║   ",
		"   ██║   ",
		"   ╚═╝   ",
	},
	'D': {
		"██████╗ ",
		"██╔══██╗",
		"██║  ██║",
		"██║  ██║",
		"██████╔╝",
		"╚═════╝ ",
	},
	'E': {
		"███████╗",
		"██╔════╝",
		"█████╗  ",
		"██╔══╝  ",
		"███████╗",
		"╚══════╝",
	},
	'K': {
		"██╗  ██╗",
		"██║ ██╔╝",
		"█████╔╝ ",
		"██╔═██╗ ",
		"██║  ██╗",
		"╚═╝  ╚═╝",
	},
}

// period: small block sitting at the bottom.
var blockPeriod = [6]string{
	"   ",
	"   ",
	"   ",
	"   ",
	"██╗",
	"╚═╝",
}

func composeBanner(word string, suffix ...[6]string) []string {
	lines := make([]string, 6)
	first := true
	add := func(g [6]string) {
		for row := range lines {
			if !first {
				lines[row] += " "
			}
			lines[row] += g[row]
		}
		first = false
	}
	for _, r := range word {
		if g, ok := bannerGlyphs[r]; ok {
			add(g)
		}
	}
	for _, g := range suffix {
		add(g)
	}
	return lines
}

// bannerFrames are precomputed gradient-rendered banner strings.
// Animation: base → . → .. → ... (loop)
var bannerFrames = func() []string {
	suffixes := [][][6]string{
		{},
		{blockPeriod},
		{blockPeriod, blockPeriod},
		{blockPeriod, blockPeriod, blockPeriod},
	}
	// pad every frame to the widest so the banner doesn't jitter
	raw := make([][]string, len(suffixes))
	width := 0
	for i, s := range suffixes {
		raw[i] = composeBanner("CRAFTDECK", s...)
		width = max(width, len([]rune(raw[i][0])))
	}
	frames := make([]string, len(raw))
	for i, lines := range raw {
		for row, l := range lines {
			lines[row] = l + strings.Repeat(" ", width-len([]rune(l)))
		}
		frames[i] = GradientText(strings.Join(lines, "\n"), GradientStart, GradientEnd)
	}
	return frames
}()

// BannerWidth is the column count of every banner frame.
var BannerWidth = len([]rune(composeBanner("CRAFTDECK", blockPeriod, blockPeriod, blockPeriod)[0]))

// BannerLines returns the pre-rendered gradient banner as individual lines
// for the given animation frame. Always returns exactly 6 lines.
func BannerLines(frame int) []string {
	banner := bannerFrames[frame%len(bannerFrames)]
	return strings.Split(banner, "\n")
}

// Banner renders the banner when it fits in width, and the gradient title
// otherwise.
func Banner(frame, width int) string {
	if width < BannerWidth {
		return GradientText(AppTitle, GradientStart, GradientEnd)
	}
	return strings.Join(BannerLines(frame), "\n")
}
