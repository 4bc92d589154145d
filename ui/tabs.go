package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}

var (
	inactiveTabBorder = tabBorderWithBottom("┴", "─", "┴")
	activeTabBorder   = tabBorderWithBottom("┘", " ", "└")
	inactiveTabStyle  = lipgloss.NewStyle().
				Border(inactiveTabBorder, true).
				BorderForeground(ColorIris).
				AlignHorizontal(lipgloss.Center)
	activeTabStyle = inactiveTabStyle.
			Border(activeTabBorder, true).
			AlignHorizontal(lipgloss.Center)
	windowBorder = lipgloss.RoundedBorder()
	windowStyle  = lipgloss.NewStyle().
			BorderForeground(ColorIris).
			Border(windowBorder, false, true, true, true)
)

// TabBar is a row of tabs sitting on top of a bordered window. The tabs
// take up three rows of height including their borders.
type TabBar struct {
	tabs      []string
	activeTab int
	width     int
	height    int
	focused   bool
}

func NewTabBar(tabs ...string) *TabBar {
	return &TabBar{tabs: tabs, focused: true}
}

func (w *TabBar) SetSize(width, height int) {
	w.width = width
	w.height = height
}

// SetFocused dims the border when another block owns the keyboard.
func (w *TabBar) SetFocused(focused bool) {
	w.focused = focused
}

// ContentSize is the area left for the active tab's content.
func (w *TabBar) ContentSize() (width, height int) {
	tabHeight := activeTabStyle.GetVerticalFrameSize() + 1
	return max(w.width-windowStyle.GetHorizontalFrameSize(), 0),
		max(w.height-tabHeight-windowStyle.GetVerticalFrameSize(), 0)
}

func (w *TabBar) Next() {
	w.activeTab = (w.activeTab + 1) % len(w.tabs)
}

func (w *TabBar) Prev() {
	w.activeTab = (w.activeTab - 1 + len(w.tabs)) % len(w.tabs)
}

// SetActiveTab sets the active tab by index.
func (w *TabBar) SetActiveTab(tab int) {
	if tab >= 0 && tab < len(w.tabs) {
		w.activeTab = tab
	}
}

func (w *TabBar) ActiveTab() int {
	return w.activeTab
}

func (w *TabBar) ActiveName() string {
	if len(w.tabs) == 0 {
		return ""
	}
	return w.tabs[w.activeTab]
}

// HandleClick switches to the tab under a mouse press. It reports whether a
// tab was hit. Only works after the rendered view went through zone.Scan.
func (w *TabBar) HandleClick(msg tea.MouseMsg) bool {
	if !LeftPress(msg) {
		return false
	}
	for i := range w.tabs {
		if InZone(msg, TabZoneID(i)) {
			w.activeTab = i
			return true
		}
	}
	return false
}

// String renders the tab row and a window holding content.
func (w *TabBar) String(content string) string {
	if w.width == 0 || w.height == 0 || len(w.tabs) == 0 {
		return ""
	}

	tabWidth := w.width / len(w.tabs)
	lastTabWidth := w.width - tabWidth*(len(w.tabs)-1)
	borderColor := BorderColor(w.focused)

	renderedTabs := make([]string, 0, len(w.tabs))
	for i, t := range w.tabs {
		width := tabWidth
		if i == len(w.tabs)-1 {
			width = lastTabWidth
		}

		var style lipgloss.Style
		isFirst, isLast, isActive := i == 0, i == len(w.tabs)-1, i == w.activeTab
		if isActive {
			style = activeTabStyle
		} else {
			style = inactiveTabStyle
		}
		style = style.BorderForeground(borderColor)
		border, _, _, _, _ := style.GetBorder()
		if isFirst && isActive {
			border.BottomLeft = "│"
		} else if isFirst {
			border.BottomLeft = "├"
		} else if isLast && isActive {
			border.BottomRight = "│"
		} else if isLast {
			border.BottomRight = "┤"
		}
		style = style.Border(border)
		style = style.Width(width - style.GetHorizontalFrameSize())
		label := t
		if isActive {
			label = GradientText(t, GradientStart, GradientEnd)
		}
		renderedTabs = append(renderedTabs, zone.Mark(TabZoneID(i), style.Render(label)))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
	ws := windowStyle.BorderForeground(borderColor)
	innerWidth, innerHeight := w.ContentSize()
	window := ws.Render(lipgloss.Place(innerWidth, innerHeight, lipgloss.Left, lipgloss.Top, content))

	return lipgloss.JoinVertical(lipgloss.Left, row, window)
}
