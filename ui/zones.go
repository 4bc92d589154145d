package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Zone IDs for bubblezone hit detection. These are used both in render paths
// (zone.Mark) and input paths (zone.Get().InBounds).
const (
	ZoneSearchBar = "zone-search-bar"
	ZoneDetails   = "zone-details"
)

// TabZoneID returns the zone ID for a tab by its index.
func TabZoneID(idx int) string {
	return fmt.Sprintf("zone-tab-%d", idx)
}

// RowZoneID returns the zone ID for a list row by its index.
func RowZoneID(idx int) string {
	return fmt.Sprintf("zone-row-%d", idx)
}

// LeftPress reports whether msg is a left button press.
func LeftPress(msg tea.MouseMsg) bool {
	return msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft
}

// Wheel reports whether msg scrolls the wheel, and which way.
func Wheel(msg tea.MouseMsg) (up, ok bool) {
	if msg.Action != tea.MouseActionPress {
		return false, false
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return true, true
	case tea.MouseButtonWheelDown:
		return false, true
	}
	return false, false
}

// InZone reports whether msg landed inside the zone id. Zones are only known
// once the rendered view went through zone.Scan.
func InZone(msg tea.MouseMsg, id string) bool {
	return zone.Get(id).InBounds(msg)
}

// ClickedRow returns which of the rows [start, end) a left press hit.
func ClickedRow(msg tea.MouseMsg, start, end int) (int, bool) {
	if !LeftPress(msg) {
		return -1, false
	}
	for i := start; i < end; i++ {
		if InZone(msg, RowZoneID(i)) {
			return i, true
		}
	}
	return -1, false
}
