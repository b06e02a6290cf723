package ui

import (
	"agentdesk/internal/layout"
)

// Panel sizing constants.
const (
	CollapsedStripWidth  = 3
	MinimumTerminalWidth = 80

	HeaderHeight    = 1
	StatusBarHeight = 1
	PanelChromeV    = 2
)

// PanelWidths converts the percentage allocation for the current
// layout state into absolute column widths for a terminal of the
// given width. Collapsed columns get a fixed strip; the rest share
// the remainder in proportion to their allocation, with rounding
// leftovers going to the later columns in order.
func PanelWidths(total int, st layout.State) map[layout.ColumnID]int {
	widths := make(map[layout.ColumnID]int, len(layout.Columns))

	var visible []layout.ColumnID
	avail := total
	for _, id := range layout.Columns {
		if st[id] == layout.StateCollapsed {
			widths[id] = CollapsedStripWidth
			avail -= CollapsedStripWidth
			continue
		}
		visible = append(visible, id)
	}
	if len(visible) == 0 || avail <= 0 {
		return widths
	}

	alloc := layout.Allocate(visible)
	assigned := 0
	for i, id := range visible {
		w := avail * alloc[id] / 100
		if i == len(visible)-1 {
			w = avail - assigned
		}
		widths[id] = w
		assigned += w
	}
	return widths
}

// PanelHeight returns the panel body height for a terminal height.
func PanelHeight(terminalHeight int) int {
	h := terminalHeight - HeaderHeight - StatusBarHeight - PanelChromeV
	if h < 3 {
		h = 3
	}
	return h
}
