package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agentdesk/internal/layout"
)

func TestPanelWidths(t *testing.T) {
	t.Run("all normal widths fill the terminal", func(t *testing.T) {
		widths := PanelWidths(120, layout.DefaultState())
		total := 0
		for _, id := range layout.Columns {
			assert.Greater(t, widths[id], 0, "column %s", id)
			total += widths[id]
		}
		assert.Equal(t, 120, total)
	})

	t.Run("wider share goes to the larger allocation", func(t *testing.T) {
		widths := PanelWidths(200, layout.DefaultState())
		assert.Greater(t, widths[layout.ColumnEmbedded], widths[layout.ColumnCustomer])
		assert.Greater(t, widths[layout.ColumnCustomer], widths[layout.ColumnKMS])
	})

	t.Run("collapsed columns take a fixed strip", func(t *testing.T) {
		st := layout.DefaultState()
		st[layout.ColumnEmbedded] = layout.StateCollapsed
		widths := PanelWidths(120, st)
		assert.Equal(t, CollapsedStripWidth, widths[layout.ColumnEmbedded])

		total := 0
		for _, id := range layout.Columns {
			total += widths[id]
		}
		assert.Equal(t, 120, total)
	})

	t.Run("maximized column takes everything but the strips", func(t *testing.T) {
		st := layout.State{
			layout.ColumnCustomer:     layout.StateMaximized,
			layout.ColumnEmbedded:     layout.StateCollapsed,
			layout.ColumnSpaceCopilot: layout.StateCollapsed,
			layout.ColumnKMS:          layout.StateCollapsed,
		}
		widths := PanelWidths(120, st)
		assert.Equal(t, 120-3*CollapsedStripWidth, widths[layout.ColumnCustomer])
	})

	t.Run("remainder lands on later columns", func(t *testing.T) {
		widths := PanelWidths(103, layout.DefaultState())
		total := 0
		for _, id := range layout.Columns {
			total += widths[id]
		}
		assert.Equal(t, 103, total)
	})
}

func TestPanelHeight(t *testing.T) {
	assert.Equal(t, 24-HeaderHeight-StatusBarHeight-PanelChromeV, PanelHeight(24))
	assert.Equal(t, 3, PanelHeight(5))
}
