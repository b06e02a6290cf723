// Package ui provides the interactive console: a four-panel terminal
// layout driven by the layout store, with the customer chat, the
// embedded app surface, the copilot suggestions, and knowledge search.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Console color palette.
var (
	Background = lipgloss.Color("#141d2b")
	Foreground = lipgloss.Color("#f2f2f2")
	Primary    = lipgloss.Color("#8BC34A")
	Secondary  = lipgloss.Color("#1e2a3d")
	Muted      = lipgloss.Color("#5c6b82")
	Border     = lipgloss.Color("#2a3850")

	Destructive = lipgloss.Color("#e53935")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	focusedPanelStyle = panelStyle.
				BorderForeground(Primary)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	collapsedStripStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Border).
				Foreground(Muted)

	statusBarStyle = lipgloss.NewStyle().
			Background(Secondary).
			Foreground(Foreground).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(Muted)

	agentMsgStyle = lipgloss.NewStyle().
			Foreground(Primary)

	customerMsgStyle = lipgloss.NewStyle().
				Foreground(Foreground)

	typingStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(Destructive)

	resultTitleStyle = lipgloss.NewStyle().
				Foreground(Info)

	resultMetaStyle = lipgloss.NewStyle().
			Foreground(Muted)
)
