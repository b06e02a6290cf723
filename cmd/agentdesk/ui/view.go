package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"agentdesk/internal/chat"
	"agentdesk/internal/layout"
)

var panelTitles = map[layout.ColumnID]string{
	layout.ColumnCustomer:     "Customer",
	layout.ColumnEmbedded:     "Apps",
	layout.ColumnSpaceCopilot: "Copilot",
	layout.ColumnKMS:          "Knowledge",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "loading..."
	}
	if m.width < MinimumTerminalWidth {
		return errorStyle.Render(fmt.Sprintf("terminal too narrow (%d cols, need %d)", m.width, MinimumTerminalWidth))
	}

	widths := PanelWidths(m.width, m.state)
	bodyHeight := PanelHeight(m.height)

	panels := make([]string, 0, len(layout.Columns))
	for _, id := range layout.Columns {
		panels = append(panels, m.renderPanel(id, widths[id], bodyHeight))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderHeader() string {
	title := panelTitleStyle.Render("agentdesk")
	role := helpStyle.Render("role: " + m.deps.Layout.Role())
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", role)
}

func (m Model) renderStatusBar() string {
	hints := "tab: focus • ctrl+b: collapse • ctrl+f: maximize • ctrl+r: reset • ctrl+c: quit"
	return statusBarStyle.Width(m.width).Render(helpStyle.Render(hints))
}

func (m Model) renderPanel(id layout.ColumnID, width, height int) string {
	if m.state[id] == layout.StateCollapsed {
		return m.renderCollapsed(id, height)
	}

	style := panelStyle
	if id == m.focus {
		style = focusedPanelStyle
	}
	inner := width - 2
	if inner < 1 {
		inner = 1
	}

	var body string
	switch id {
	case layout.ColumnCustomer:
		body = m.renderChat(inner, height-1)
	case layout.ColumnEmbedded:
		body = m.renderApps(inner)
	case layout.ColumnSpaceCopilot:
		body = m.renderCopilot(inner)
	case layout.ColumnKMS:
		body = m.renderSearch(inner, height-1)
	}

	content := panelTitleStyle.Render(panelTitles[id]) + "\n" + body
	return style.Width(inner).Height(height).Render(content)
}

// renderCollapsed draws a column as a vertical strip showing just the
// first letter of its title.
func (m Model) renderCollapsed(id layout.ColumnID, height int) string {
	letter := string([]rune(panelTitles[id])[0])
	return collapsedStripStyle.Width(1).Height(height).Render(letter)
}

func (m Model) renderChat(width, height int) string {
	var lines []string
	for _, t := range m.turns {
		style := customerMsgStyle
		prefix := "customer"
		if t.Role == chat.RoleAgent {
			style = agentMsgStyle
			prefix = "agent"
		}
		lines = append(lines, style.Render(prefix+": ")+truncate(t.Body, width))
	}
	if m.typing {
		lines = append(lines, typingStyle.Render("customer is typing..."))
	}
	if m.deps.Session != nil && m.deps.Session.Ended() {
		lines = append(lines, helpStyle.Render("conversation ended"))
	}

	// Keep the most recent turns plus the input line in view.
	max := height - 2
	if max > 0 && len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	return strings.Join(lines, "\n") + "\n" + m.chatInput.View()
}

func (m Model) renderApps(width int) string {
	if len(m.apps) == 0 {
		return helpStyle.Render("no embedded apps available")
	}
	var lines []string
	for _, app := range m.apps {
		lines = append(lines, resultTitleStyle.Render(truncate(app.Title, width))+
			"\n"+resultMetaStyle.Render("  "+truncate(app.Snippet, width-2)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCopilot(width int) string {
	if len(m.intents) == 0 {
		return helpStyle.Render("loading intents...")
	}
	var lines []string
	for _, in := range m.intents {
		lines = append(lines, "• "+truncate(in.Title, width-2))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSearch(width, height int) string {
	var b strings.Builder
	b.WriteString(m.searchInput.View())
	b.WriteString("\n")

	switch {
	case m.search.Err != "":
		b.WriteString(errorStyle.Render(m.search.Err))
	case m.search.Loading:
		b.WriteString(helpStyle.Render("searching..."))
	case m.search.Query == "":
		b.WriteString(helpStyle.Render("type to search"))
	case len(m.search.Results) == 0:
		b.WriteString(helpStyle.Render("no results for \"" + m.search.Query + "\""))
	default:
		shown := 0
		for _, r := range m.search.Results {
			if shown*2 >= height-3 {
				break
			}
			b.WriteString(resultTitleStyle.Render(truncate(r.Title, width)))
			b.WriteString("\n")
			b.WriteString(resultMetaStyle.Render("  " + truncate(r.Snippet, width-2)))
			b.WriteString("\n")
			shown++
		}
		b.WriteString(resultMetaStyle.Render(fmt.Sprintf("%d of %d results", len(m.search.Results), m.search.Total)))
	}
	return b.String()
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
