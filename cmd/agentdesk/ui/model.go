package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"agentdesk/internal/chat"
	"agentdesk/internal/intent"
	"agentdesk/internal/layout"
	"agentdesk/internal/search"
)

// Deps are the wired subsystems the console renders.
type Deps struct {
	Layout     *layout.Store
	Session    *chat.Session
	Search     *search.Pipeline
	Apps       *search.AppClient
	AppContext search.AppContext
	Intents    *intent.Cache
	Logger     *zap.Logger
}

// Messages delivered from outside the update loop.
type (
	// LayoutMsg carries a layout broadcast.
	LayoutMsg layout.Change
	// SearchMsg carries a search pipeline snapshot.
	SearchMsg search.State
	// ReplyMsg carries a simulated customer turn.
	ReplyMsg chat.Turn
	// TypingMsg toggles the typing indicator.
	TypingMsg bool

	intentsMsg struct {
		intents []intent.Intent
		err     error
	}

	appsMsg struct {
		apps []search.Result
		err  error
	}
)

// Model is the root bubbletea model for the console.
type Model struct {
	deps Deps

	width  int
	height int

	state layout.State
	focus layout.ColumnID

	chatInput   textinput.Model
	searchInput textinput.Model

	turns  []chat.Turn
	typing bool

	search  search.State
	intents []intent.Intent
	apps    []search.Result

	quitting bool
}

// New builds the console model over already-wired subsystems.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	chatInput := textinput.New()
	chatInput.Placeholder = "Reply to the customer..."
	chatInput.CharLimit = 500
	chatInput.Focus()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search knowledge..."
	searchInput.CharLimit = 256

	m := Model{
		deps:        deps,
		state:       deps.Layout.State(),
		focus:       layout.ColumnCustomer,
		chatInput:   chatInput,
		searchInput: searchInput,
	}
	if deps.Session != nil {
		m.turns = deps.Session.Turns()
		m.typing = deps.Session.Typing()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadIntents(), m.loadApps())
}

func (m Model) loadIntents() tea.Cmd {
	cache := m.deps.Intents
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cfg, err := cache.Get(ctx)
		if err != nil {
			return intentsMsg{err: err}
		}
		return intentsMsg{intents: cfg.Intents}
	}
}

func (m Model) loadApps() tea.Cmd {
	client := m.deps.Apps
	if client == nil {
		return nil
	}
	ac := m.deps.AppContext
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		resp, err := client.Search(ctx, search.AppRequest{Limit: 10}, ac)
		if err != nil {
			return appsMsg{err: err}
		}
		return appsMsg{apps: resp.Results}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case LayoutMsg:
		m.state = msg.State
		if m.state[m.focus] == layout.StateCollapsed {
			m.focus = m.firstVisible()
			m.syncInputFocus()
		}
		return m, nil

	case SearchMsg:
		m.search = search.State(msg)
		return m, nil

	case ReplyMsg:
		m.turns = append(m.turns, chat.Turn(msg))
		m.typing = false
		return m, nil

	case TypingMsg:
		m.typing = bool(msg)
		return m, nil

	case intentsMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("intent config unavailable", zap.Error(msg.err))
			return m, nil
		}
		m.intents = msg.intents
		return m, nil

	case appsMsg:
		if msg.err != nil {
			m.deps.Logger.Warn("app registry unavailable", zap.Error(msg.err))
			return m, nil
		}
		m.apps = msg.apps
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.focus = m.nextVisible(1)
		m.syncInputFocus()
		return m, nil

	case "shift+tab":
		m.focus = m.nextVisible(-1)
		m.syncInputFocus()
		return m, nil

	case "ctrl+b":
		m.toggleCollapse()
		return m, nil

	case "ctrl+f":
		m.toggleMaximize()
		return m, nil

	case "ctrl+r":
		m.deps.Layout.ResetLayout()
		return m, nil

	case "enter":
		return m.submit()
	}

	return m.updateInputs(msg)
}

// syncInputFocus moves textinput focus to match the focused panel.
func (m *Model) syncInputFocus() {
	m.chatInput.Blur()
	m.searchInput.Blur()
	switch m.focus {
	case layout.ColumnCustomer:
		m.chatInput.Focus()
	case layout.ColumnKMS:
		m.searchInput.Focus()
	}
}

func (m *Model) toggleCollapse() {
	next := layout.StateCollapsed
	if m.state[m.focus] == layout.StateCollapsed {
		next = layout.StateNormal
	}
	m.deps.Layout.UpdateColumn(m.focus, next)
}

func (m *Model) toggleMaximize() {
	next := layout.StateMaximized
	if m.state[m.focus] == layout.StateMaximized {
		next = layout.StateNormal
	}
	m.deps.Layout.UpdateColumn(m.focus, next)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	switch m.focus {
	case layout.ColumnCustomer:
		body := m.chatInput.Value()
		if body == "" || m.deps.Session == nil || m.deps.Session.Ended() {
			return m, nil
		}
		turn := m.deps.Session.AddAgentMessage(body)
		m.turns = append(m.turns, turn)
		m.chatInput.SetValue("")
		return m, nil

	case layout.ColumnKMS:
		if m.deps.Search != nil {
			m.deps.Search.Flush()
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case layout.ColumnCustomer:
		m.chatInput, cmd = m.chatInput.Update(msg)
	case layout.ColumnKMS:
		before := m.searchInput.Value()
		m.searchInput, cmd = m.searchInput.Update(msg)
		if m.deps.Search != nil && m.searchInput.Value() != before {
			m.deps.Search.SetQuery(m.searchInput.Value())
		}
	}
	return m, cmd
}

// firstVisible returns the first non-collapsed column in order.
func (m Model) firstVisible() layout.ColumnID {
	for _, id := range layout.Columns {
		if m.state[id] != layout.StateCollapsed {
			return id
		}
	}
	return layout.ColumnCustomer
}

// nextVisible cycles focus through non-collapsed columns.
func (m Model) nextVisible(step int) layout.ColumnID {
	idx := 0
	for i, id := range layout.Columns {
		if id == m.focus {
			idx = i
			break
		}
	}
	n := len(layout.Columns)
	for i := 1; i <= n; i++ {
		next := layout.Columns[((idx+i*step)%n+n)%n]
		if m.state[next] != layout.StateCollapsed {
			return next
		}
	}
	return m.focus
}
