package main

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"agentdesk/cmd/agentdesk/ui"
	"agentdesk/internal/chat"
	"agentdesk/internal/config"
	"agentdesk/internal/intent"
	"agentdesk/internal/layout"
	"agentdesk/internal/search"
)

// programSender forwards subsystem events into the bubbletea program.
// Callbacks fire from timers, watcher goroutines and — via the layout
// bus — from inside the update loop itself, and tea.Program.Send
// blocks until the event loop picks the message up. Delivery therefore
// never runs on the caller: send only enqueues, and a dedicated
// goroutine forwards queued messages in order once Run has started.
type programSender struct {
	p atomic.Pointer[tea.Program]

	mu     sync.Mutex
	wake   *sync.Cond
	queue  []tea.Msg
	closed bool
}

func newProgramSender() *programSender {
	s := &programSender{}
	s.wake = sync.NewCond(&s.mu)
	go s.forward()
	return s
}

func (s *programSender) send(msg tea.Msg) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, msg)
		s.wake.Signal()
	}
	s.mu.Unlock()
}

func (s *programSender) setProgram(p *tea.Program) {
	s.p.Store(p)
	s.mu.Lock()
	s.wake.Signal()
	s.mu.Unlock()
}

func (s *programSender) close() {
	s.mu.Lock()
	s.closed = true
	s.wake.Signal()
	s.mu.Unlock()
}

func (s *programSender) forward() {
	for {
		s.mu.Lock()
		for !s.closed && (len(s.queue) == 0 || s.p.Load() == nil) {
			s.wake.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.p.Load().Send(msg)
	}
}

// runConsole wires every subsystem and runs the TUI.
func runConsole() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sender := newProgramSender()
	defer sender.close()

	// Layout: file-backed per-role state with cross-process watching.
	storage, err := layout.NewFileStorage(cfg.Storage.Dir, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	bus := layout.NewBus()
	store, err := layout.NewStore(
		cfg.Storage.Key,
		cfg.Operator.Role,
		storage,
		bus,
		layout.StaticAuthorizer(cfg.Operator.CanManageLayout),
		logger,
	)
	if err != nil {
		return err
	}
	unsubscribe := bus.Subscribe(func(ch layout.Change) {
		sender.send(ui.LayoutMsg(ch))
	})
	defer unsubscribe()
	if err := storage.Watch(store.ApplyExternal); err != nil {
		return err
	}

	// Chat: remote templates over the embedded fallback, then the
	// simulated customer session.
	templates := chat.NewTemplateSource(cfg.Endpoints.Templates, logger)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	templates.Load(loadCtx)
	cancelLoad()

	responder := chat.NewResponder(templates, chat.NewRand(time.Now().UnixNano()), logger)
	session := chat.NewSession(
		responder,
		cfg.Customer.Personality,
		cfg.Customer.IssueCategory,
		logger,
		chat.OnReply(func(t chat.Turn) { sender.send(ui.ReplyMsg(t)) }),
		chat.OnTyping(func(v bool) { sender.send(ui.TypingMsg(v)) }),
	)
	defer session.Close()
	session.AddCustomerOpening(responder.OpeningLine(cfg.Customer.IssueCategory))

	// Search: debounced knowledge pipeline plus the app registry.
	entitlement := search.Entitlement(cfg.Operator.Role, cfg.Operator.Department)
	pipeline := search.NewPipeline(
		search.NewClient(cfg.Endpoints.Search, logger),
		logger,
		search.WithEntitlement(entitlement),
		search.WithNotify(func(st search.State) { sender.send(ui.SearchMsg(st)) }),
	)
	defer pipeline.Close()

	intents := intent.NewCache(cfg.Endpoints.Intents, logger)

	logger.Info("console starting",
		zap.String("role", cfg.Operator.Role),
		zap.String("entitlement", entitlement),
		zap.String("layout_key", store.Key()))

	model := ui.New(ui.Deps{
		Layout:  store,
		Session: session,
		Search:  pipeline,
		Apps:    search.NewAppClient(cfg.Endpoints.AppSearch, logger),
		AppContext: search.AppContext{
			Role:         cfg.Operator.Role,
			CustomerTier: cfg.Operator.CustomerTier,
		},
		Intents: intents,
		Logger:  logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)
	sender.setProgram(p)

	_, err = p.Run()
	return err
}
