package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role tags a conversation turn.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

// Turn is one message in the conversation.
type Turn struct {
	ID   string
	Role Role
	Body string
	At   time.Time
}

// Session owns one conversation with a simulated customer: the
// append-only turn sequence and the single in-flight reply timer.
// Replies are delivered on the timer goroutine via the OnReply
// callback; OnTyping reports the typing indicator.
type Session struct {
	mu sync.Mutex

	responder     *Responder
	personality   string
	issueCategory string
	logger        *zap.Logger

	turns  []Turn
	timer  *time.Timer
	typing bool
	ended  bool

	// replyGen invalidates in-flight reply deliveries: a timer callback
	// that already fired when its reply was cancelled carries a stale
	// generation and must not touch the conversation.
	replyGen int

	onReply  func(Turn)
	onTyping func(bool)
	now      func() time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// OnReply registers the customer-reply callback.
func OnReply(fn func(Turn)) SessionOption {
	return func(s *Session) { s.onReply = fn }
}

// OnTyping registers the typing-indicator callback.
func OnTyping(fn func(bool)) SessionOption {
	return func(s *Session) { s.onTyping = fn }
}

// NewSession starts a conversation with a customer of the given
// personality and issue category.
func NewSession(responder *Responder, personality, issueCategory string, logger *zap.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		responder:     responder,
		personality:   personality,
		issueCategory: issueCategory,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Personality returns the simulated customer's personality.
func (s *Session) Personality() string { return s.personality }

// Turns returns a copy of the conversation so far.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Typing reports whether a customer reply is pending.
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// Ended reports whether the customer has left the conversation.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// AddCustomerOpening seeds the conversation with the customer's first
// message so the agent has something to respond to.
func (s *Session) AddCustomerOpening(body string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(RoleCustomer, body)
}

// AddAgentMessage appends the agent's message and schedules the
// simulated customer's reply after the personality's typing delay.
// Scheduling cancels any previously pending reply, so at most one
// reply timer is live at a time. The end-of-conversation decision is
// re-evaluated here, on every agent message.
func (s *Session) AddAgentMessage(body string) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := s.appendLocked(RoleAgent, body)
	if s.ended {
		return turn
	}

	s.cancelTimerLocked()
	ending := s.responder.ShouldEnd(len(s.turns), s.personality)
	turnCount := len(s.turns)
	delay := s.responder.Delay(s.personality)
	gen := s.replyGen

	s.setTypingLocked(true)
	s.timer = time.AfterFunc(delay, func() {
		s.deliverReply(gen, turnCount, body, ending)
	})
	return turn
}

func (s *Session) deliverReply(gen, turnCount int, agentMessage string, ending bool) {
	var reply string
	if ending {
		reply = s.responder.PartingLine(s.personality)
	} else {
		reply = s.responder.Respond(turnCount, agentMessage, s.personality, s.issueCategory)
	}

	s.mu.Lock()
	if s.ended || gen != s.replyGen {
		// Cancelled while the reply was being composed.
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.setTypingLocked(false)
	turn := s.appendLocked(RoleCustomer, reply)
	if ending {
		s.ended = true
		s.logger.Info("customer ended conversation", zap.Int("turns", len(s.turns)))
	}
	onReply := s.onReply
	s.mu.Unlock()

	if onReply != nil {
		onReply(turn)
	}
}

// CancelPendingReply stops the in-flight reply timer, if any, and
// suppresses the typing indicator. Used when the agent navigates away
// so no orphaned reply arrives after the fact.
func (s *Session) CancelPendingReply() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
}

// Reset clears the conversation for a newly selected customer. Any
// pending reply is cancelled first.
func (s *Session) Reset(personality, issueCategory string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	s.personality = personality
	s.issueCategory = issueCategory
	s.turns = nil
	s.ended = false
}

// Close ends the session and cancels any pending reply.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	s.ended = true
}

func (s *Session) cancelTimerLocked() {
	s.replyGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.setTypingLocked(false)
}

func (s *Session) setTypingLocked(v bool) {
	if s.typing == v {
		return
	}
	s.typing = v
	if s.onTyping != nil {
		// Callbacks run inline; keep them short.
		s.onTyping(v)
	}
}

func (s *Session) appendLocked(role Role, body string) Turn {
	turn := Turn{
		ID:   uuid.NewString(),
		Role: role,
		Body: body,
		At:   s.now(),
	}
	s.turns = append(s.turns, turn)
	return turn
}
