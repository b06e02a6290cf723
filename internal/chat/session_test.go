package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastResponder loads a corpus whose delays are near-zero so session
// tests do not wait on realistic typing delays.
func fastResponder(t *testing.T, rng Rand, baseMs int) *Responder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"personalities": {"neutral": {"clarification": ["Sure."], "greeting": ["Hello."]}},
			"closing_phrases": ["Bye."],
			"thank_you": {"impatient": ["Thanks. Bye."]},
			"delays": {
				"neutral": {"base": ` + strconv.Itoa(baseMs) + `, "variation": 0},
				"impatient": {"base": ` + strconv.Itoa(baseMs) + `, "variation": 0}
			}
		}`))
	}))
	t.Cleanup(srv.Close)

	src := NewTemplateSource(srv.URL, nil)
	src.Load(context.Background())
	require.NotEmpty(t, src.Config().Delays)
	return NewResponder(src, rng, nil)
}

func TestSessionReply(t *testing.T) {
	replies := make(chan Turn, 4)
	r := fastResponder(t, NewRand(7), 1)
	s := NewSession(r, PersonalityNeutral, "technical", nil, OnReply(func(turn Turn) { replies <- turn }))
	defer s.Close()

	s.AddCustomerOpening("Hi, my app keeps crashing.")
	s.AddAgentMessage("Hello! Let me take a look.")

	select {
	case turn := <-replies:
		assert.Equal(t, RoleCustomer, turn.Role)
		assert.NotEmpty(t, turn.Body)
		assert.NotEmpty(t, turn.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no customer reply")
	}

	assert.False(t, s.Typing())
	turns := s.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, RoleCustomer, turns[0].Role)
	assert.Equal(t, RoleAgent, turns[1].Role)
	assert.Equal(t, RoleCustomer, turns[2].Role)
}

func TestSessionTypingIndicator(t *testing.T) {
	typing := make(chan bool, 4)
	r := fastResponder(t, NewRand(7), 30)
	s := NewSession(r, PersonalityNeutral, "technical", nil, OnTyping(func(v bool) { typing <- v }))
	defer s.Close()

	s.AddAgentMessage("Checking now.")

	select {
	case v := <-typing:
		assert.True(t, v, "typing should turn on when a reply is pending")
	case <-time.After(time.Second):
		t.Fatal("typing indicator never appeared")
	}
	select {
	case v := <-typing:
		assert.False(t, v, "typing should turn off when the reply lands")
	case <-time.After(2 * time.Second):
		t.Fatal("typing indicator never cleared")
	}
}

func TestSessionCancelPendingReply(t *testing.T) {
	replies := make(chan Turn, 4)
	r := fastResponder(t, NewRand(7), 60)
	s := NewSession(r, PersonalityNeutral, "technical", nil, OnReply(func(turn Turn) { replies <- turn }))
	defer s.Close()

	s.AddAgentMessage("One moment.")
	require.True(t, s.Typing())
	s.CancelPendingReply()
	assert.False(t, s.Typing(), "cancel must suppress the typing indicator")

	select {
	case turn := <-replies:
		t.Fatalf("orphaned reply after cancel: %q", turn.Body)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Len(t, s.Turns(), 1)
}

func TestSessionCancelBeatsFiredTimer(t *testing.T) {
	// The timer can fire and start composing the reply before the
	// cancel lands; that delivery carries a stale generation and must
	// drop its reply instead of appending it.
	replies := make(chan Turn, 4)
	r := fastResponder(t, NewRand(7), 60_000)
	s := NewSession(r, PersonalityNeutral, "technical", nil, OnReply(func(turn Turn) { replies <- turn }))
	defer s.Close()

	s.AddAgentMessage("One moment.")
	s.mu.Lock()
	gen := s.replyGen
	s.mu.Unlock()

	s.CancelPendingReply()
	s.deliverReply(gen, 1, "One moment.", false)

	select {
	case turn := <-replies:
		t.Fatalf("orphaned reply after cancel: %q", turn.Body)
	default:
	}
	assert.Len(t, s.Turns(), 1)
	assert.False(t, s.Typing())
}

func TestSessionSingleInFlightTimer(t *testing.T) {
	replies := make(chan Turn, 4)
	r := fastResponder(t, NewRand(7), 60)
	s := NewSession(r, PersonalityNeutral, "technical", nil, OnReply(func(turn Turn) { replies <- turn }))
	defer s.Close()

	// The second message supersedes the first message's reply timer.
	s.AddAgentMessage("Are you there?")
	s.AddAgentMessage("Could you confirm your device?")

	select {
	case <-replies:
	case <-time.After(2 * time.Second):
		t.Fatal("no reply at all")
	}
	select {
	case turn := <-replies:
		t.Fatalf("superseded timer also fired: %q", turn.Body)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSessionEndsConversation(t *testing.T) {
	replies := make(chan Turn, 8)
	// Float64 always 0.0: the impatient end coin fires as soon as the
	// turn count allows it.
	r := fastResponder(t, &stubRand{floats: []float64{0.0}, ints: []int{0}}, 1)
	s := NewSession(r, PersonalityImpatient, "technical", nil, OnReply(func(turn Turn) { replies <- turn }))
	defer s.Close()

	for i := 0; i < 8; i++ {
		s.AddCustomerOpening("context")
	}
	s.AddAgentMessage("Anything else?")

	select {
	case turn := <-replies:
		assert.Equal(t, "Thanks. Bye.", turn.Body)
	case <-time.After(2 * time.Second):
		t.Fatal("no parting line")
	}
	assert.True(t, s.Ended())

	// Once ended, further agent messages schedule nothing.
	s.AddAgentMessage("Hello?")
	select {
	case turn := <-replies:
		t.Fatalf("reply after conversation ended: %q", turn.Body)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestSessionReset(t *testing.T) {
	r := fastResponder(t, NewRand(7), 50)
	s := NewSession(r, PersonalityNeutral, "technical", nil)
	defer s.Close()

	s.AddCustomerOpening("Hi.")
	s.AddAgentMessage("Hello!")
	s.Reset(PersonalityPolite, "billing")

	assert.Empty(t, s.Turns())
	assert.False(t, s.Typing())
	assert.False(t, s.Ended())
	assert.Equal(t, PersonalityPolite, s.Personality())
}
