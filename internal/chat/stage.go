// Package chat implements the simulated customer conversation: a
// stage machine over conversation length, heuristic classification of
// the agent's last message, template-driven response selection, and
// the session that schedules the simulated customer's replies.
package chat

import "strings"

// Stage is the discrete phase of a conversation. Stages are ordered;
// derivation from conversation length is monotonic non-decreasing.
type Stage int

const (
	StageGreeting Stage = iota
	StageProblemIdentification
	StageTroubleshooting
	StageResolution
	StageClosing
)

// String returns the stage's wire name.
func (s Stage) String() string {
	switch s {
	case StageGreeting:
		return "greeting"
	case StageProblemIdentification:
		return "problem_identification"
	case StageTroubleshooting:
		return "troubleshooting"
	case StageResolution:
		return "resolution"
	case StageClosing:
		return "closing"
	}
	return "unknown"
}

// StageForTurnCount derives the stage from the number of turns so far.
// It is recomputed from scratch on every turn rather than kept as
// mutable state, so it can never drift.
func StageForTurnCount(turns int) Stage {
	switch {
	case turns <= 2:
		return StageGreeting
	case turns <= 4:
		return StageProblemIdentification
	case turns <= 8:
		return StageTroubleshooting
	case turns <= 10:
		return StageResolution
	default:
		return StageClosing
	}
}

// Traits are the boolean heuristics over the agent's last message.
type Traits struct {
	Greeting bool
	Asking   bool
	Offering bool
	Closing  bool
}

var (
	greetingTokens = []string{"hello", "hi ", "hi,", "hi!", "hey", "good morning", "good afternoon", "good evening", "welcome", "thank"}
	questionWords  = []string{"what", "when", "where", "which", "who", "why", "how", "can", "could", "would", "will", "do", "does", "did", "is", "are", "may"}
	offerPhrases   = []string{"i can ", "i'll ", "i will ", "let me ", "allow me "}
	closingPhrases = []string{"resolved", "anything else", "is there anything", "have a great", "have a good", "glad i could", "you're welcome", "happy to have helped"}
)

// Classify derives the message traits from the agent's last message.
func Classify(message string) Traits {
	m := strings.ToLower(strings.TrimSpace(message))
	if m == "" {
		return Traits{}
	}

	var t Traits
	for _, tok := range greetingTokens {
		if strings.HasPrefix(m, tok) {
			t.Greeting = true
			break
		}
	}
	if strings.Contains(m, "?") {
		t.Asking = true
	} else {
		first := m
		if i := strings.IndexAny(m, " \t"); i > 0 {
			first = m[:i]
		}
		for _, w := range questionWords {
			if first == w {
				t.Asking = true
				break
			}
		}
	}
	if strings.Contains(m, "help you") {
		t.Offering = true
	} else {
		for _, p := range offerPhrases {
			if strings.HasPrefix(m, p) {
				t.Offering = true
				break
			}
		}
	}
	for _, p := range closingPhrases {
		if strings.Contains(m, p) {
			t.Closing = true
			break
		}
	}
	return t
}
