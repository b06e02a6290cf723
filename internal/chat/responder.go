package chat

import (
	"time"

	"go.uber.org/zap"
)

// Category is the selected customer-response category.
type Category string

const (
	CategoryGreeting         Category = "greeting"
	CategoryClarification    Category = "clarification"
	CategorySolutionPositive Category = "solution_positive"
	CategorySolutionNegative Category = "solution_negative"
)

// Customer personalities. The fallback corpus covers all five.
const (
	PersonalityPolite     = "polite"
	PersonalityImpatient  = "impatient"
	PersonalityFrustrated = "frustrated"
	PersonalityConfused   = "confused"
	PersonalityNeutral    = "neutral"
)

const (
	detailsShortCircuitProb = 0.7
	solutionPositiveProb    = 0.75
	detailsAppendProb       = 0.3
)

// fallbackDelays answers delay lookups before the remote config has
// loaded.
var fallbackDelays = map[string]DelayProfile{
	PersonalityPolite:     {Base: 2000, Variation: 1500},
	PersonalityImpatient:  {Base: 600, Variation: 500},
	PersonalityFrustrated: {Base: 1200, Variation: 1000},
	PersonalityConfused:   {Base: 2500, Variation: 2000},
	PersonalityNeutral:    {Base: 1500, Variation: 1000},
}

// Responder turns the conversation state into the simulated customer's
// next message. Every decision here is synchronous: the template
// source always has a usable corpus, so nothing in the decision path
// ever waits on a load.
type Responder struct {
	templates *TemplateSource
	rng       Rand
	logger    *zap.Logger
	now       func() time.Time
}

// NewResponder wires the responder. rng must not be nil; pass
// NewRand(time.Now().UnixNano()) outside of tests.
func NewResponder(templates *TemplateSource, rng Rand, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		templates: templates,
		rng:       rng,
		logger:    logger,
		now:       time.Now,
	}
}

// Respond derives the customer's reply to the agent's last message.
// turnCount is the number of turns already in the conversation.
func (r *Responder) Respond(turnCount int, lastAgentMessage, personality, issueCategory string) string {
	cfg := r.templates.Config()
	stage := StageForTurnCount(turnCount)
	traits := Classify(lastAgentMessage)

	category := CategoryClarification
	switch {
	case stage == StageGreeting || traits.Greeting:
		category = CategoryGreeting

	case traits.Asking || stage == StageProblemIdentification:
		// Most of the time an asked customer volunteers issue details
		// directly, ignoring the stage machine.
		if details := r.detailsLine(cfg, issueCategory); details != "" && r.rng.Float64() < detailsShortCircuitProb {
			return cfg.Substitute(details, r.rng, r.now())
		}
		category = CategoryClarification

	case stage == StageResolution || traits.Offering:
		// The customer accepts or rejects the proposed fix.
		if r.rng.Float64() < solutionPositiveProb {
			category = CategorySolutionPositive
		} else {
			category = CategorySolutionNegative
		}

	case stage == StageClosing || traits.Closing:
		return r.closingLine(cfg)
	}

	text := cfg.Substitute(r.candidate(cfg, personality, category), r.rng, r.now())
	if r.rng.Float64() < detailsAppendProb {
		// After rejecting a fix the customer pushes their own ask;
		// everywhere else the follow-up restates the issue.
		follow := r.detailsLine(cfg, issueCategory)
		if category == CategorySolutionNegative {
			follow = r.resolutionRequestLine(cfg, issueCategory)
		}
		if follow != "" {
			text = text + " " + cfg.Substitute(follow, r.rng, r.now())
		}
	}
	return text
}

// candidate picks a response uniformly from the personality's pool for
// the category, falling back to the neutral personality for unknown
// ones.
func (r *Responder) candidate(cfg *TemplateConfig, personality string, category Category) string {
	pool := cfg.Personalities[personality][string(category)]
	if len(pool) == 0 {
		pool = cfg.Personalities[PersonalityNeutral][string(category)]
	}
	if len(pool) == 0 {
		r.logger.Warn("no response candidates",
			zap.String("personality", personality),
			zap.String("category", string(category)))
		return "Could you tell me a bit more about that?"
	}
	return pool[r.rng.Intn(len(pool))]
}

func (r *Responder) detailsLine(cfg *TemplateConfig, issueCategory string) string {
	pool := cfg.Issues[issueCategory].Details
	if len(pool) == 0 {
		return ""
	}
	return pool[r.rng.Intn(len(pool))]
}

func (r *Responder) resolutionRequestLine(cfg *TemplateConfig, issueCategory string) string {
	pool := cfg.Issues[issueCategory].ResolutionRequests
	if len(pool) == 0 {
		return ""
	}
	return pool[r.rng.Intn(len(pool))]
}

// closingLine draws uniformly from the flat closing pool, bypassing
// personality and category selection entirely.
func (r *Responder) closingLine(cfg *TemplateConfig) string {
	if len(cfg.ClosingPhrases) == 0 {
		return "Thanks, goodbye!"
	}
	return cfg.ClosingPhrases[r.rng.Intn(len(cfg.ClosingPhrases))]
}

// OpeningLine is the customer's first message: an issue description
// for the configured category, with variables filled in.
func (r *Responder) OpeningLine(issueCategory string) string {
	cfg := r.templates.Config()
	line := r.detailsLine(cfg, issueCategory)
	if line == "" {
		line = "Hi, I need some help with my account."
	}
	return cfg.Substitute(line, r.rng, r.now())
}

// PartingLine is the customer's final message when the conversation
// ends: a personality thank-you when one exists, otherwise a closing
// phrase.
func (r *Responder) PartingLine(personality string) string {
	cfg := r.templates.Config()
	if pool := cfg.ThankYou[personality]; len(pool) > 0 {
		return pool[r.rng.Intn(len(pool))]
	}
	return r.closingLine(cfg)
}

// Delay returns the simulated typing delay for a personality:
// base + random()*variation, from config when loaded, from the
// hardcoded table before that, and 1500 + random()*1000 ms for an
// entirely unrecognized personality.
func (r *Responder) Delay(personality string) time.Duration {
	prof, ok := r.templates.Config().Delays[personality]
	if !ok {
		prof, ok = fallbackDelays[personality]
	}
	if !ok {
		prof = DelayProfile{Base: 1500, Variation: 1000}
	}
	ms := float64(prof.Base) + r.rng.Float64()*float64(prof.Variation)
	return time.Duration(ms * float64(time.Millisecond))
}

// ShouldEnd decides whether the customer ends the conversation. It is
// re-evaluated on every new agent message; a conversation that does
// not end on one check may end on the next.
func (r *Responder) ShouldEnd(turnCount int, personality string) bool {
	switch {
	case turnCount < 6:
		return false
	case personality == PersonalityImpatient && turnCount > 8:
		return r.rng.Float64() < 0.4
	case turnCount > 15:
		return r.rng.Float64() < 0.6
	case turnCount > 10:
		return r.rng.Float64() < 0.3
	default:
		return false
	}
}
