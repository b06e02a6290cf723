package chat

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TemplateConfig is the externally supplied response corpus. Loaded at
// most once per process and treated as immutable afterwards.
type TemplateConfig struct {
	// Personalities maps personality -> response category -> candidates.
	Personalities map[string]map[string][]string `json:"personalities"`
	// Issues maps issue category -> issue-specific fragments.
	Issues map[string]IssueTemplates `json:"issues"`
	// ClosingPhrases is the flat pool used when the conversation closes.
	ClosingPhrases []string `json:"closing_phrases"`
	// ThankYou maps personality -> parting thank-you lines.
	ThankYou map[string][]string `json:"thank_you"`
	// Delays maps personality -> response delay parameters.
	Delays map[string]DelayProfile `json:"delays"`
	// Variables maps categorical placeholder name -> candidate values.
	Variables map[string][]string `json:"variables"`
}

// IssueTemplates holds the issue-category specific lines.
type IssueTemplates struct {
	Details            []string `json:"details"`
	ResolutionRequests []string `json:"resolution_requests"`
}

// DelayProfile parameterizes the simulated typing delay in
// milliseconds: base + random()*variation.
type DelayProfile struct {
	Base      int `json:"base"`
	Variation int `json:"variation"`
}

//go:embed templates_default.json
var fallbackTemplatesJSON []byte

// FallbackTemplatesJSON exposes the embedded default corpus; the demo
// backend serves it as the template-config document.
func FallbackTemplatesJSON() []byte {
	out := make([]byte, len(fallbackTemplatesJSON))
	copy(out, fallbackTemplatesJSON)
	return out
}

func parseFallback() *TemplateConfig {
	var cfg TemplateConfig
	if err := json.Unmarshal(fallbackTemplatesJSON, &cfg); err != nil {
		panic(fmt.Sprintf("embedded template corpus is corrupt: %v", err))
	}
	return &cfg
}

// TemplateSource loads the template config once and serves it without
// blocking. Until the load completes, or forever if it fails, the
// embedded fallback corpus answers every call.
type TemplateSource struct {
	url    string
	client *http.Client
	logger *zap.Logger
	val    atomic.Pointer[TemplateConfig]
}

// NewTemplateSource seeds the source with the embedded fallback. An
// empty URL means fallback-only (used in tests and offline demos).
func NewTemplateSource(url string, logger *zap.Logger) *TemplateSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TemplateSource{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	s.val.Store(parseFallback())
	return s
}

// Load fetches the remote corpus once. On any failure the fallback
// stays in place and the failure is never surfaced to the user.
func (s *TemplateSource) Load(ctx context.Context) {
	if s.url == "" {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		s.logger.Warn("template config request invalid", zap.Error(err))
		return
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("template config fetch failed, using fallback", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("template config fetch failed, using fallback", zap.Int("status", resp.StatusCode))
		return
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Warn("template config read failed, using fallback", zap.Error(err))
		return
	}
	var cfg TemplateConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		s.logger.Warn("template config parse failed, using fallback", zap.Error(err))
		return
	}
	s.val.Store(&cfg)
	s.logger.Info("template config loaded", zap.Int("personalities", len(cfg.Personalities)))
}

// Config returns the current corpus. Never nil, never blocks.
func (s *TemplateSource) Config() *TemplateConfig {
	return s.val.Load()
}

// Substitute replaces bracketed placeholder tokens with freshly
// generated values. Numeric, monetary and temporal placeholders get a
// new random value on every call; categorical placeholders draw
// uniformly from the configured pools.
func (c *TemplateConfig) Substitute(s string, rng Rand, now time.Time) string {
	if !strings.Contains(s, "[") {
		return s
	}
	replace := func(text, token string, gen func() string) string {
		for strings.Contains(text, token) {
			text = strings.Replace(text, token, gen(), 1)
		}
		return text
	}

	s = replace(s, "[time]", func() string {
		return fmt.Sprintf("%d:%02d %s", 1+rng.Intn(12), rng.Intn(60), []string{"AM", "PM"}[rng.Intn(2)])
	})
	s = replace(s, "[date]", func() string {
		return now.AddDate(0, 0, -rng.Intn(30)).Format("January 2")
	})
	s = replace(s, "[amount]", func() string {
		return fmt.Sprintf("$%d.%02d", 10+rng.Intn(490), rng.Intn(100))
	})
	s = replace(s, "[number]", func() string {
		return fmt.Sprintf("%d", 1+rng.Intn(9999))
	})
	s = replace(s, "[years]", func() string {
		return fmt.Sprintf("%d", 1+rng.Intn(15))
	})
	s = replace(s, "[location]", func() string { return c.pick("location", rng) })
	s = replace(s, "[merchant]", func() string { return c.pick("merchant", rng) })
	s = replace(s, "[error]", func() string { return c.pick("error", rng) })
	return s
}

func (c *TemplateConfig) pick(variable string, rng Rand) string {
	pool := c.Variables[variable]
	if len(pool) == 0 {
		return variable
	}
	return pool[rng.Intn(len(pool))]
}
