package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke
	// before a query is submitted.
	DefaultDebounce = 200 * time.Millisecond

	maxQueryLen         = 256
	maxDisplayedResults = 20
	defaultTopK         = 20

	// userFacingError is the inline message for any non-cancellation
	// failure. Details go to the log, not the operator.
	userFacingError = "Search is unavailable right now. Please try again."
)

// Searcher is the backend the pipeline queries.
type Searcher interface {
	Search(ctx context.Context, req Request, entitlement string) (*Response, error)
}

// State is the externally observable pipeline state.
type State struct {
	Query   string
	Results []Result
	Total   int
	Loading bool
	Err     string
}

// Pipeline debounces query input, keeps exactly one in-flight request,
// serves a bounded recency cache, and normalizes results. Observers
// receive state snapshots via the notify callback; callbacks fire on
// timer and request goroutines.
type Pipeline struct {
	searcher    Searcher
	logger      *zap.Logger
	entitlement string
	debounce    time.Duration
	topK        int

	mu     sync.Mutex
	cache  *queryCache
	timer  *time.Timer
	cancel context.CancelFunc
	state  State
	notify func(State)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDebounce overrides the debounce quiet period.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) { p.debounce = d }
}

// WithEntitlement sets the X-Agent-Entitlement value sent with every
// request. Derive it with Entitlement(role, department).
func WithEntitlement(value string) Option {
	return func(p *Pipeline) { p.entitlement = value }
}

// WithNotify registers the state observer.
func WithNotify(fn func(State)) Option {
	return func(p *Pipeline) { p.notify = fn }
}

// WithTopK overrides the requested result count.
func WithTopK(n int) Option {
	return func(p *Pipeline) { p.topK = n }
}

// NewPipeline creates a pipeline over the given backend.
func NewPipeline(searcher Searcher, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		searcher: searcher,
		logger:   logger,
		debounce: DefaultDebounce,
		topK:     defaultTopK,
		cache:    newQueryCache(cacheCapacity),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// normalizeQuery trims and length-caps raw input.
func normalizeQuery(raw string) string {
	q := strings.TrimSpace(raw)
	if runes := []rune(q); len(runes) > maxQueryLen {
		q = strings.TrimSpace(string(runes[:maxQueryLen]))
	}
	return q
}

// SetQuery feeds one keystroke's worth of input. Empty (after trim)
// input clears results, error and loading immediately and never
// reaches the network; anything else waits out the debounce period.
func (p *Pipeline) SetQuery(raw string) {
	q := normalizeQuery(raw)

	p.mu.Lock()
	p.stopTimerLocked()
	if q == "" {
		p.cancelInflightLocked()
		p.state = State{}
		p.notifyLocked()
		return
	}
	p.state.Query = q
	p.timer = time.AfterFunc(p.debounce, func() { p.settle(q) })
	p.mu.Unlock()
}

// Flush submits the current query immediately, skipping the remaining
// debounce wait. Used for explicit submit (enter).
func (p *Pipeline) Flush() {
	p.mu.Lock()
	p.stopTimerLocked()
	q := p.state.Query
	p.mu.Unlock()
	if q != "" {
		p.settle(q)
	}
}

// settle runs when the debounce window closes for q.
func (p *Pipeline) settle(q string) {
	p.mu.Lock()

	// A timer callback can lose the race with Stop: if the query has
	// moved on (cleared or replaced) since this window was armed, the
	// input's current owner is responsible for the state, not us.
	if p.state.Query != q {
		p.mu.Unlock()
		return
	}

	// A cache hit answers synchronously and skips the network. The
	// in-flight request for the superseded query is still cancelled.
	if hit, ok := p.cache.get(q); ok {
		p.cancelInflightLocked()
		p.state = State{Query: q, Results: hit.Results, Total: hit.Total}
		p.notifyLocked()
		return
	}

	p.cancelInflightLocked()
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.state.Loading = true
	p.state.Err = ""
	p.notifyLocked()

	go p.fetch(ctx, cancel, q)
}

// fetch performs the network request for q. A request superseded by a
// newer one observes its cancelled context and exits without touching
// result, error or loading state.
func (p *Pipeline) fetch(ctx context.Context, cancel context.CancelFunc, q string) {
	defer cancel()
	resp, err := p.searcher.Search(ctx, Request{Query: q, TopK: p.topK}, p.entitlement)
	if err != nil {
		if ctx.Err() != nil {
			return // superseded, the newer request owns the state
		}
		p.logger.Warn("search failed", zap.String("query", q), zap.Error(err))
		p.mu.Lock()
		if p.state.Query != q {
			p.mu.Unlock()
			return
		}
		p.cancel = nil
		p.state.Results = nil
		p.state.Total = 0
		p.state.Loading = false
		p.state.Err = userFacingError
		p.notifyLocked()
		return
	}

	results := normalizeResults(resp.Results)
	p.cache.put(q, cachedResults{Results: results, Total: resp.Total})

	p.mu.Lock()
	if ctx.Err() != nil || p.state.Query != q {
		p.mu.Unlock()
		return
	}
	p.cancel = nil
	p.state.Results = results
	p.state.Total = resp.Total
	p.state.Loading = false
	p.state.Err = ""
	p.notifyLocked()
}

// normalizeResults defends against missing fields and markup in
// snippets, and caps the displayed list.
func normalizeResults(in []Result) []Result {
	out := make([]Result, 0, len(in))
	for _, r := range in {
		if r.Category == "" {
			r.Category = "general"
		}
		r.Snippet = stripTags(r.Snippet)
		out = append(out, r)
		if len(out) == maxDisplayedResults {
			break
		}
	}
	return out
}

// State returns a snapshot of the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.state
	st.Results = append([]Result(nil), p.state.Results...)
	return st
}

// Close cancels the debounce timer and any in-flight request.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTimerLocked()
	p.cancelInflightLocked()
}

func (p *Pipeline) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pipeline) cancelInflightLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// notifyLocked snapshots state, releases the lock and invokes the
// observer. Callers must hold the lock and must not use it after.
func (p *Pipeline) notifyLocked() {
	fn := p.notify
	st := p.state
	st.Results = append([]Result(nil), p.state.Results...)
	p.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
