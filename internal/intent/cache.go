// Package intent fetches and caches the remote intent configuration.
// Unlike the response-template corpus, which loads once per process,
// the intent document refreshes on a short fixed interval.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a fetched intent document stays fresh.
const DefaultTTL = 60 * time.Second

// Intent describes one recognizable customer intent.
type Intent struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	AppID       string   `json:"appId,omitempty"`
}

// Config is the intent configuration document.
type Config struct {
	Intents []Intent `json:"intents"`
}

// Cache serves the intent config, refetching after the TTL expires.
// Concurrent refreshes are coalesced into a single request; when a
// refresh fails and a stale document exists, the stale one is served.
type Cache struct {
	url    string
	ttl    time.Duration
	client *http.Client
	logger *zap.Logger
	group  singleflight.Group

	mu        sync.Mutex
	val       *Config
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the refresh interval.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// NewCache creates an intent-config cache for the given URL.
func NewCache(url string, logger *zap.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		url:    url,
		ttl:    DefaultTTL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current intent config, fetching if the cached copy
// is missing or stale.
func (c *Cache) Get(ctx context.Context) (*Config, error) {
	c.mu.Lock()
	if c.val != nil && time.Since(c.fetchedAt) < c.ttl {
		val := c.val
		c.mu.Unlock()
		return val, nil
	}
	stale := c.val
	c.mu.Unlock()

	v, err, _ := c.group.Do("intent-config", func() (interface{}, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		if stale != nil {
			c.logger.Warn("intent config refresh failed, serving stale", zap.Error(err))
			return stale, nil
		}
		return nil, err
	}
	return v.(*Config), nil
}

func (c *Cache) fetch(ctx context.Context) (*Config, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create intent request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intent fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("intent fetch returned status %d: %s", resp.StatusCode, string(b))
	}

	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode intent config: %w", err)
	}

	c.mu.Lock()
	c.val = &cfg
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return &cfg, nil
}
