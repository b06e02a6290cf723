package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Result is a normalized search hit.
type Result struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Snippet  string  `json:"snippet"`
	Category string  `json:"category,omitempty"`
	Product  string  `json:"product,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// Request is the knowledge-search request body.
type Request struct {
	Query  string `json:"q"`
	TopK   int    `json:"topK"`
	Offset int    `json:"offset"`
}

// Response is the knowledge-search response body.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	TookMs  int      `json:"tookMs,omitempty"`
}

// Client POSTs knowledge-search queries, carrying the operator's
// entitlement header when one is derivable.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a knowledge-search client.
func NewClient(endpoint string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Search issues one query. Cancel the context to abort.
func (c *Client) Search(ctx context.Context, req Request, entitlement string) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if entitlement != "" {
		httpReq.Header.Set("X-Agent-Entitlement", entitlement)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, string(b))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

// AppRequest is the embedded-app search request body. The wire field
// for the query is "q" and the result cap travels as "limit".
type AppRequest struct {
	Query   string            `json:"q"`
	Limit   int               `json:"limit"`
	Filters map[string]string `json:"filters,omitempty"`
}

// AppContext carries the per-request headers of the embedded-app
// search contract.
type AppContext struct {
	Role          string
	CustomerTier  string
	CurrentIntent string
}

// AppClient POSTs embedded-app search queries.
type AppClient struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAppClient creates an embedded-app search client.
func NewAppClient(endpoint string, logger *zap.Logger) *AppClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Search issues one embedded-app query.
func (c *AppClient) Search(ctx context.Context, req AppRequest, ac AppContext) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal app search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create app search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Agent-Role", ac.Role)
	httpReq.Header.Set("X-Customer-Tier", ac.CustomerTier)
	httpReq.Header.Set("X-Current-Intent", ac.CurrentIntent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("app search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("app search returned status %d: %s", resp.StatusCode, string(b))
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode app search response: %w", err)
	}
	return &out, nil
}
