package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSearch(t *testing.T) {
	t.Run("posts contract body and entitlement header", func(t *testing.T) {
		var gotBody Request
		var gotHeader string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			gotHeader = r.Header.Get("X-Agent-Entitlement")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			json.NewEncoder(w).Encode(Response{
				Results: []Result{{ID: "kb-1", Title: "Card PIN reset", URL: "/kb/1"}},
				Total:   1,
				TookMs:  4,
			})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, nil)
		resp, err := c.Search(context.Background(), Request{Query: "pin reset", TopK: 20}, "CHAT_AGENT,retail,basic")
		require.NoError(t, err)

		assert.Equal(t, "CHAT_AGENT,retail,basic", gotHeader)
		if diff := cmp.Diff(Request{Query: "pin reset", TopK: 20}, gotBody); diff != "" {
			t.Errorf("request body mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "kb-1", resp.Results[0].ID)
	})

	t.Run("omits entitlement header when empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, present := r.Header["X-Agent-Entitlement"]
			assert.False(t, present)
			json.NewEncoder(w).Encode(Response{})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, nil).Search(context.Background(), Request{Query: "x"}, "")
		require.NoError(t, err)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, nil).Search(context.Background(), Request{Query: "x"}, "")
		assert.ErrorContains(t, err, "502")
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-block
		}))
		defer srv.Close()
		defer close(block)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(srv.URL, nil).Search(ctx, Request{Query: "x"}, "")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestAppClientSearch(t *testing.T) {
	var gotHeaders http.Header
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		json.NewEncoder(w).Encode(Response{Total: 2, TookMs: 3})
	}))
	defer srv.Close()

	c := NewAppClient(srv.URL, nil)
	resp, err := c.Search(context.Background(),
		AppRequest{Query: "card dispute", Limit: 10, Filters: map[string]string{"category": "cards"}},
		AppContext{Role: "chat_agent", CustomerTier: "premier", CurrentIntent: "dispute_charge"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	t.Run("wire fields follow the contract", func(t *testing.T) {
		assert.Equal(t, "card dispute", raw["q"])
		assert.Equal(t, float64(10), raw["limit"])
		assert.NotNil(t, raw["filters"])
	})

	t.Run("context headers are set", func(t *testing.T) {
		assert.Equal(t, "chat_agent", gotHeaders.Get("X-Agent-Role"))
		assert.Equal(t, "premier", gotHeaders.Get("X-Customer-Tier"))
		assert.Equal(t, "dispute_charge", gotHeaders.Get("X-Current-Intent"))
	})
}
