package intent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intentServer(t *testing.T, hits *atomic.Int64, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if fail.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Config{Intents: []Intent{
			{Key: "dispute_charge", Title: "Dispute a charge", AppID: "disputes"},
			{Key: "reset_pin", Title: "Reset card PIN"},
		}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCacheGet(t *testing.T) {
	var hits atomic.Int64
	var fail atomic.Bool

	t.Run("fetches once within the TTL", func(t *testing.T) {
		srv := intentServer(t, &hits, &fail)
		c := NewCache(srv.URL, nil, WithTTL(time.Minute))

		for i := 0; i < 5; i++ {
			cfg, err := c.Get(context.Background())
			require.NoError(t, err)
			require.Len(t, cfg.Intents, 2)
			assert.Equal(t, "dispute_charge", cfg.Intents[0].Key)
		}
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("refetches after the TTL expires", func(t *testing.T) {
		var localHits atomic.Int64
		srv := intentServer(t, &localHits, &fail)
		c := NewCache(srv.URL, nil, WithTTL(20*time.Millisecond))

		_, err := c.Get(context.Background())
		require.NoError(t, err)
		time.Sleep(40 * time.Millisecond)
		_, err = c.Get(context.Background())
		require.NoError(t, err)

		assert.Equal(t, int64(2), localHits.Load())
	})

	t.Run("serves stale config while refresh fails", func(t *testing.T) {
		var localHits atomic.Int64
		var localFail atomic.Bool
		srv := intentServer(t, &localHits, &localFail)
		c := NewCache(srv.URL, nil, WithTTL(10*time.Millisecond))

		cfg, err := c.Get(context.Background())
		require.NoError(t, err)

		localFail.Store(true)
		time.Sleep(30 * time.Millisecond)

		stale, err := c.Get(context.Background())
		require.NoError(t, err, "stale config must be served, not an error")
		assert.Equal(t, cfg, stale)
	})

	t.Run("first fetch failure is an error", func(t *testing.T) {
		var localHits atomic.Int64
		var localFail atomic.Bool
		localFail.Store(true)
		srv := intentServer(t, &localHits, &localFail)
		c := NewCache(srv.URL, nil)

		_, err := c.Get(context.Background())
		assert.Error(t, err)
	})
}
