package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache(t *testing.T) {
	t.Run("miss then hit", func(t *testing.T) {
		c := newQueryCache(10)
		_, ok := c.get("cards")
		assert.False(t, ok)

		c.put("cards", cachedResults{Total: 3})
		v, ok := c.get("cards")
		require.True(t, ok)
		assert.Equal(t, 3, v.Total)
	})

	t.Run("insertion-order eviction at capacity", func(t *testing.T) {
		c := newQueryCache(10)
		for i := 0; i < 11; i++ {
			c.put(fmt.Sprintf("query-%d", i), cachedResults{Total: i})
		}

		_, ok := c.get("query-0")
		assert.False(t, ok, "oldest-inserted entry must be evicted")
		_, ok = c.get("query-1")
		assert.True(t, ok)
		assert.Equal(t, 10, c.len())
	})

	t.Run("hits do not refresh eviction order", func(t *testing.T) {
		c := newQueryCache(3)
		c.put("a", cachedResults{})
		c.put("b", cachedResults{})
		c.put("c", cachedResults{})

		// Touch "a" repeatedly; insertion order still evicts it first.
		for i := 0; i < 5; i++ {
			_, ok := c.get("a")
			require.True(t, ok)
		}
		c.put("d", cachedResults{})

		_, ok := c.get("a")
		assert.False(t, ok, "eviction is insertion-order, not LRU")
		_, ok = c.get("b")
		assert.True(t, ok)
	})

	t.Run("overwrite keeps the original slot", func(t *testing.T) {
		c := newQueryCache(2)
		c.put("a", cachedResults{Total: 1})
		c.put("b", cachedResults{Total: 2})
		c.put("a", cachedResults{Total: 9})
		c.put("c", cachedResults{})

		_, ok := c.get("a")
		assert.False(t, ok, "overwrite must not move a to the back")
		v, ok := c.get("b")
		require.True(t, ok)
		assert.Equal(t, 2, v.Total)
	})
}

func TestStripTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "reset your card pin", "reset your card pin"},
		{"highlight markup", "reset your <em>card</em> pin", "reset your card pin"},
		{"nested markup", "<p>Use the <b>mobile <i>app</i></b> instead.</p>", "Use the mobile app instead."},
		{"entities", "fees &amp; charges", "fees & charges"},
		{"leading whitespace", "  padded  ", "padded"},
		{"markup only", "<br/>", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripTags(tc.in))
		})
	}
}
