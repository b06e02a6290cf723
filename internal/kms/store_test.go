package kms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Seed(context.Background(), SampleArticles))
	return store
}

func TestStoreSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("matches title case-insensitively", func(t *testing.T) {
		results, total, err := store.Search(ctx, "CARD PIN", 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, results, 1)
		assert.Equal(t, "kb-1001", results[0].ID)
	})

	t.Run("matches snippet text", func(t *testing.T) {
		results, total, err := store.Search(ctx, "proof of residence", 20, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, results, 1)
		assert.Equal(t, "kb-1006", results[0].ID)
	})

	t.Run("empty query returns everything", func(t *testing.T) {
		results, total, err := store.Search(ctx, "", 20, 0)
		require.NoError(t, err)
		assert.Equal(t, len(SampleArticles), total)
		assert.Len(t, results, len(SampleArticles))
	})

	t.Run("pages with topK and offset", func(t *testing.T) {
		first, total, err := store.Search(ctx, "", 3, 0)
		require.NoError(t, err)
		assert.Equal(t, len(SampleArticles), total)
		require.Len(t, first, 3)

		second, _, err := store.Search(ctx, "", 3, 3)
		require.NoError(t, err)
		require.Len(t, second, 3)
		assert.NotEqual(t, first[0].ID, second[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		results, total, err := store.Search(ctx, "quantum ledger", 20, 0)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, results)
	})
}

func TestStoreSeedReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	updated := SampleArticles[0]
	updated.Title = "Reset a card PIN (updated)"
	require.NoError(t, store.Seed(ctx, []Article{updated}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(SampleArticles), n)

	results, _, err := store.Search(ctx, "updated", 20, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb-1001", results[0].ID)
}
