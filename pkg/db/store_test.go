package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-watch/pkg/domain"
)

// testStoreContract runs the behaviour every Store must share
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing state is empty", func(t *testing.T) {
		seen, err := store.LoadSeen(ctx, "never_written.json")
		require.NoError(t, err)
		assert.Empty(t, seen)

		last, err := store.LoadLastURL(ctx, "never_written.txt")
		require.NoError(t, err)
		assert.Equal(t, "", last)
	})

	t.Run("seen tenders round trip in order", func(t *testing.T) {
		first := []domain.Tender{
			{Title: "A", URL: "http://x/1"},
		}
		require.NoError(t, store.SaveSeen(ctx, "giz_tenders.json", first))

		updated := append(first, domain.Tender{Title: "B", URL: "http://x/2"})
		require.NoError(t, store.SaveSeen(ctx, "giz_tenders.json", updated))

		seen, err := store.LoadSeen(ctx, "giz_tenders.json")
		require.NoError(t, err)
		assert.Equal(t, []domain.Tender{
			{Title: "A", URL: "http://x/1"},
			{Title: "B", URL: "http://x/2"},
		}, seen)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.SaveSeen(ctx, "geda_tenders.json", []domain.Tender{{Title: "G", URL: "/g.pdf"}}))

		seen, err := store.LoadSeen(ctx, "hppcl_tenders.json")
		require.NoError(t, err)
		assert.Empty(t, seen)
	})

	t.Run("last URL is overwritten", func(t *testing.T) {
		require.NoError(t, store.SaveLastURL(ctx, "giz_last_tender.txt", "http://x/1"))
		require.NoError(t, store.SaveLastURL(ctx, "giz_last_tender.txt", "http://x/2"))

		last, err := store.LoadLastURL(ctx, "giz_last_tender.txt")
		require.NoError(t, err)
		assert.Equal(t, "http://x/2", last)
	})
}
