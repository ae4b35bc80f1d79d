package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-watch/pkg/domain"
)

func TestReadOnly_DropsWrites(t *testing.T) {
	ctx := context.Background()
	files := NewFileStore(t.TempDir())

	existing := []domain.Tender{{Title: "A", URL: "http://x/1"}}
	require.NoError(t, files.SaveSeen(ctx, "geda_tenders.json", existing))
	require.NoError(t, files.SaveLastURL(ctx, "giz_last_tender.txt", "http://x/1"))

	store := ReadOnly(files)

	seen, err := store.LoadSeen(ctx, "geda_tenders.json")
	require.NoError(t, err)
	assert.Equal(t, existing, seen)

	require.NoError(t, store.SaveSeen(ctx, "geda_tenders.json", append(existing, domain.Tender{Title: "B", URL: "http://x/2"})))
	require.NoError(t, store.SaveLastURL(ctx, "giz_last_tender.txt", "http://x/2"))

	seen, err = files.LoadSeen(ctx, "geda_tenders.json")
	require.NoError(t, err)
	assert.Equal(t, existing, seen)

	last, err := files.LoadLastURL(ctx, "giz_last_tender.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://x/1", last)
}
