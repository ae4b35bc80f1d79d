package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-watch/pkg/domain"
)

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "state", "test.db"))
	require.NoError(t, err)
	defer store.Close()

	testStoreContract(t, store)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.SaveSeen(ctx, "mahaurja", []domain.Tender{{Title: "M", URL: "/m"}}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.LoadSeen(ctx, "mahaurja")
	require.NoError(t, err)
	assert.Equal(t, []domain.Tender{{Title: "M", URL: "/m"}}, seen)
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStore(context.Background(), "")
	assert.Error(t, err)
}
