package db

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tender-watch/pkg/domain"
)

const testSupabaseKey = "service-role-key"

// fakePostgREST serves the two state tables the way the Supabase REST API
// does for the queries the store issues.
type fakePostgREST struct {
	mu   sync.Mutex
	seen map[string]map[int]seenRow
	last map[string]lastRow
}

func newFakePostgREST(t *testing.T) *httptest.Server {
	fake := &fakePostgREST{
		seen: make(map[string]map[int]seenRow),
		last: make(map[string]lastRow),
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return server
}

func (f *fakePostgREST) fail(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": strconv.Itoa(status), "message": message})
}

func (f *fakePostgREST) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apikey") != testSupabaseKey {
		f.fail(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Query().Get("state_key"), "eq.")

	switch r.Method + " " + r.URL.Path {
	case "GET /rest/v1/seen_tenders":
		rows := make([]seenRow, 0)
		for _, row := range f.seen[key] {
			rows = append(rows, row)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
		_ = json.NewEncoder(w).Encode(rows)

	case "POST /rest/v1/seen_tenders":
		var rows []seenRow
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			f.fail(w, http.StatusBadRequest, err.Error())
			return
		}
		for _, row := range rows {
			if f.seen[row.StateKey] == nil {
				f.seen[row.StateKey] = make(map[int]seenRow)
			}
			f.seen[row.StateKey][row.Position] = row
		}
		w.WriteHeader(http.StatusCreated)

	case "DELETE /rest/v1/seen_tenders":
		from, err := strconv.Atoi(strings.TrimPrefix(r.URL.Query().Get("position"), "gte."))
		if err != nil {
			f.fail(w, http.StatusBadRequest, "position filter required")
			return
		}
		for position := range f.seen[key] {
			if position >= from {
				delete(f.seen[key], position)
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case "GET /rest/v1/last_seen_tenders":
		rows := make([]lastRow, 0, 1)
		if row, ok := f.last[key]; ok {
			rows = append(rows, row)
		}
		_ = json.NewEncoder(w).Encode(rows)

	case "POST /rest/v1/last_seen_tenders":
		var row lastRow
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			f.fail(w, http.StatusBadRequest, err.Error())
			return
		}
		f.last[row.StateKey] = row
		w.WriteHeader(http.StatusCreated)

	default:
		f.fail(w, http.StatusNotFound, "unexpected request "+r.Method+" "+r.URL.Path)
	}
}

func openSupabaseREST(t *testing.T, url, key string) Store {
	t.Helper()
	store, err := Open(context.Background(), Config{
		Backend:  BackendSupabase,
		Supabase: SupabaseConfig{URL: url, Key: key},
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSupabaseRESTStore_Contract(t *testing.T) {
	server := newFakePostgREST(t)
	store := openSupabaseREST(t, server.URL, testSupabaseKey)

	assert.IsType(t, &SupabaseRESTStore{}, store)
	testStoreContract(t, store)
}

func TestSupabaseRESTStore_SaveSeenShrinks(t *testing.T) {
	ctx := context.Background()
	server := newFakePostgREST(t)
	store := openSupabaseREST(t, server.URL, testSupabaseKey)

	require.NoError(t, store.SaveSeen(ctx, "geda_tenders.json", []domain.Tender{
		{Title: "A", URL: "http://x/1"},
		{Title: "B", URL: "http://x/2"},
		{Title: "C", URL: "http://x/3"},
	}))
	require.NoError(t, store.SaveSeen(ctx, "geda_tenders.json", []domain.Tender{{Title: "Z", URL: "http://x/9"}}))

	seen, err := store.LoadSeen(ctx, "geda_tenders.json")
	require.NoError(t, err)
	assert.Equal(t, []domain.Tender{{Title: "Z", URL: "http://x/9"}}, seen)
}

func TestSupabaseRESTStore_APIError(t *testing.T) {
	server := newFakePostgREST(t)
	store := openSupabaseREST(t, server.URL, "anon-key")

	_, err := store.LoadSeen(context.Background(), "geda_tenders.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestSupabaseRESTStore_CancelledContext(t *testing.T) {
	server := newFakePostgREST(t)
	store := openSupabaseREST(t, server.URL, testSupabaseKey)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.SaveLastURL(ctx, "giz_last_tender.txt", "http://x/1")
	assert.ErrorIs(t, err, context.Canceled)
}
