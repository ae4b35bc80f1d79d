package db

import (
	"context"

	"tender-watch/pkg/domain"
)

// readOnlyStore reads through to the wrapped store and drops every write
type readOnlyStore struct {
	store Store
}

// ReadOnly wraps store so loads pass through and saves are discarded.
// Dry runs use it: nothing they "alert" may be recorded as seen.
func ReadOnly(store Store) Store {
	return &readOnlyStore{store: store}
}

func (s *readOnlyStore) LoadSeen(ctx context.Context, key string) ([]domain.Tender, error) {
	return s.store.LoadSeen(ctx, key)
}

func (s *readOnlyStore) SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error {
	return nil
}

func (s *readOnlyStore) LoadLastURL(ctx context.Context, key string) (string, error) {
	return s.store.LoadLastURL(ctx, key)
}

func (s *readOnlyStore) SaveLastURL(ctx context.Context, key, url string) error {
	return nil
}

func (s *readOnlyStore) Close() error {
	return s.store.Close()
}
