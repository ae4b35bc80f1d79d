package db

import (
	"context"
	"database/sql"

	"tender-watch/pkg/domain"
)

// Store persists what has already been alerted for each site.
// Keys are the site's state location. Missing state is not an error: the
// Load methods return an empty result instead.
type Store interface {
	// LoadSeen returns every tender already alerted under key
	LoadSeen(ctx context.Context, key string) ([]domain.Tender, error)
	// SaveSeen replaces the tenders stored under key with tenders
	SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error
	// LoadLastURL returns the URL of the last alerted tender under key
	LoadLastURL(ctx context.Context, key string) (string, error)
	// SaveLastURL overwrites the last alerted URL under key
	SaveLastURL(ctx context.Context, key, url string) error
	Close() error
}

// DBProvider is an interface for database clients that provide access to a sql.DB handle.
// This allows both PostgresClient and SupabaseClient to back a PostgresStore.
type DBProvider interface {
	DB() *sql.DB
	Close() error
}
