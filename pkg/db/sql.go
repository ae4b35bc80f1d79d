package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"tender-watch/pkg/domain"
)

// sqlStore implements Store on top of database/sql. The SQL dialects only
// differ in placeholder syntax.
type sqlStore struct {
	db          *sql.DB
	closer      io.Closer
	placeholder func(n int) string
}

// state table names, shared with the Supabase REST store
const (
	seenTable = "seen_tenders"
	lastTable = "last_seen_tenders"
)

const createSeenTable = `
CREATE TABLE IF NOT EXISTS seen_tenders (
	state_key TEXT NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	PRIMARY KEY (state_key, position)
)`

const createLastSeenTable = `
CREATE TABLE IF NOT EXISTS last_seen_tenders (
	state_key TEXT PRIMARY KEY,
	url TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrate creates the state tables if they do not exist
func (s *sqlStore) Migrate(ctx context.Context) error {
	for _, ddl := range []string{createSeenTable, createLastSeenTable} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (s *sqlStore) LoadSeen(ctx context.Context, key string) ([]domain.Tender, error) {
	query := fmt.Sprintf(`SELECT title, url FROM seen_tenders WHERE state_key = %s ORDER BY position`, s.placeholder(1))

	rows, err := s.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen tenders: %w", err)
	}
	defer rows.Close()

	var tenders []domain.Tender
	for rows.Next() {
		var tender domain.Tender
		if err := rows.Scan(&tender.Title, &tender.URL); err != nil {
			return nil, fmt.Errorf("failed to scan seen tender: %w", err)
		}
		tenders = append(tenders, tender)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tenders, nil
}

func (s *sqlStore) SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleteQuery := fmt.Sprintf(`DELETE FROM seen_tenders WHERE state_key = %s`, s.placeholder(1))
	if _, err := tx.ExecContext(ctx, deleteQuery, key); err != nil {
		return fmt.Errorf("failed to clear seen tenders: %w", err)
	}

	insertQuery := fmt.Sprintf(`INSERT INTO seen_tenders (state_key, position, title, url) VALUES (%s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4))
	for i, tender := range tenders {
		if _, err := tx.ExecContext(ctx, insertQuery, key, i, tender.Title, tender.URL); err != nil {
			return fmt.Errorf("failed to insert seen tender: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen tenders: %w", err)
	}
	return nil
}

func (s *sqlStore) LoadLastURL(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`SELECT url FROM last_seen_tenders WHERE state_key = %s`, s.placeholder(1))

	var url string
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to query last seen URL: %w", err)
	}
	return url, nil
}

func (s *sqlStore) SaveLastURL(ctx context.Context, key, url string) error {
	query := fmt.Sprintf(`
INSERT INTO last_seen_tenders (state_key, url, updated_at)
VALUES (%s, %s, CURRENT_TIMESTAMP)
ON CONFLICT (state_key)
DO UPDATE SET url = excluded.url, updated_at = excluded.updated_at`, s.placeholder(1), s.placeholder(2))

	if _, err := s.db.ExecContext(ctx, query, key, url); err != nil {
		return fmt.Errorf("failed to upsert last seen URL: %w", err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return s.db.Close()
}

func questionPlaceholder(int) string {
	return "?"
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
