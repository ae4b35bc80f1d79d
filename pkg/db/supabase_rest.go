package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"

	"tender-watch/pkg/domain"
)

// SupabaseRESTStore keeps state in the seen_tenders and last_seen_tenders
// tables through the Supabase REST API. It is used when only the project URL
// and API key are configured. The tables must already exist (run the SQL
// backend's migration once, or create them from the Supabase dashboard).
//
// The REST API has no transactions: SaveSeen upserts every row by position
// first and then trims rows past the new length, so an interrupted save never
// leaves fewer rows than before.
type SupabaseRESTStore struct {
	sdk    *supabase.Client
	closer DBProvider
}

var _ Store = (*SupabaseRESTStore)(nil)

type seenRow struct {
	StateKey string `json:"state_key"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	URL      string `json:"url"`
}

type lastRow struct {
	StateKey  string    `json:"state_key"`
	URL       string    `json:"url"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSupabaseRESTStore creates a store over an initialized SDK client.
// closer may be nil.
func NewSupabaseRESTStore(sdk *supabase.Client, closer DBProvider) *SupabaseRESTStore {
	return &SupabaseRESTStore{sdk: sdk, closer: closer}
}

func (s *SupabaseRESTStore) LoadSeen(ctx context.Context, key string) ([]domain.Tender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []seenRow
	_, err := s.sdk.From(seenTable).
		Select("title,url", "", false).
		Eq("state_key", key).
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to query seen tenders: %w", err)
	}

	tenders := make([]domain.Tender, 0, len(rows))
	for _, row := range rows {
		tenders = append(tenders, domain.Tender{Title: row.Title, URL: row.URL})
	}
	return tenders, nil
}

func (s *SupabaseRESTStore) SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(tenders) > 0 {
		rows := make([]seenRow, 0, len(tenders))
		for i, tender := range tenders {
			rows = append(rows, seenRow{StateKey: key, Position: i, Title: tender.Title, URL: tender.URL})
		}
		if _, _, err := s.sdk.From(seenTable).Upsert(rows, "state_key,position", "minimal", "").Execute(); err != nil {
			return fmt.Errorf("failed to upsert seen tenders: %w", err)
		}
	}

	_, _, err := s.sdk.From(seenTable).
		Delete("minimal", "").
		Eq("state_key", key).
		Gte("position", strconv.Itoa(len(tenders))).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to trim seen tenders: %w", err)
	}
	return nil
}

func (s *SupabaseRESTStore) LoadLastURL(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var rows []lastRow
	_, err := s.sdk.From(lastTable).
		Select("url", "", false).
		Eq("state_key", key).
		ExecuteTo(&rows)
	if err != nil {
		return "", fmt.Errorf("failed to query last seen URL: %w", err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].URL, nil
}

func (s *SupabaseRESTStore) SaveLastURL(ctx context.Context, key, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := lastRow{StateKey: key, URL: url, UpdatedAt: time.Now().UTC()}
	if _, _, err := s.sdk.From(lastTable).Upsert(row, "state_key", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to upsert last seen URL: %w", err)
	}
	return nil
}

func (s *SupabaseRESTStore) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
