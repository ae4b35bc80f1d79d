package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds configuration required to connect to Supabase.
type SupabaseConfig struct {
	// ConnectionString is the Supabase Postgres connection string.
	// If not provided, it is built from URL and Password.
	ConnectionString string `env:"SUPABASE_DB_URL" yaml:"connection_string"`

	// URL is the Supabase project URL, e.g. "https://[project-ref].supabase.co"
	URL string `env:"SUPABASE_URL" yaml:"url"`

	// Key is the Supabase API key (service_role for this tool).
	Key string `env:"SUPABASE_KEY" yaml:"key"`

	// Password is the database password, not the API key.
	Password string `env:"SUPABASE_DB_PASSWORD" yaml:"password"`

	MaxOpenConns int           `yaml:"max_open_conns"`
	ConnMaxLife  time.Duration `yaml:"conn_max_life"`
}

// SupabaseClient provides access to the Supabase database and SDK.
type SupabaseClient struct {
	db          *sql.DB
	supabaseSDK *supabase.Client
	cfg         SupabaseConfig
}

// NewSupabaseClient constructs a Supabase client; call Connect before use.
func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{cfg: cfg}
}

// Connect initializes the SDK client (when URL and key are set) and the
// direct Postgres connection (when a connection string or password is set).
// With only URL and key it works in REST API mode.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.URL != "" && c.cfg.Key != "" {
		sdkClient, err := supabase.NewClient(c.cfg.URL, c.cfg.Key, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase SDK: %w", err)
		}
		c.supabaseSDK = sdkClient
	}

	connStr := c.cfg.ConnectionString
	if connStr == "" && c.cfg.Password != "" {
		var err error
		connStr, err = c.buildConnectionString()
		if err != nil {
			return fmt.Errorf("build connection string: %w", err)
		}
	}

	if connStr == "" {
		if c.supabaseSDK != nil {
			// REST API mode only
			return nil
		}
		return fmt.Errorf("supabase state storage needs a connection string, a database password or an API key")
	}

	// The pooler in front of Supabase does not support prepared statement caching
	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("open supabase postgres: %w", err)
	}

	applyPoolSettings(db, c.cfg.MaxOpenConns, 0, 0, c.cfg.ConnMaxLife)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping supabase postgres: %w", err)
	}

	c.db = db
	return nil
}

// Close closes the database connection.
func (c *SupabaseClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying sql.DB handle.
func (c *SupabaseClient) DB() *sql.DB {
	return c.db
}

// HasDirectDB reports whether a direct Postgres connection is available.
// Without one the client works in REST API mode through SDK.
func (c *SupabaseClient) HasDirectDB() bool {
	return c.db != nil
}

// SDK returns the Supabase SDK client, or nil if URL and key were not set.
func (c *SupabaseClient) SDK() *supabase.Client {
	return c.supabaseSDK
}

// buildConnectionString constructs a Supabase Postgres connection string from URL and password.
func (c *SupabaseClient) buildConnectionString() (string, error) {
	if c.cfg.URL == "" {
		return "", fmt.Errorf("supabase URL is required when connection string is not provided")
	}

	parsedURL, err := url.Parse(c.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}

	// "abcd.supabase.co" -> "abcd"
	parts := strings.Split(parsedURL.Host, ".")
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}
	projectRef := parts[0]

	encodedPassword := url.QueryEscape(c.cfg.Password)
	return fmt.Sprintf("postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require", encodedPassword, projectRef), nil
}

// addConnectionParam adds a query parameter to the connection string if not already present.
func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}

	separator := "?"
	if strings.Contains(connStr, "?") {
		separator = "&"
	}

	return connStr + separator + key + "=" + value
}
