package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted in storage.backend
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
	BackendRedis    = "redis"
)

// ErrUnknownBackend is returned for unsupported storage backends
var ErrUnknownBackend = errors.New("unknown storage backend")

// Config selects and configures the state backend
type Config struct {
	Backend string `env:"STORAGE_BACKEND" yaml:"backend"`
	// DataDir is the root for file state and the default SQLite location
	DataDir    string         `env:"DATA_DIR" yaml:"data_dir"`
	SQLitePath string         `env:"SQLITE_PATH" yaml:"sqlite_path"`
	Postgres   PostgresConfig `yaml:"postgres"`
	Supabase   SupabaseConfig `yaml:"supabase"`
	Mongo      MongoConfig    `yaml:"mongo"`
	Redis      RedisConfig    `yaml:"redis"`
}

// SetDefaults applies default values for Config
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	c.Backend = strings.ToLower(c.Backend)
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.DataDir, "tenderwatch.db")
	}
	c.Mongo.SetDefaults()
	c.Redis.SetDefaults()
}

// Validate checks that the selected backend has what it needs to connect
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
		return nil
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for the postgres backend")
		}
	case BackendSupabase:
		if c.Supabase.ConnectionString == "" && (c.Supabase.URL == "" || (c.Supabase.Password == "" && c.Supabase.Key == "")) {
			return fmt.Errorf("storage.supabase needs connection_string, or url with password or key")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

// Open connects to the configured backend
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(cfg.DataDir), nil

	case BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)

	case BackendPostgres:
		client := NewPostgresClient(cfg.Postgres)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return migrated(ctx, NewPostgresStore(client.DB(), client))

	case BackendSupabase:
		client := NewSupabaseClient(cfg.Supabase)
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		if !client.HasDirectDB() {
			return NewSupabaseRESTStore(client.SDK(), client), nil
		}
		return migrated(ctx, NewPostgresStore(client.DB(), client))

	case BackendMongo:
		return NewMongoStore(ctx, cfg.Mongo)

	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, cfg.Backend)
	}
}

func migrated(ctx context.Context, store *PostgresStore) (Store, error) {
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
