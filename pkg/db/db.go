package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender-watch/pkg/domain"
)

// MongoConfig holds the MongoDB connection settings
type MongoConfig struct {
	URI        string `env:"MONGO_URI" yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// SetDefaults fills in database and collection names
func (c *MongoConfig) SetDefaults() {
	if c.Database == "" {
		c.Database = "tenderwatch"
	}
	if c.Collection == "" {
		c.Collection = "site_state"
	}
}

// stateDocument is one site's state; the state key is the document id
type stateDocument struct {
	Key       string          `bson:"_id"`
	Tenders   []domain.Tender `bson:"tenders,omitempty"`
	LastURL   string          `bson:"last_url,omitempty"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// MongoStore wraps the MongoDB client and the state collection
type MongoStore struct {
	mongoClient *mongo.Client
	collection  *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the connection
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	cfg.SetDefaults()
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		mongoClient: mongoClient,
		collection:  mongoClient.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Close closes the MongoDB connection
func (s *MongoStore) Close() error {
	if s.mongoClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.mongoClient.Disconnect(ctx)
}

func (s *MongoStore) find(ctx context.Context, key string) (*stateDocument, error) {
	var doc stateDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find state: %w", err)
	}
	return &doc, nil
}

func (s *MongoStore) set(ctx context.Context, key string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()

	filter := bson.M{"_id": key}
	update := bson.M{"$set": fields}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert state: %w", err)
	}
	return nil
}

// LoadSeen returns the tenders stored in the key's document
func (s *MongoStore) LoadSeen(ctx context.Context, key string) ([]domain.Tender, error) {
	doc, err := s.find(ctx, key)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.Tenders, nil
}

// SaveSeen replaces the tenders in the key's document
func (s *MongoStore) SaveSeen(ctx context.Context, key string, tenders []domain.Tender) error {
	if tenders == nil {
		tenders = []domain.Tender{}
	}
	return s.set(ctx, key, bson.M{"tenders": tenders})
}

// LoadLastURL returns the last alerted URL stored in the key's document
func (s *MongoStore) LoadLastURL(ctx context.Context, key string) (string, error) {
	doc, err := s.find(ctx, key)
	if err != nil || doc == nil {
		return "", err
	}
	return doc.LastURL, nil
}

// SaveLastURL overwrites the last alerted URL in the key's document
func (s *MongoStore) SaveLastURL(ctx context.Context, key, url string) error {
	return s.set(ctx, key, bson.M{"last_url": url})
}
