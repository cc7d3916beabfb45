package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/teamaeris/opendata-api/internal/db"
)

// Compile-time check: Store implements db.Pinger.
var _ db.Pinger = (*Store)(nil)

// Collection names.
const (
	CollOpenAPIInfo        = "open_data_info"
	CollOpenFileInfo       = "open_file_info"
	CollGeneratedAPIDocs   = "generated_api_docs"
	CollGeneratedFileDocs  = "generated_file_docs"
	CollRankMetadata       = "rank_metadata"
	CollDocRecommendations = "doc_recommendations"
	CollComments           = "comments"
	CollSavedRequests      = "saved_requests"
)

// Collection is the subset of *mongo.Collection used by repositories.
//
//nolint:interfacebloat // mirrors the driver's collection surface used across repositories
type Collection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	InsertMany(ctx context.Context, documents []any, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Compile-time check: the driver collection satisfies Collection.
var _ Collection = (*mongo.Collection)(nil)

// Config holds connection parameters for MongoDB.
type Config struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

// Store owns the MongoDB client and the application database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore configures a MongoDB client. The driver connects lazily, so an
// unreachable server surfaces on the first operation or on WaitForReady.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("database is required")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if err := db.WaitForReady(ctx, timeout, s.Ping); err != nil {
		return fmt.Errorf("timeout waiting for mongo: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// Collection returns a handle to a collection of the application database.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the secondary indexes the repositories rely on.
// Existing indexes with the same keys are left as they are.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		CollDocRecommendations: {
			{Keys: bson.D{{Key: "target_doc_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		CollComments: {
			{Keys: bson.D{{Key: "list_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollRankMetadata: {
			{Keys: bson.D{{Key: "sort_type", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollGeneratedAPIDocs:  {{Keys: bson.D{{Key: "list_id", Value: 1}}}},
		CollGeneratedFileDocs: {{Keys: bson.D{{Key: "list_id", Value: 1}}}},
	}
	for name, models := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return &db.Error{Op: "createIndexes", Err: fmt.Errorf("%s: %w", name, err)}
		}
	}
	return nil
}

// Database returns the application database.
func (s *Store) Database() *mongo.Database {
	return s.db
}
