// Package mongotest provides an in-memory stand-in for mongodb.Collection.
package mongotest

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamaeris/opendata-api/internal/db/mongodb"
)

var _ mongodb.Collection = (*Collection)(nil)

// Collection serves canned documents and records every write.
// Find and Aggregate return Docs; FindOne returns One, or ErrNoDocuments when One is nil.
type Collection struct {
	mu sync.Mutex

	Docs  []any
	One   any
	Count int64
	// Err, when set, is returned by every operation.
	Err error
	// DeleteCount is reported by DeleteOne and DeleteMany.
	DeleteCount int64

	Filters   []any
	Pipelines []any
	FindOpts  []*options.FindOptions
	Inserted  []any
	Replaced  []any
	Updates   []any
	Deletes   []any
}

// Find records the filter and returns Docs.
func (c *Collection) Find(_ context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Filters = append(c.Filters, filter)
	c.FindOpts = append(c.FindOpts, opts...)
	if c.Err != nil {
		return nil, c.Err
	}
	return mongo.NewCursorFromDocuments(c.Docs, nil, nil)
}

// FindOne records the filter and returns One.
func (c *Collection) FindOne(_ context.Context, filter any, _ ...*options.FindOneOptions) *mongo.SingleResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Filters = append(c.Filters, filter)
	if c.Err != nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, c.Err, nil)
	}
	if c.One == nil {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(c.One, nil, nil)
}

// Aggregate records the pipeline and returns Docs.
func (c *Collection) Aggregate(_ context.Context, pipeline any, _ ...*options.AggregateOptions) (*mongo.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Pipelines = append(c.Pipelines, pipeline)
	if c.Err != nil {
		return nil, c.Err
	}
	return mongo.NewCursorFromDocuments(c.Docs, nil, nil)
}

// CountDocuments records the filter and returns Count.
func (c *Collection) CountDocuments(_ context.Context, filter any, _ ...*options.CountOptions) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Filters = append(c.Filters, filter)
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Count, nil
}

// InsertOne records the document.
func (c *Collection) InsertOne(_ context.Context, document any, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.Inserted = append(c.Inserted, document)
	return &mongo.InsertOneResult{}, nil
}

// InsertMany records the documents.
func (c *Collection) InsertMany(_ context.Context, documents []any, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.Inserted = append(c.Inserted, documents...)
	return &mongo.InsertManyResult{}, nil
}

// ReplaceOne records the filter and replacement.
func (c *Collection) ReplaceOne(_ context.Context, filter, replacement any, _ ...*options.ReplaceOptions) (*mongo.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Filters = append(c.Filters, filter)
	if c.Err != nil {
		return nil, c.Err
	}
	c.Replaced = append(c.Replaced, replacement)
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

// UpdateOne records the filter and update document.
func (c *Collection) UpdateOne(_ context.Context, filter, update any, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Filters = append(c.Filters, filter)
	if c.Err != nil {
		return nil, c.Err
	}
	c.Updates = append(c.Updates, update)
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

// DeleteOne records the filter.
func (c *Collection) DeleteOne(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.delete(filter)
}

// DeleteMany records the filter.
func (c *Collection) DeleteMany(_ context.Context, filter any, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return c.delete(filter)
}

func (c *Collection) delete(filter any) (*mongo.DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Deletes = append(c.Deletes, filter)
	if c.Err != nil {
		return nil, c.Err
	}
	return &mongo.DeleteResult{DeletedCount: c.DeleteCount}, nil
}
