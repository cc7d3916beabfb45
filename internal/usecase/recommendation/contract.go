package recommendation

import (
	"context"
	"time"

	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

// Cache stores computed recommendation lists.
type Cache interface {
	// Get returns domain.ErrNotFound when nothing is cached for docID.
	Get(ctx context.Context, docID string) (domrec.Cached, error)
	Put(ctx context.Context, docID, docType string, items []domrec.Item, now time.Time, ttl time.Duration) error
	Delete(ctx context.Context, docID string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	AvgItems(ctx context.Context) (float64, error)
}

// VectorIndex looks up stored embeddings and their nearest neighbours.
type VectorIndex interface {
	// Vector returns domain.ErrVectorNotFound when docID was never indexed.
	Vector(ctx context.Context, docID string) ([]float32, error)
	Similar(ctx context.Context, vec []float32, limit int) ([]domrec.Hit, error)
}
