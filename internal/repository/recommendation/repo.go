package recommendation

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamaeris/opendata-api/internal/db"
	"github.com/teamaeris/opendata-api/internal/db/mongodb"
	"github.com/teamaeris/opendata-api/internal/domain"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

type itemDoc struct {
	DocID           string  `bson:"doc_id"`
	DocType         string  `bson:"doc_type"`
	SimilarityScore float64 `bson:"similarity_score"`
	Rank            int     `bson:"rank"`
}

type cachedDoc struct {
	TargetDocID     string    `bson:"target_doc_id"`
	TargetDocType   string    `bson:"target_doc_type"`
	Recommendations []itemDoc `bson:"recommendations"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
	ExpiresAt       time.Time `bson:"expires_at"`
	Version         int       `bson:"version"`
}

func (d cachedDoc) toDomain() domrec.Cached {
	items := make([]domrec.Item, 0, len(d.Recommendations))
	for _, it := range d.Recommendations {
		items = append(items, domrec.Item(it))
	}
	return domrec.Cached{
		TargetDocID:   d.TargetDocID,
		TargetDocType: d.TargetDocType,
		Items:         items,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		ExpiresAt:     d.ExpiresAt,
		Version:       d.Version,
	}
}

// Repo caches recommendation lists in the doc_recommendations collection.
type Repo struct {
	coll mongodb.Collection
}

// New creates a recommendation cache repository.
func New(coll mongodb.Collection) *Repo {
	return &Repo{coll: coll}
}

// Get returns the cached entry for docID, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, docID string) (domrec.Cached, error) {
	var doc cachedDoc
	err := r.coll.FindOne(ctx, bson.D{{Key: "target_doc_id", Value: docID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domrec.Cached{}, domain.ErrNotFound
	}
	if err != nil {
		return domrec.Cached{}, &db.Error{Op: db.OpFindOne, Err: err}
	}
	return doc.toDomain(), nil
}

// Put upserts the entry for docID. An existing entry keeps its created_at and
// target type, and its version is incremented.
func (r *Repo) Put(ctx context.Context, docID, docType string, items []domrec.Item, now time.Time, ttl time.Duration) error {
	recs := make([]itemDoc, 0, len(items))
	for _, it := range items {
		recs = append(recs, itemDoc(it))
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "recommendations", Value: recs},
			{Key: "updated_at", Value: now},
			{Key: "expires_at", Value: now.Add(ttl)},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "target_doc_type", Value: docType},
			{Key: "created_at", Value: now},
		}},
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "target_doc_id", Value: docID}},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Delete removes the entry for docID and reports whether one existed.
func (r *Repo) Delete(ctx context.Context, docID string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "target_doc_id", Value: docID}})
	if err != nil {
		return false, &db.Error{Op: db.OpDelete, Err: err}
	}
	return res.DeletedCount > 0, nil
}

// DeleteAll removes every entry and returns how many were removed.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return res.DeletedCount, nil
}

// Count returns the number of cached entries.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// CountSince returns the number of entries created at or after since.
func (r *Repo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}}})
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// AvgItems returns the mean number of recommendations per entry, 0 when empty.
func (r *Repo) AvgItems(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "n", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$recommendations", bson.A{}}},
			}}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$n"}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, &db.Error{Op: db.OpAggregate, Err: err}
	}
	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &out); err != nil {
		return 0, &db.Error{Op: db.OpAggregate, Err: err}
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Avg, nil
}
