package comment

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamaeris/opendata-api/internal/db"
	"github.com/teamaeris/opendata-api/internal/db/mongodb"
	"github.com/teamaeris/opendata-api/internal/domain"
	domcat "github.com/teamaeris/opendata-api/internal/domain/catalog"
	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
)

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	ListID    any                `bson:"list_id"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt *time.Time         `bson:"updated_at"`
}

func (d commentDoc) toDomain() domcomment.Comment {
	c := domcomment.Comment{
		ID:        d.ID.Hex(),
		ListID:    domcat.CoerceInt(d.ListID),
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
	if d.UpdatedAt != nil {
		c.UpdatedAt = *d.UpdatedAt
	}
	return c
}

// Repo stores comments in MongoDB.
type Repo struct {
	coll mongodb.Collection
}

// New creates a comment repository.
func New(coll mongodb.Collection) *Repo {
	return &Repo{coll: coll}
}

// Create inserts a comment and returns its id.
func (r *Repo) Create(ctx context.Context, c domcomment.Comment) (string, error) {
	doc := commentDoc{
		ID:        primitive.NewObjectID(),
		ListID:    c.ListID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", &db.Error{Op: db.OpInsert, Err: err}
	}
	return doc.ID.Hex(), nil
}

// List returns the comments of a dataset, newest first.
func (r *Repo) List(ctx context.Context, listID int64, offset, limit int) ([]domcomment.Comment, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{{Key: "list_id", Value: listID}}, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	var docs []commentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}

	out := make([]domcomment.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Count returns the number of comments on a dataset.
func (r *Repo) Count(ctx context.Context, listID int64) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "list_id", Value: listID}})
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Delete removes a comment. Unknown or malformed ids yield domain.ErrNotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
