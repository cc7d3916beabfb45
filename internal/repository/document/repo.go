package document

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/teamaeris/opendata-api/internal/db"
	"github.com/teamaeris/opendata-api/internal/db/mongodb"
	"github.com/teamaeris/opendata-api/internal/domain"
	domcat "github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
)

// Collections groups the collection handles the repository reads and writes.
type Collections struct {
	APIInfo       mongodb.Collection
	FileInfo      mongodb.Collection
	GeneratedAPI  mongodb.Collection
	GeneratedFile mongodb.Collection
	SavedRequests mongodb.Collection
}

// Repo serves source records, generated documents and saved requests from MongoDB.
type Repo struct {
	c Collections
}

// New creates a document repository.
func New(c Collections) *Repo {
	return &Repo{c: c}
}

// NewFromStore wires the repository to the application database.
func NewFromStore(s *mongodb.Store) *Repo {
	return New(Collections{
		APIInfo:       s.Collection(mongodb.CollOpenAPIInfo),
		FileInfo:      s.Collection(mongodb.CollOpenFileInfo),
		GeneratedAPI:  s.Collection(mongodb.CollGeneratedAPIDocs),
		GeneratedFile: s.Collection(mongodb.CollGeneratedFileDocs),
		SavedRequests: s.Collection(mongodb.CollSavedRequests),
	})
}

// Info returns the source record for listID, or domain.ErrNotFound.
func (r *Repo) Info(ctx context.Context, dt domcat.DataType, listID int64) (domdoc.SourceInfo, error) {
	coll, err := r.info(dt)
	if err != nil {
		return domdoc.SourceInfo{}, err
	}
	var doc infoDoc
	if err := findOne(ctx, coll, listID, &doc); err != nil {
		return domdoc.SourceInfo{}, err
	}
	return doc.toDomain(dt), nil
}

// Infos returns the source records for ids, keyed by list id. Missing ids are absent.
func (r *Repo) Infos(ctx context.Context, dt domcat.DataType, ids []int64) (map[int64]domdoc.SourceInfo, error) {
	out := make(map[int64]domdoc.SourceInfo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	coll, err := r.info(dt)
	if err != nil {
		return nil, err
	}
	var docs []infoDoc
	if err := findAll(ctx, coll, inFilter(ids), nil, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		info := d.toDomain(dt)
		if _, seen := out[info.ListID]; !seen {
			out[info.ListID] = info
		}
	}
	return out, nil
}

// Generated returns the generated document for listID, or domain.ErrNotFound.
func (r *Repo) Generated(ctx context.Context, dt domcat.DataType, listID int64) (domdoc.Generated, error) {
	coll, err := r.generated(dt)
	if err != nil {
		return domdoc.Generated{}, err
	}
	var doc generatedDoc
	if err := findOne(ctx, coll, listID, &doc); err != nil {
		return domdoc.Generated{}, err
	}
	return doc.toDomain(dt), nil
}

// GeneratedByIDs returns the generated documents for ids, keyed by list id.
func (r *Repo) GeneratedByIDs(ctx context.Context, dt domcat.DataType, ids []int64) (map[int64]domdoc.Generated, error) {
	out := make(map[int64]domdoc.Generated, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	coll, err := r.generated(dt)
	if err != nil {
		return nil, err
	}
	var docs []generatedDoc
	if err := findAll(ctx, coll, inFilter(ids), nil, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		g := d.toDomain(dt)
		if _, seen := out[g.ListID]; !seen {
			out[g.ListID] = g
		}
	}
	return out, nil
}

// ListGenerated pages through generated documents in store order, optionally
// restricted to ids.
func (r *Repo) ListGenerated(ctx context.Context, dt domcat.DataType, ids []int64, offset, limit int) ([]domdoc.Generated, error) {
	coll, err := r.generated(dt)
	if err != nil {
		return nil, err
	}
	filter := bson.D{}
	if len(ids) > 0 {
		filter = inFilter(ids)
	}
	opts := options.Find().SetSkip(int64(offset)).SetLimit(int64(limit))

	var docs []generatedDoc
	if err := findAll(ctx, coll, filter, opts, &docs); err != nil {
		return nil, err
	}
	out := make([]domdoc.Generated, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(dt))
	}
	return out, nil
}

// GeneratedListIDs returns the list ids that have a generated document.
func (r *Repo) GeneratedListIDs(ctx context.Context, dt domcat.DataType) ([]int64, error) {
	coll, err := r.generated(dt)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}, {Key: "list_id", Value: 1}})

	var docs []struct {
		ListID any `bson:"list_id"`
	}
	if err := findAll(ctx, coll, bson.D{}, opts, &docs); err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(docs))
	for _, d := range docs {
		if id := domcat.CoerceInt(d.ListID); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SaveRequest stores a generation request and returns its id.
func (r *Repo) SaveRequest(ctx context.Context, req domdoc.SavedRequest) (string, error) {
	doc := newSavedRequestDoc(req)
	if _, err := r.c.SavedRequests.InsertOne(ctx, doc); err != nil {
		return "", &db.Error{Op: db.OpInsert, Err: err}
	}
	return doc.ID.Hex(), nil
}

func (r *Repo) info(dt domcat.DataType) (mongodb.Collection, error) {
	switch dt {
	case domcat.API:
		return r.c.APIInfo, nil
	case domcat.File:
		return r.c.FileInfo, nil
	default:
		return nil, fmt.Errorf("data type %q: %w", dt, domain.ErrInvalidArgument)
	}
}

func (r *Repo) generated(dt domcat.DataType) (mongodb.Collection, error) {
	switch dt {
	case domcat.API:
		return r.c.GeneratedAPI, nil
	case domcat.File:
		return r.c.GeneratedFile, nil
	default:
		return nil, fmt.Errorf("data type %q: %w", dt, domain.ErrInvalidArgument)
	}
}

func inFilter(ids []int64) bson.D {
	return bson.D{{Key: "list_id", Value: bson.D{{Key: "$in", Value: ids}}}}
}

func findOne(ctx context.Context, coll mongodb.Collection, listID int64, out any) error {
	err := coll.FindOne(ctx, bson.D{{Key: "list_id", Value: listID}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	if err != nil {
		return &db.Error{Op: db.OpFindOne, Err: err}
	}
	return nil
}

func findAll(ctx context.Context, coll mongodb.Collection, filter any, opts *options.FindOptions, out any) error {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := coll.Find(ctx, filter, findOpts...)
	if err != nil {
		return &db.Error{Op: db.OpFind, Err: err}
	}
	if err := cur.All(ctx, out); err != nil {
		return &db.Error{Op: db.OpFind, Err: err}
	}
	return nil
}
