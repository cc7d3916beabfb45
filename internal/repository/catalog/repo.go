package catalog

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
)

// Collections groups the collection handles the repository reads and writes.
type Collections struct {
	APIInfo       mongodb.Collection
	FileInfo      mongodb.Collection
	GeneratedAPI  mongodb.Collection
	GeneratedFile mongodb.Collection
	Metadata      mongodb.Collection
	Ranks         map[domcat.Sort]mongodb.Collection
}

// Repo implements the catalog usecase contracts on MongoDB.
type Repo struct {
	c Collections
	// generated collection names, used as $lookup targets
	generatedAPIName  string
	generatedFileName string
}

// New creates a catalog repository.
func New(c Collections) *Repo {
	return &Repo{
		c:                 c,
		generatedAPIName:  mongodb.CollGeneratedAPIDocs,
		generatedFileName: mongodb.CollGeneratedFileDocs,
	}
}

// NewFromStore wires the repository to the application database.
func NewFromStore(s *mongodb.Store) *Repo {
	ranks := make(map[domcat.Sort]mongodb.Collection, len(domcat.Sorts))
	for _, sort := range domcat.Sorts {
		ranks[sort] = s.Collection(sort.Collection())
	}
	return New(Collections{
		APIInfo:       s.Collection(mongodb.CollOpenAPIInfo),
		FileInfo:      s.Collection(mongodb.CollOpenFileInfo),
		GeneratedAPI:  s.Collection(mongodb.CollGeneratedAPIDocs),
		GeneratedFile: s.Collection(mongodb.CollGeneratedFileDocs),
		Metadata:      s.Collection(mongodb.CollRankMetadata),
		Ranks:         ranks,
	})
}

var sourceProjection = bson.D{
	{Key: "_id", Value: 0},
	{Key: "list_id", Value: 1},
	{Key: "list_title", Value: 1},
	{Key: "title", Value: 1},
	{Key: "org_nm", Value: 1},
	{Key: "dept_nm", Value: 1},
	{Key: "request_cnt", Value: 1},
	{Key: "download_cnt", Value: 1},
	{Key: "updated_at", Value: 1},
}

// Sources scans every source record of the given type.
func (r *Repo) Sources(ctx context.Context, dt domcat.DataType) ([]domcat.SourceRecord, error) {
	coll, err := r.source(dt)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetProjection(sourceProjection))
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	var docs []sourceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: fmt.Errorf("decode %s sources: %w", dt, err)}
	}

	out := make([]domcat.SourceRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain(dt))
	}
	return out, nil
}

// Generated scans every generated document of the given type.
func (r *Repo) Generated(ctx context.Context, dt domcat.DataType) ([]domcat.GeneratedInfo, error) {
	coll, err := r.generated(dt)
	if err != nil {
		return nil, err
	}
	proj := bson.D{
		{Key: "_id", Value: 0},
		{Key: "list_id", Value: 1},
		{Key: "token_count", Value: 1},
		{Key: "generated_at", Value: 1},
	}
	cur, err := coll.Find(ctx, bson.D{}, options.Find().SetProjection(proj))
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	var docs []generatedDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: fmt.Errorf("decode %s generated docs: %w", dt, err)}
	}

	out := make([]domcat.GeneratedInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// LiveRows projects a source collection joined with its generated docs.
func (r *Repo) LiveRows(ctx context.Context, dt domcat.DataType) ([]domcat.Row, error) {
	coll, err := r.source(dt)
	if err != nil {
		return nil, err
	}
	from := r.generatedAPIName
	if dt == domcat.File {
		from = r.generatedFileName
	}
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: sourceProjection}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: from},
			{Key: "localField", Value: "list_id"},
			{Key: "foreignField", Value: "list_id"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "_id", Value: 0},
					{Key: "token_count", Value: 1},
					{Key: "generated_at", Value: 1},
				}}},
				bson.D{{Key: "$limit", Value: 1}},
			}},
			{Key: "as", Value: "generated"},
		}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline, options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	var docs []liveDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: fmt.Errorf("decode %s rows: %w", dt, err)}
	}

	rows := make([]domcat.Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d.toDomain(dt))
	}
	return rows, nil
}

// ReplaceRanks deletes the snapshot and inserts rows in its place.
// The swap is not atomic: readers may briefly observe an empty snapshot.
func (r *Repo) ReplaceRanks(ctx context.Context, sort domcat.Sort, rows []domcat.Row) error {
	coll, err := r.rank(sort)
	if err != nil {
		return err
	}
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return &db.Error{Op: db.OpDelete, Err: fmt.Errorf("%s: %w", sort.Collection(), err)}
	}
	if len(rows) == 0 {
		return nil
	}

	docs := make([]any, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, newRankDoc(row))
	}
	if _, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		return &db.Error{Op: db.OpInsert, Err: fmt.Errorf("%s: %w", sort.Collection(), err)}
	}
	return nil
}

// ListRanks reads a window of a snapshot ordered by rank.
func (r *Repo) ListRanks(ctx context.Context, sort domcat.Sort, offset, limit int) ([]domcat.Item, error) {
	coll, err := r.rank(sort)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "rank", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit)).
		SetProjection(bson.D{
			{Key: "_id", Value: 0},
			{Key: "list_id", Value: 1},
			{Key: "list_title", Value: 1},
			{Key: "org_nm", Value: 1},
			{Key: "token_count", Value: 1},
			{Key: "has_generated_doc", Value: 1},
			{Key: "data_type", Value: 1},
		})
	cur, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	var docs []rankItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: fmt.Errorf("decode %s: %w", sort.Collection(), err)}
	}

	items := make([]domcat.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.toDomain())
	}
	return items, nil
}

// SaveMetadata upserts the metadata record of one ordering.
func (r *Repo) SaveMetadata(ctx context.Context, meta domcat.Metadata) error {
	doc := metadataDoc{
		SortType:    string(meta.Sort),
		TotalCount:  meta.TotalCount,
		LastUpdated: meta.LastUpdated,
		Generation:  meta.Generation,
	}
	_, err := r.c.Metadata.ReplaceOne(ctx,
		bson.D{{Key: "sort_type", Value: doc.SortType}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: fmt.Errorf("metadata %s: %w", meta.Sort, err)}
	}
	return nil
}

// Metadata reads the metadata record of one ordering.
func (r *Repo) Metadata(ctx context.Context, sort domcat.Sort) (domcat.Metadata, error) {
	var doc metadataDoc
	err := r.c.Metadata.FindOne(ctx, bson.D{{Key: "sort_type", Value: string(sort)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domcat.Metadata{}, domain.ErrNotFound
	}
	if err != nil {
		return domcat.Metadata{}, &db.Error{Op: db.OpFindOne, Err: err}
	}
	return domcat.Metadata{
		Sort:        domcat.Sort(doc.SortType),
		TotalCount:  doc.TotalCount,
		LastUpdated: doc.LastUpdated,
		Generation:  doc.Generation,
	}, nil
}

// CountSources counts source records of the given type.
func (r *Repo) CountSources(ctx context.Context, dt domcat.DataType) (int64, error) {
	coll, err := r.source(dt)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// CountGenerated counts generated documents of the given type.
func (r *Repo) CountGenerated(ctx context.Context, dt domcat.DataType) (int64, error) {
	coll, err := r.generated(dt)
	if err != nil {
		return 0, err
	}
	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

func (r *Repo) source(dt domcat.DataType) (mongodb.Collection, error) {
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

func (r *Repo) rank(sort domcat.Sort) (mongodb.Collection, error) {
	coll, ok := r.c.Ranks[sort]
	if !ok {
		return nil, fmt.Errorf("sort %q: %w", sort, domain.ErrInvalidArgument)
	}
	return coll, nil
}
