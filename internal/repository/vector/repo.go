package vector

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/teamaeris/opendata-api/internal/db"
	"github.com/teamaeris/opendata-api/internal/domain"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

// Field names of the similarity collection.
const (
	DefaultCollection = "recommendation_db"

	fieldDocID   = "doc_id"
	fieldDocType = "doc_type"
	fieldVector  = "vector"
)

// milvusClient is the consumer interface for Milvus (ISP).
type milvusClient interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Upsert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Query(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, opts ...client.SearchQueryOptionFunc) (client.ResultSet, error)
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, vectors []entity.Vector,
		vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
}

// Repo stores document embeddings and runs COSINE similarity searches.
type Repo struct {
	cli        milvusClient
	collection string
	dim        int
	sp         entity.SearchParam
}

// New creates a vector repository over collection with vectors of dim dimensions.
func New(cli milvusClient, collection string, dim int) (*Repo, error) {
	if cli == nil {
		return nil, errors.New("milvus client is nil")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %d", dim)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	sp, err := entity.NewIndexAUTOINDEXSearchParam(1)
	if err != nil {
		return nil, err
	}
	return &Repo{cli: cli, collection: collection, dim: dim, sp: sp}, nil
}

// EnsureCollection creates and indexes the collection when missing, then loads it.
func (r *Repo) EnsureCollection(ctx context.Context) error {
	exists, err := r.cli.HasCollection(ctx, r.collection)
	if err != nil {
		return &db.Error{Op: "hasCollection", Err: err}
	}
	if !exists {
		schema := &entity.Schema{
			CollectionName: r.collection,
			Description:    "dataset embeddings",
			Fields: []*entity.Field{
				{
					Name:       fieldDocID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					TypeParams: map[string]string{entity.TypeParamMaxLength: "64"},
				},
				{
					Name:       fieldDocType,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{entity.TypeParamMaxLength: "16"},
				},
				{
					Name:       fieldVector,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: strconv.Itoa(r.dim)},
				},
			},
		}
		if err := r.cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return &db.Error{Op: "createCollection", Err: err}
		}
		idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
		if err != nil {
			return err
		}
		if err := r.cli.CreateIndex(ctx, r.collection, fieldVector, idx, false); err != nil {
			return &db.Error{Op: "createIndex", Err: err}
		}
	}
	if err := r.cli.LoadCollection(ctx, r.collection, false); err != nil {
		return &db.Error{Op: "loadCollection", Err: err}
	}
	return nil
}

// Ping checks that Milvus answers for the collection.
func (r *Repo) Ping(ctx context.Context) error {
	if _, err := r.cli.HasCollection(ctx, r.collection); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Upsert writes embeddings, replacing existing ones with the same doc id.
func (r *Repo) Upsert(ctx context.Context, embs []domrec.Embedding) error {
	if len(embs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(embs))
	types := make([]string, 0, len(embs))
	vecs := make([][]float32, 0, len(embs))
	for _, e := range embs {
		if len(e.Vector) != r.dim {
			return fmt.Errorf("doc %s: vector dim %d, want %d: %w", e.DocID, len(e.Vector), r.dim, domain.ErrInvalidArgument)
		}
		ids = append(ids, e.DocID)
		types = append(types, e.DocType)
		vecs = append(vecs, e.Vector)
	}

	_, err := r.cli.Upsert(ctx, r.collection, "",
		entity.NewColumnVarChar(fieldDocID, ids),
		entity.NewColumnVarChar(fieldDocType, types),
		entity.NewColumnFloatVector(fieldVector, r.dim, vecs),
	)
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// Vector returns the stored embedding of docID, or domain.ErrVectorNotFound.
func (r *Repo) Vector(ctx context.Context, docID string) ([]float32, error) {
	rs, err := r.cli.Query(ctx, r.collection, nil, docIDExpr(docID), []string{fieldVector})
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	col, ok := columnByName(rs, fieldVector).(*entity.ColumnFloatVector)
	if !ok || col.Len() == 0 {
		return nil, fmt.Errorf("doc %s: %w", docID, domain.ErrVectorNotFound)
	}
	return col.Data()[0], nil
}

// Similar returns up to limit nearest neighbours of vec by COSINE similarity.
func (r *Repo) Similar(ctx context.Context, vec []float32, limit int) ([]domrec.Hit, error) {
	res, err := r.cli.Search(ctx, r.collection, []string{}, "",
		[]string{fieldDocID, fieldDocType},
		[]entity.Vector{entity.FloatVector(vec)},
		fieldVector, entity.COSINE, limit, r.sp,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(res) == 0 {
		return []domrec.Hit{}, nil
	}
	sr := res[0]
	if sr.Err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: sr.Err}
	}

	typeCol := columnByName(sr.Fields, fieldDocType)
	hits := make([]domrec.Hit, 0, sr.ResultCount)
	for i := 0; i < sr.ResultCount; i++ {
		id, err := sr.IDs.GetAsString(i)
		if err != nil {
			continue
		}
		h := domrec.Hit{DocID: id}
		if i < len(sr.Scores) {
			h.Score = float64(sr.Scores[i])
		}
		if typeCol != nil {
			h.DocType, _ = typeCol.GetAsString(i)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func docIDExpr(docID string) string {
	return fieldDocID + " == " + strconv.Quote(docID)
}

func columnByName(cols client.ResultSet, name string) entity.Column {
	for _, c := range cols {
		if c != nil && c.Name() == name {
			return c
		}
	}
	return nil
}
