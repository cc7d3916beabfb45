package recommendation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/teamaeris/opendata-api/internal/db"
	"github.com/teamaeris/opendata-api/internal/db/mongodb/mongotest"
	"github.com/teamaeris/opendata-api/internal/domain"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

func TestGet_Found(t *testing.T) {
	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	coll := &mongotest.Collection{One: bson.D{
		{Key: "target_doc_id", Value: "15001"},
		{Key: "target_doc_type", Value: "API"},
		{Key: "recommendations", Value: bson.A{
			bson.D{{Key: "doc_id", Value: "15002"}, {Key: "doc_type", Value: "API"}, {Key: "similarity_score", Value: 0.91}, {Key: "rank", Value: 1}},
			bson.D{{Key: "doc_id", Value: "30001"}, {Key: "doc_type", Value: "FILE"}, {Key: "similarity_score", Value: 0.8}, {Key: "rank", Value: 2}},
		}},
		{Key: "created_at", Value: now},
		{Key: "updated_at", Value: now},
		{Key: "expires_at", Value: now.Add(domrec.DefaultTTL)},
		{Key: "version", Value: 3},
	}}

	got, err := New(coll).Get(context.Background(), "15001")
	require.NoError(t, err)
	assert.Equal(t, "15001", got.TargetDocID)
	assert.Equal(t, 3, got.Version)
	require.Len(t, got.Items, 2)
	assert.Equal(t, domrec.Item{DocID: "30001", DocType: "FILE", SimilarityScore: 0.8, Rank: 2}, got.Items[1])
	assert.True(t, now.Add(domrec.DefaultTTL).Equal(got.ExpiresAt))
}

func TestGet_Missing(t *testing.T) {
	_, err := New(&mongotest.Collection{}).Get(context.Background(), "1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPut_UpsertsWithVersionBump(t *testing.T) {
	coll := &mongotest.Collection{}
	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	items := []domrec.Item{{DocID: "2", DocType: "API", SimilarityScore: 0.7, Rank: 1}}

	err := New(coll).Put(context.Background(), "1", "API", items, now, 7*24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, bson.D{{Key: "target_doc_id", Value: "1"}}, coll.Filters[0])
	require.Len(t, coll.Updates, 1)
	update := coll.Updates[0].(bson.D)

	set := update[0].Value.(bson.D)
	assert.Equal(t, "$set", update[0].Key)
	assert.Equal(t, []itemDoc{{DocID: "2", DocType: "API", SimilarityScore: 0.7, Rank: 1}}, set[0].Value)
	assert.Equal(t, now.Add(7*24*time.Hour), set[2].Value)

	assert.Equal(t, "$inc", update[1].Key)
	assert.Equal(t, bson.D{{Key: "version", Value: 1}}, update[1].Value)
	assert.Equal(t, "$setOnInsert", update[2].Key)
}

func TestPut_Error(t *testing.T) {
	coll := &mongotest.Collection{Err: errors.New("boom")}
	err := New(coll).Put(context.Background(), "1", "API", nil, time.Now(), time.Hour)

	var dbErr *db.Error
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, db.OpUpsert, dbErr.Op)
}

func TestDelete(t *testing.T) {
	ok, err := New(&mongotest.Collection{DeleteCount: 1}).Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = New(&mongotest.Collection{}).Delete(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAll(t *testing.T) {
	coll := &mongotest.Collection{DeleteCount: 17}
	n, err := New(coll).DeleteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), n)
	assert.Equal(t, bson.D{}, coll.Deletes[0])
}

func TestCountSince(t *testing.T) {
	since := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	coll := &mongotest.Collection{Count: 5}

	n, err := New(coll).CountSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, bson.D{{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}}}, coll.Filters[0])
}

func TestAvgItems(t *testing.T) {
	coll := &mongotest.Collection{Docs: []any{bson.D{{Key: "_id", Value: nil}, {Key: "avg", Value: 3.5}}}}
	avg, err := New(coll).AvgItems(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 3.5, avg, 1e-9)
}

func TestAvgItems_Empty(t *testing.T) {
	avg, err := New(&mongotest.Collection{}).AvgItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, avg)
}
