package search

import (
	"context"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
)

// Index runs weighted title queries and reports index statistics.
type Index interface {
	SearchWeighted(ctx context.Context, queries []domsearch.WeightedQuery, from, size int) (domsearch.Result, error)
	Stats(ctx context.Context) (domsearch.IndexStats, error)
}

// DocumentReader resolves generated docs and source records by list id.
type DocumentReader interface {
	GeneratedListIDs(ctx context.Context, dt catalog.DataType) ([]int64, error)
	GeneratedByIDs(ctx context.Context, dt catalog.DataType, ids []int64) (map[int64]domdoc.Generated, error)
	Infos(ctx context.Context, dt catalog.DataType, ids []int64) (map[int64]domdoc.SourceInfo, error)
}
