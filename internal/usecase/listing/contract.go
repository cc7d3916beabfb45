package listing

import (
	"context"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	"github.com/teamaeris/opendata-api/internal/domain/search"
)

// Catalog serves ranked snapshots and the live listing.
type Catalog interface {
	GetRankedSnapshots(ctx context.Context, sort catalog.Sort, page, size int) (catalog.RankedPage, error)
	GetUnifiedDataPaginated(ctx context.Context, q catalog.LiveQuery) (catalog.LivePage, error)
}

// Searcher runs full-text title queries.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (search.Result, error)
}

// DocumentReader loads source records and generated docs by list id.
type DocumentReader interface {
	Infos(ctx context.Context, dt catalog.DataType, ids []int64) (map[int64]domdoc.SourceInfo, error)
	GeneratedByIDs(ctx context.Context, dt catalog.DataType, ids []int64) (map[int64]domdoc.Generated, error)
}
