package document

import (
	"context"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

// Repository reads source records and generated docs, and stores generation requests.
type Repository interface {
	// Info and Generated return domain.ErrNotFound when the list id is unknown.
	Info(ctx context.Context, dt catalog.DataType, listID int64) (domdoc.SourceInfo, error)
	Infos(ctx context.Context, dt catalog.DataType, ids []int64) (map[int64]domdoc.SourceInfo, error)
	Generated(ctx context.Context, dt catalog.DataType, listID int64) (domdoc.Generated, error)
	ListGenerated(ctx context.Context, dt catalog.DataType, ids []int64, offset, limit int) ([]domdoc.Generated, error)
	SaveRequest(ctx context.Context, req domdoc.SavedRequest) (string, error)
}

// StatsReader counts sources and generated docs.
type StatsReader interface {
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Recommender returns cached similar documents.
type Recommender interface {
	FromCache(ctx context.Context, docID string, topK int) (domrec.Result, error)
}
