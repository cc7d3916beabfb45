package catalog

import (
	"context"

	"github.com/teamaeris/opendata-api/internal/domain/catalog"
)

// SourceReader scans the source collections and their generated documents.
type SourceReader interface {
	Sources(ctx context.Context, dt catalog.DataType) ([]catalog.SourceRecord, error)
	Generated(ctx context.Context, dt catalog.DataType) ([]catalog.GeneratedInfo, error)
}

// RankStore persists rank snapshots and their metadata.
type RankStore interface {
	ReplaceRanks(ctx context.Context, sort catalog.Sort, rows []catalog.Row) error
	ListRanks(ctx context.Context, sort catalog.Sort, offset, limit int) ([]catalog.Item, error)
	SaveMetadata(ctx context.Context, meta catalog.Metadata) error
	// Metadata returns domain.ErrNotFound when the ordering was never built.
	Metadata(ctx context.Context, sort catalog.Sort) (catalog.Metadata, error)
}

// LiveReader projects one source collection, joined with its generated docs, into rows.
type LiveReader interface {
	LiveRows(ctx context.Context, dt catalog.DataType) ([]catalog.Row, error)
}

// Counter counts source records and generated documents.
type Counter interface {
	CountSources(ctx context.Context, dt catalog.DataType) (int64, error)
	CountGenerated(ctx context.Context, dt catalog.DataType) (int64, error)
}
