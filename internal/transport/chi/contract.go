package chi

import (
	"context"

	dombatch "github.com/teamaeris/opendata-api/internal/domain/batch"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
	healthuc "github.com/teamaeris/opendata-api/internal/usecase/health"
)

// Lister serves the catalog listing.
type Lister interface {
	List(ctx context.Context, q catalog.ListingQuery) (catalog.Listing, error)
}

// Ranker rebuilds the ranked snapshots.
type Ranker interface {
	RebuildRankSnapshots(ctx context.Context) (catalog.RebuildCounts, error)
}

// Documents serves generated docs and dataset details.
type Documents interface {
	Detail(ctx context.Context, listID int64, withRecs bool) (domdoc.Detail, error)
	StdDocs(ctx context.Context, ids []int64, page, pageSize int) ([]domdoc.Generated, error)
	SaveRequest(ctx context.Context, listID int64, url string) (string, error)
	Stats(ctx context.Context) (catalog.Stats, error)
}

// Comments serves dataset comments.
type Comments interface {
	Create(ctx context.Context, listID int64, content string) (string, error)
	List(ctx context.Context, listID int64, page, size int) (domcomment.Page, error)
	Delete(ctx context.Context, id string) error
}

// TitleSearcher serves the weighted title search.
type TitleSearcher interface {
	Titles(ctx context.Context, queries []string, page, pageSize int) (domsearch.TitlePage, error)
	IndexStats(ctx context.Context) (domsearch.IndexStats, error)
}

// Recommender serves similar-dataset recommendations.
type Recommender interface {
	Get(ctx context.Context, docID, docType string, topK int, useCache bool) (domrec.Result, error)
	Realtime(ctx context.Context, docID string, topK int, threshold float64) (domrec.Result, error)
	FromCache(ctx context.Context, docID string, topK int) (domrec.Result, error)
	Batch(ctx context.Context, docIDs []string, docType string, topK int) (domrec.BatchSummary, []dombatch.Result, error)
	Stats(ctx context.Context) (domrec.Stats, error)
	Clear(ctx context.Context, docID string) (bool, error)
	ClearAll(ctx context.Context) (int64, error)
}

// Indexer writes dataset embeddings to the similarity index.
type Indexer interface {
	Index(ctx context.Context, docs []domrec.IndexDocument) ([]dombatch.Result, error)
}

// HealthChecker reports backing service health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
