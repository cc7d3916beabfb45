package listing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teamaeris/opendata-api/internal/domain"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	"github.com/teamaeris/opendata-api/internal/domain/search"
)

// Service builds the public dataset listing from search, snapshots or live data.
type Service struct {
	catalog Catalog
	search  Searcher
	docs    DocumentReader
	logger  *zap.Logger
}

// New creates a listing service.
func New(c Catalog, s Searcher, docs DocumentReader) *Service {
	return &Service{catalog: c, search: s, docs: docs, logger: zap.NewNop()}
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// List returns one page of the listing. A page past the last one is rejected
// with domain.ErrPageOutOfRange.
func (s *Service) List(ctx context.Context, q catalog.ListingQuery) (catalog.Listing, error) {
	q.Paging = catalog.NewPaging(q.Paging.Page, q.Paging.Size)

	var (
		items []catalog.ListItem
		total int
		err   error
	)
	switch {
	case q.Text != "":
		items, total, err = s.searchItems(ctx, q)
	case q.HasColumnOrder():
		items, total, err = s.liveItems(ctx, q, 0)
	default:
		items, total, err = s.snapshotItems(ctx, q)
	}
	if err != nil {
		return catalog.Listing{}, err
	}

	l := catalog.NewListing(items, total, q.Paging.Page, q.Paging.Size)
	if l.TotalPages > 0 && l.Page > l.TotalPages {
		return catalog.Listing{}, domain.NewPageOutOfRange(l.Page, l.TotalPages)
	}
	return l, nil
}

func (s *Service) snapshotItems(ctx context.Context, q catalog.ListingQuery) ([]catalog.ListItem, int, error) {
	page, err := s.catalog.GetRankedSnapshots(ctx, q.Sort, q.Paging.Page, q.Paging.Size)
	if err != nil {
		return nil, 0, fmt.Errorf("read snapshot: %w", err)
	}
	if page.Redirect {
		s.logger.Debug("Snapshot page exceeded, using live listing",
			zap.String("sort", string(q.Sort)),
			zap.Int("page", q.Paging.Page),
			zap.String("reason", page.Reason),
		)
		return s.liveItems(ctx, q, page.Total)
	}

	items := make([]catalog.ListItem, len(page.Items))
	for i, it := range page.Items {
		items[i] = catalog.ItemFromSnapshot(it)
	}
	return items, page.Total, nil
}

// liveItems reads the live listing. A positive knownTotal overrides the live count.
func (s *Service) liveItems(ctx context.Context, q catalog.ListingQuery, knownTotal int) ([]catalog.ListItem, int, error) {
	live, err := s.catalog.GetUnifiedDataPaginated(ctx, q.Live())
	if err != nil {
		return nil, 0, fmt.Errorf("read live listing: %w", err)
	}
	items := make([]catalog.ListItem, len(live.Rows))
	for i, r := range live.Rows {
		items[i] = catalog.ItemFromRow(r)
	}
	total := live.Total
	if knownTotal > 0 {
		total = knownTotal
	}
	return items, total, nil
}

func (s *Service) searchItems(ctx context.Context, q catalog.ListingQuery) ([]catalog.ListItem, int, error) {
	res, err := s.search.Search(ctx, search.Query{
		Text:       q.Text,
		From:       q.Paging.Offset(),
		Size:       q.Paging.Size,
		ExactMatch: q.ExactMatch,
		MinScore:   q.MinScore,
		Adaptive:   q.Adaptive,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("search titles: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ListID)
	}
	e, err := s.enrichment(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	items := make([]catalog.ListItem, 0, len(res.Hits))
	for _, h := range res.Hits {
		items = append(items, e.item(h))
	}
	return items, res.Total, nil
}

// enrichment holds the Mongo records matching a page of search hits.
type enrichment struct {
	apiInfo  map[int64]domdoc.SourceInfo
	fileInfo map[int64]domdoc.SourceInfo
	apiGen   map[int64]domdoc.Generated
	fileGen  map[int64]domdoc.Generated
}

func (s *Service) enrichment(ctx context.Context, ids []int64) (enrichment, error) {
	var e enrichment
	if len(ids) == 0 {
		return e, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	infos := func(dst *map[int64]domdoc.SourceInfo, dt catalog.DataType) {
		g.Go(func() error {
			m, err := s.docs.Infos(gctx, dt, ids)
			if err != nil {
				return fmt.Errorf("load %s infos: %w", dt, err)
			}
			*dst = m
			return nil
		})
	}
	gens := func(dst *map[int64]domdoc.Generated, dt catalog.DataType) {
		g.Go(func() error {
			m, err := s.docs.GeneratedByIDs(gctx, dt, ids)
			if err != nil {
				return fmt.Errorf("load %s generated docs: %w", dt, err)
			}
			*dst = m
			return nil
		})
	}
	infos(&e.apiInfo, catalog.API)
	infos(&e.fileInfo, catalog.File)
	gens(&e.apiGen, catalog.API)
	gens(&e.fileGen, catalog.File)
	if err := g.Wait(); err != nil {
		return enrichment{}, err //nolint:wrapcheck // wrapped inside the group
	}
	return e, nil
}

// item resolves a hit against API records first, then file records, then file
// generated docs alone. Unknown ids keep the indexed fields.
func (e enrichment) item(h search.Hit) catalog.ListItem {
	score := h.Score
	it := catalog.ListItem{ListID: h.ListID, Score: &score}

	if info, ok := e.apiInfo[h.ListID]; ok {
		it.DataType = catalog.API
		it.ListTitle = info.ListTitle
		it.OrgNm = info.OrgNm
		applyGenerated(&it, e.apiGen, h.ListID)
		return it
	}
	if info, ok := e.fileInfo[h.ListID]; ok {
		it.DataType = catalog.File
		it.ListTitle = info.DisplayTitle()
		it.OrgNm = info.DisplayOrg()
		applyGenerated(&it, e.fileGen, h.ListID)
		return it
	}

	it.ListTitle = h.ListTitle
	it.OrgNm = h.OrgNm
	if _, ok := e.fileGen[h.ListID]; ok {
		it.DataType = catalog.File
		applyGenerated(&it, e.fileGen, h.ListID)
		return it
	}
	it.DataType = h.DataType
	if it.DataType == "" {
		it.DataType = catalog.API
	}
	return it
}

func applyGenerated(it *catalog.ListItem, gens map[int64]domdoc.Generated, id int64) {
	g, ok := gens[id]
	if !ok {
		return
	}
	it.HasGeneratedDoc = true
	it.TokenCount = g.TokenCount
	it.UpdatedAt = g.GeneratedAt
}
