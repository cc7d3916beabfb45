package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teamaeris/opendata-api/internal/domain"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	"github.com/teamaeris/opendata-api/internal/metrics"
)

// Service builds and serves the ranked catalog snapshots.
type Service struct {
	sources      SourceReader
	ranks        RankStore
	live         LiveReader
	counter      Counter
	snapshotSize int
	now          func() time.Time
	logger       *zap.Logger
}

// New creates a catalog service.
func New(sources SourceReader, ranks RankStore, live LiveReader, counter Counter) *Service {
	return &Service{
		sources:      sources,
		ranks:        ranks,
		live:         live,
		counter:      counter,
		snapshotSize: catalog.SnapshotSize,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
}

// WithSnapshotSize configures how many rows each rank collection keeps.
func (s *Service) WithSnapshotSize(size int) *Service {
	if size > 0 {
		s.snapshotSize = size
	}
	return s
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// RebuildRankSnapshots recomputes every rank collection from the live sources.
//
// Each collection is replaced with delete-then-insert, so readers may briefly
// see an empty snapshot. Errors abort the rebuild without rollback.
func (s *Service) RebuildRankSnapshots(ctx context.Context) (catalog.RebuildCounts, error) {
	start := time.Now()
	counts, err := s.rebuild(ctx)
	metrics.RankRebuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RankRebuildsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RankRebuildsTotal.WithLabelValues("ok").Inc()
	return counts, nil
}

func (s *Service) rebuild(ctx context.Context) (catalog.RebuildCounts, error) {
	generation := uuid.NewString()
	log := s.logger.With(zap.String("generation", generation))

	api, err := s.sources.Sources(ctx, catalog.API)
	if err != nil {
		return nil, fmt.Errorf("read api sources: %w", err)
	}
	file, err := s.sources.Sources(ctx, catalog.File)
	if err != nil {
		return nil, fmt.Errorf("read file sources: %w", err)
	}
	apiGen, err := s.sources.Generated(ctx, catalog.API)
	if err != nil {
		return nil, fmt.Errorf("read api generated docs: %w", err)
	}
	fileGen, err := s.sources.Generated(ctx, catalog.File)
	if err != nil {
		return nil, fmt.Errorf("read file generated docs: %w", err)
	}

	now := s.now()
	rows := buildRows(api, file, apiGen, fileGen, now)

	counts := make(catalog.RebuildCounts, len(catalog.Sorts))
	for _, sort := range catalog.Sorts {
		ranked := rankTop(sortedCopy(rows, sort, now), s.snapshotSize)
		if len(ranked) > 0 {
			if err := s.ranks.ReplaceRanks(ctx, sort, ranked); err != nil {
				return nil, fmt.Errorf("replace %s snapshot: %w", sort, err)
			}
		}
		counts[sort] = len(ranked)
		metrics.RankSnapshotRows.WithLabelValues(string(sort)).Set(float64(len(ranked)))
	}

	total := distinctCount(rows)
	for _, sort := range catalog.Sorts {
		meta := catalog.Metadata{
			Sort:        sort,
			TotalCount:  total,
			LastUpdated: now,
			Generation:  generation,
		}
		if err := s.ranks.SaveMetadata(ctx, meta); err != nil {
			return nil, fmt.Errorf("save %s metadata: %w", sort, err)
		}
	}

	log.Info("Rank snapshots rebuilt",
		zap.Int("api_sources", len(api)),
		zap.Int("file_sources", len(file)),
		zap.Int("total_count", total),
		zap.Int("latest", counts[catalog.Latest]),
		zap.Int("popular", counts[catalog.Popular]),
		zap.Int("trending", counts[catalog.Trending]),
	)
	return counts, nil
}

// GetRankedSnapshots reads one page of a snapshot. Pages past the snapshot
// horizon return a redirect carrying the authoritative total.
func (s *Service) GetRankedSnapshots(
	ctx context.Context, sort catalog.Sort, page, size int,
) (catalog.RankedPage, error) {
	if !sort.IsValid() {
		return catalog.RankedPage{}, fmt.Errorf("sort %q: %w", sort, domain.ErrInvalidArgument)
	}
	p := catalog.NewPaging(page, size)
	maxPage := catalog.MaxSnapshotPage(s.snapshotSize, p.Size)

	total := 0
	meta, err := s.ranks.Metadata(ctx, sort)
	switch {
	case err == nil:
		total = meta.TotalCount
	case errors.Is(err, domain.ErrNotFound):
	default:
		return catalog.RankedPage{}, fmt.Errorf("read %s metadata: %w", sort, err)
	}

	if p.Page > maxPage {
		metrics.RankSnapshotRedirectsTotal.WithLabelValues(string(sort)).Inc()
		return catalog.RankedPage{
			Items:    []catalog.Item{},
			Total:    total,
			Page:     p.Page,
			Size:     p.Size,
			Redirect: true,
			Reason:   catalog.RedirectReasonSnapshotLimit,
		}, nil
	}

	items, err := s.ranks.ListRanks(ctx, sort, p.Offset(), p.Size)
	if err != nil {
		return catalog.RankedPage{}, fmt.Errorf("list %s snapshot: %w", sort, err)
	}
	if items == nil {
		items = []catalog.Item{}
	}

	return catalog.RankedPage{Items: items, Total: total, Page: p.Page, Size: p.Size}, nil
}

// GetUnifiedDataPaginated serves the uncapped live listing straight from the
// source collections.
func (s *Service) GetUnifiedDataPaginated(ctx context.Context, q catalog.LiveQuery) (catalog.LivePage, error) {
	q.Paging = catalog.NewPaging(q.Paging.Page, q.Paging.Size)

	var api, file []catalog.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.live.LiveRows(gctx, catalog.API)
		if err != nil {
			return fmt.Errorf("aggregate api rows: %w", err)
		}
		api = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.live.LiveRows(gctx, catalog.File)
		if err != nil {
			return fmt.Errorf("aggregate file rows: %w", err)
		}
		file = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return catalog.LivePage{}, err //nolint:wrapcheck // wrapped inside the group
	}

	rows := dedupe(append(api, file...))
	slices.SortStableFunc(rows, liveOrdering(q))

	return catalog.LivePage{
		Rows:  pageOf(rows, q.Paging),
		Total: len(rows),
		Page:  q.Paging.Page,
		Size:  q.Paging.Size,
	}, nil
}

// Stats counts source records and generated docs for both data types.
func (s *Service) Stats(ctx context.Context) (catalog.Stats, error) {
	var apiData, apiDocs, fileData, fileDocs int64
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, fn func(context.Context, catalog.DataType) (int64, error), dt catalog.DataType) {
		g.Go(func() error {
			n, err := fn(gctx, dt)
			if err != nil {
				return fmt.Errorf("count %s: %w", dt, err)
			}
			*dst = n
			return nil
		})
	}
	count(&apiData, s.counter.CountSources, catalog.API)
	count(&apiDocs, s.counter.CountGenerated, catalog.API)
	count(&fileData, s.counter.CountSources, catalog.File)
	count(&fileDocs, s.counter.CountGenerated, catalog.File)
	if err := g.Wait(); err != nil {
		return catalog.Stats{}, err //nolint:wrapcheck // wrapped inside the group
	}
	return catalog.NewStats(apiData, apiDocs, fileData, fileDocs), nil
}
