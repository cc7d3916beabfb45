package search

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/teamaeris/opendata-api/internal/domain"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domsearch "github.com/teamaeris/opendata-api/internal/domain/search"
)

// Title search bounds.
const (
	DefaultTitlePageSize = 10
	minSearchSize        = 10
)

// Service searches dataset titles that have a generated document.
type Service struct {
	index       Index
	docs        DocumentReader
	maxPageSize int
}

// New creates a title search service.
func New(index Index, docs DocumentReader) *Service {
	return &Service{index: index, docs: docs, maxPageSize: catalog.MaxPageSize}
}

// WithMaxPageSize configures the largest accepted page size.
func (s *Service) WithMaxPageSize(n int) *Service {
	if n > 0 {
		s.maxPageSize = n
	}
	return s
}

// Titles runs every query as an equally weighted clause and keeps hits that
// have a generated document. Only the first 2*pageSize such hits are paged
// through, so Total never exceeds that.
func (s *Service) Titles(ctx context.Context, queries []string, page, pageSize int) (domsearch.TitlePage, error) {
	clauses := make([]domsearch.WeightedQuery, 0, len(queries))
	for _, q := range queries {
		if q = strings.TrimSpace(q); q != "" {
			clauses = append(clauses, domsearch.WeightedQuery{Text: q, Weight: 1})
		}
	}
	if len(clauses) == 0 {
		return domsearch.TitlePage{}, fmt.Errorf("query is required: %w", domain.ErrInvalidArgument)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultTitlePageSize
	} else if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	out := domsearch.TitlePage{Items: []domsearch.TitleItem{}, Page: page, PageSize: pageSize}

	generated, err := s.generatedIDs(ctx)
	if err != nil {
		return domsearch.TitlePage{}, err
	}
	if len(generated) == 0 {
		return out, nil
	}

	res, err := s.index.SearchWeighted(ctx, clauses, 0, max(pageSize*3, minSearchSize))
	if err != nil {
		return domsearch.TitlePage{}, fmt.Errorf("search titles: %w", err)
	}

	filtered := make([]domsearch.Hit, 0, pageSize*2)
	for _, h := range res.Hits {
		if _, ok := generated[h.ListID]; !ok {
			continue
		}
		filtered = append(filtered, h)
		if len(filtered) >= pageSize*2 {
			break
		}
	}
	out.Total = len(filtered)

	start := (page - 1) * pageSize
	if start >= len(filtered) {
		return out, nil
	}
	hits := filtered[start:min(start+pageSize, len(filtered))]

	ids := make([]int64, len(hits))
	for i, h := range hits {
		ids[i] = h.ListID
	}
	r, err := s.resolve(ctx, ids)
	if err != nil {
		return domsearch.TitlePage{}, err
	}
	for _, h := range hits {
		out.Items = append(out.Items, r.item(h))
	}
	return out, nil
}

// IndexStats reports the size of the title index.
func (s *Service) IndexStats(ctx context.Context) (domsearch.IndexStats, error) {
	st, err := s.index.Stats(ctx)
	if err != nil {
		return domsearch.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return st, nil
}

func (s *Service) generatedIDs(ctx context.Context) (map[int64]struct{}, error) {
	var api, file []int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.docs.GeneratedListIDs(gctx, catalog.API)
		if err != nil {
			return fmt.Errorf("list generated api ids: %w", err)
		}
		api = ids
		return nil
	})
	g.Go(func() error {
		ids, err := s.docs.GeneratedListIDs(gctx, catalog.File)
		if err != nil {
			return fmt.Errorf("list generated file ids: %w", err)
		}
		file = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // wrapped inside the group
	}

	set := make(map[int64]struct{}, len(api)+len(file))
	for _, id := range api {
		set[id] = struct{}{}
	}
	for _, id := range file {
		set[id] = struct{}{}
	}
	return set, nil
}

type resolved struct {
	apiGen   map[int64]domdoc.Generated
	fileGen  map[int64]domdoc.Generated
	apiInfo  map[int64]domdoc.SourceInfo
	fileInfo map[int64]domdoc.SourceInfo
}

func (s *Service) resolve(ctx context.Context, ids []int64) (resolved, error) {
	var r resolved
	g, gctx := errgroup.WithContext(ctx)
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
	gens(&r.apiGen, catalog.API)
	gens(&r.fileGen, catalog.File)
	infos(&r.apiInfo, catalog.API)
	infos(&r.fileInfo, catalog.File)
	if err := g.Wait(); err != nil {
		return resolved{}, err //nolint:wrapcheck // wrapped inside the group
	}
	return r, nil
}

// item prefers the generated API doc, then the generated file doc. Titles
// come from the source record when present, else from the index.
func (r resolved) item(h domsearch.Hit) domsearch.TitleItem {
	it := domsearch.TitleItem{
		ListID:    h.ListID,
		ListTitle: h.ListTitle,
		Title:     h.Title,
		Score:     h.Score,
		DataType:  h.DataType,
	}

	var (
		info  domdoc.SourceInfo
		found bool
	)
	if g, ok := r.apiGen[h.ListID]; ok {
		it.DataType = catalog.API
		it.Detail = g.Detail
		info, found = r.apiInfo[h.ListID]
	} else if g, ok := r.fileGen[h.ListID]; ok {
		it.DataType = catalog.File
		it.Detail = g.Detail
		info, found = r.fileInfo[h.ListID]
	} else {
		if i, ok := r.apiInfo[h.ListID]; ok {
			it.OrgNm = i.OrgNm
		} else if i, ok := r.fileInfo[h.ListID]; ok {
			it.OrgNm = i.OrgNm
		}
	}

	if found {
		it.OrgNm = info.OrgNm
		if t := info.DisplayTitle(); t != "" {
			it.ListTitle = t
		}
		if info.Title != "" {
			it.Title = info.Title
		}
	}
	if it.DataType == "" {
		it.DataType = catalog.API
	}
	return it
}
