package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/domain"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domdoc "github.com/teamaeris/opendata-api/internal/domain/document"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

// Defaults for generated document listings and detail recommendations.
const (
	DefaultStdDocsPageSize = 10
	DefaultDetailTimeout   = 5 * time.Second
)

// Service serves dataset details and generated documents.
type Service struct {
	repo          Repository
	stats         StatsReader
	recs          Recommender
	topK          int
	detailTimeout time.Duration
	maxPageSize   int
	now           func() time.Time
	logger        *zap.Logger
}

// New creates a document service. recs can be nil.
func New(repo Repository, stats StatsReader, recs Recommender) *Service {
	return &Service{
		repo:          repo,
		stats:         stats,
		recs:          recs,
		topK:          domrec.DefaultTopK,
		detailTimeout: DefaultDetailTimeout,
		maxPageSize:   catalog.MaxPageSize,
		now:           time.Now,
		logger:        zap.NewNop(),
	}
}

// WithRecommendations configures how many recommendations a detail carries
// and how long to wait for them.
func (s *Service) WithRecommendations(topK int, timeout time.Duration) *Service {
	if topK > 0 {
		s.topK = topK
	}
	if timeout > 0 {
		s.detailTimeout = timeout
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

// Detail returns the full view of a dataset. Generated API docs win over
// generated file docs, which win over bare source records.
func (s *Service) Detail(ctx context.Context, listID int64, withRecs bool) (domdoc.Detail, error) {
	if listID < 1 {
		return domdoc.Detail{}, fmt.Errorf("list_id must be positive: %w", domain.ErrInvalidArgument)
	}

	d, err := s.lookup(ctx, listID)
	if err != nil {
		return domdoc.Detail{}, err
	}
	d.Recommendations = []domdoc.Recommended{}
	if withRecs && s.recs != nil {
		d.Recommendations = s.recommendations(ctx, listID)
	}
	return d, nil
}

func (s *Service) lookup(ctx context.Context, listID int64) (domdoc.Detail, error) {
	for _, dt := range []catalog.DataType{catalog.API, catalog.File} {
		gen, err := s.repo.Generated(ctx, dt, listID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return domdoc.Detail{}, fmt.Errorf("get generated %s doc: %w", dt, err)
		}
		info, err := s.optionalInfo(ctx, dt, listID)
		if err != nil {
			return domdoc.Detail{}, err
		}
		return domdoc.NewDetail(listID, dt, info, &gen), nil
	}

	for _, dt := range []catalog.DataType{catalog.API, catalog.File} {
		info, err := s.optionalInfo(ctx, dt, listID)
		if err != nil {
			return domdoc.Detail{}, err
		}
		if info != nil {
			return domdoc.NewDetail(listID, dt, info, nil), nil
		}
	}
	return domdoc.Detail{}, fmt.Errorf("document %d: %w", listID, domain.ErrNotFound)
}

func (s *Service) optionalInfo(ctx context.Context, dt catalog.DataType, listID int64) (*domdoc.SourceInfo, error) {
	info, err := s.repo.Info(ctx, dt, listID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s info: %w", dt, err)
	}
	return &info, nil
}

// recommendations never fails the detail: errors and timeouts yield an empty list.
func (s *Service) recommendations(ctx context.Context, listID int64) []domdoc.Recommended {
	ctx, cancel := context.WithTimeout(ctx, s.detailTimeout)
	defer cancel()

	res, err := s.recs.FromCache(ctx, strconv.FormatInt(listID, 10), s.topK)
	if err != nil {
		s.logger.Warn("Detail recommendations unavailable", zap.Int64("list_id", listID), zap.Error(err))
		return []domdoc.Recommended{}
	}
	out, err := s.hydrate(ctx, res.Items)
	if err != nil {
		s.logger.Warn("Detail recommendations not hydrated", zap.Int64("list_id", listID), zap.Error(err))
		return []domdoc.Recommended{}
	}
	return out
}

// hydrate attaches titles and organizations to recommended ids, keeping rank
// order. Items without a source record are dropped.
func (s *Service) hydrate(ctx context.Context, items []domrec.Item) ([]domdoc.Recommended, error) {
	byType := map[catalog.DataType][]int64{}
	for _, it := range items {
		id, err := strconv.ParseInt(it.DocID, 10, 64)
		if err != nil {
			continue
		}
		dt := recDataType(it.DocType)
		byType[dt] = append(byType[dt], id)
	}

	infos := map[catalog.DataType]map[int64]domdoc.SourceInfo{}
	for dt, ids := range byType {
		m, err := s.repo.Infos(ctx, dt, ids)
		if err != nil {
			return nil, fmt.Errorf("load %s infos: %w", dt, err)
		}
		infos[dt] = m
	}

	out := make([]domdoc.Recommended, 0, len(items))
	for _, it := range items {
		id, err := strconv.ParseInt(it.DocID, 10, 64)
		if err != nil {
			continue
		}
		dt := recDataType(it.DocType)
		info, ok := infos[dt][id]
		if !ok {
			continue
		}
		out = append(out, domdoc.Recommended{
			ListID:          id,
			ListTitle:       info.DisplayTitle(),
			OrgNm:           info.DisplayOrg(),
			DataType:        dt,
			SimilarityScore: it.SimilarityScore,
		})
	}
	return out, nil
}

func recDataType(docType string) catalog.DataType {
	if catalog.DataType(docType) == catalog.File {
		return catalog.File
	}
	return catalog.API
}

// StdDocs lists generated docs, API first then file, each paged independently.
// An empty ids slice lists every document.
func (s *Service) StdDocs(ctx context.Context, ids []int64, page, pageSize int) ([]domdoc.Generated, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultStdDocsPageSize
	} else if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	offset := (page - 1) * pageSize

	out := make([]domdoc.Generated, 0, pageSize)
	for _, dt := range []catalog.DataType{catalog.API, catalog.File} {
		docs, err := s.repo.ListGenerated(ctx, dt, ids, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list generated %s docs: %w", dt, err)
		}
		out = append(out, docs...)
	}
	return out, nil
}

// SaveRequest records a request to generate a document for a dataset or URL.
func (s *Service) SaveRequest(ctx context.Context, listID int64, url string) (string, error) {
	req, err := domdoc.NewSavedRequest(listID, url, s.now())
	if err != nil {
		return "", err
	}
	id, err := s.repo.SaveRequest(ctx, req)
	if err != nil {
		return "", fmt.Errorf("save request: %w", err)
	}
	return id, nil
}

// Stats returns source and generated doc counts with coverage.
func (s *Service) Stats(ctx context.Context) (catalog.Stats, error) {
	st, err := s.stats.Stats(ctx)
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("collect stats: %w", err)
	}
	return st, nil
}
