package recommendation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teamaeris/opendata-api/internal/domain"
	dombatch "github.com/teamaeris/opendata-api/internal/domain/batch"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
	"github.com/teamaeris/opendata-api/internal/metrics"
)

const (
	batchConcurrency = 8
	recentWindow     = 24 * time.Hour
)

// Service serves similar-document recommendations from the cache or Milvus.
type Service struct {
	cache     Cache
	vectors   VectorIndex
	threshold float64
	ttl       time.Duration
	maxBatch  int
	now       func() time.Time
	logger    *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a recommendation service.
func New(cache Cache, vectors VectorIndex) *Service {
	return &Service{
		cache:     cache,
		vectors:   vectors,
		threshold: domrec.DefaultThreshold,
		ttl:       domrec.DefaultTTL,
		maxBatch:  domrec.MaxBatchSize,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
}

// WithThreshold sets the default similarity cut-off.
func (s *Service) WithThreshold(t float64) *Service {
	if t > 0 && t <= 1 {
		s.threshold = t
	}
	return s
}

// WithTTL sets how long stored recommendations stay fresh.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithMaxBatch sets the largest accepted batch.
func (s *Service) WithMaxBatch(n int) *Service {
	if n > 0 {
		s.maxBatch = n
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

// Get returns cached recommendations when allowed and present, otherwise
// computes them and stores the result.
func (s *Service) Get(ctx context.Context, docID, docType string, topK int, useCache bool) (domrec.Result, error) {
	if useCache {
		cached, err := s.FromCache(ctx, docID, topK)
		if err != nil {
			return domrec.Result{}, err
		}
		if cached.Cached {
			return cached, nil
		}
	}

	res, err := s.Realtime(ctx, docID, topK, s.threshold)
	if err != nil {
		return domrec.Result{}, err
	}
	if len(res.Items) > 0 {
		if err := s.store(ctx, docID, docType, res.Items); err != nil {
			s.logger.Warn("Failed to cache recommendations", zap.String("doc_id", docID), zap.Error(err))
		}
	}
	return res, nil
}

// Realtime searches Milvus for neighbours of docID. A document without a
// vector has no recommendations.
func (s *Service) Realtime(ctx context.Context, docID string, topK int, threshold float64) (domrec.Result, error) {
	if err := validate(docID, threshold); err != nil {
		return domrec.Result{}, err
	}
	topK = clampTopK(topK)
	res := domrec.Result{TargetDocID: docID, Items: []domrec.Item{}, Source: domrec.SourceRealtime}

	vec, err := s.vectors.Vector(ctx, docID)
	if errors.Is(err, domain.ErrVectorNotFound) {
		s.logger.Debug("No vector for document", zap.String("doc_id", docID))
		return res, nil
	}
	if err != nil {
		return domrec.Result{}, fmt.Errorf("get vector: %w", err)
	}

	// one extra hit since the document itself is usually its own nearest neighbour
	hits, err := s.vectors.Similar(ctx, vec, topK+1)
	if err != nil {
		return domrec.Result{}, fmt.Errorf("similarity search: %w", err)
	}
	res.Items = domrec.SelectSimilar(hits, docID, topK, threshold)
	return res, nil
}

// FromCache returns the first topK cached items. A missing or expired entry
// is a miss: Cached is false and Items is empty.
func (s *Service) FromCache(ctx context.Context, docID string, topK int) (domrec.Result, error) {
	if docID == "" {
		return domrec.Result{}, fmt.Errorf("doc_id is required: %w", domain.ErrInvalidArgument)
	}
	res := domrec.Result{TargetDocID: docID, Items: []domrec.Item{}, Source: domrec.SourceCache}

	entry, err := s.cache.Get(ctx, docID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.miss()
		return res, nil
	case err != nil:
		return domrec.Result{}, fmt.Errorf("read cache: %w", err)
	}
	if entry.Expired(s.now()) || len(entry.Items) == 0 {
		s.miss()
		return res, nil
	}

	s.hit()
	res.Items = entry.Top(clampTopK(topK))
	res.Cached = true
	return res, nil
}

// Batch computes and stores recommendations for every id. Documents without
// neighbours are reported as skipped.
func (s *Service) Batch(ctx context.Context, docIDs []string, docType string, topK int) (domrec.BatchSummary, []dombatch.Result, error) {
	if len(docIDs) > s.maxBatch {
		return domrec.BatchSummary{}, nil, fmt.Errorf("%d documents, max %d: %w", len(docIDs), s.maxBatch, domain.ErrBatchTooLarge)
	}

	results := make([]dombatch.Result, len(docIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, id := range docIDs {
		g.Go(func() error {
			results[i] = s.generate(gctx, id, docType, topK)
			return nil
		})
	}
	_ = g.Wait()

	ok := dombatch.Count(results, dombatch.StatusOK)
	summary := domrec.BatchSummary{Requested: len(docIDs), Succeeded: ok, Failed: len(docIDs) - ok}
	s.logger.Info("Batch recommendations generated",
		zap.Int("requested", summary.Requested),
		zap.Int("succeeded", summary.Succeeded),
	)
	return summary, results, nil
}

func (s *Service) generate(ctx context.Context, docID, docType string, topK int) dombatch.Result {
	res, err := s.Realtime(ctx, docID, topK, s.threshold)
	if err != nil {
		return dombatch.NewError(docID, err)
	}
	if len(res.Items) == 0 {
		return dombatch.NewSkipped(docID)
	}
	if err := s.store(ctx, docID, docType, res.Items); err != nil {
		return dombatch.NewError(docID, err)
	}
	return dombatch.NewOK(docID)
}

func (s *Service) store(ctx context.Context, docID, docType string, items []domrec.Item) error {
	if docType == "" {
		docType = "API"
	}
	if err := s.cache.Put(ctx, docID, docType, items, s.now(), s.ttl); err != nil {
		return fmt.Errorf("store recommendations: %w", err)
	}
	return nil
}

// Stats summarizes the cache. The hit ratio covers lookups since process start.
func (s *Service) Stats(ctx context.Context) (domrec.Stats, error) {
	total, err := s.cache.Count(ctx)
	if err != nil {
		return domrec.Stats{}, fmt.Errorf("count cached: %w", err)
	}
	recent, err := s.cache.CountSince(ctx, s.now().Add(-recentWindow))
	if err != nil {
		return domrec.Stats{}, fmt.Errorf("count recent: %w", err)
	}
	avg, err := s.cache.AvgItems(ctx)
	if err != nil {
		return domrec.Stats{}, fmt.Errorf("average items: %w", err)
	}
	return domrec.Stats{
		TotalCachedDocs:       total,
		RecentRecommendations: recent,
		AvgPerDoc:             avg,
		CacheHitRatio:         domrec.HitRatio(s.hits.Load(), s.misses.Load()),
	}, nil
}

// Clear drops the cached entry of one document and reports whether it existed.
func (s *Service) Clear(ctx context.Context, docID string) (bool, error) {
	if docID == "" {
		return false, fmt.Errorf("doc_id is required: %w", domain.ErrInvalidArgument)
	}
	ok, err := s.cache.Delete(ctx, docID)
	if err != nil {
		return false, fmt.Errorf("clear cache: %w", err)
	}
	return ok, nil
}

// ClearAll drops every cached entry.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.cache.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	s.logger.Info("Recommendation cache cleared", zap.Int64("deleted", n))
	return n, nil
}

func (s *Service) hit() {
	s.hits.Add(1)
	metrics.RecommendationCacheTotal.WithLabelValues("hit").Inc()
}

func (s *Service) miss() {
	s.misses.Add(1)
	metrics.RecommendationCacheTotal.WithLabelValues("miss").Inc()
}

func validate(docID string, threshold float64) error {
	if docID == "" {
		return fmt.Errorf("doc_id is required: %w", domain.ErrInvalidArgument)
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold %.2f outside [0, 1]: %w", threshold, domain.ErrInvalidArgument)
	}
	return nil
}

func clampTopK(k int) int {
	switch {
	case k <= 0:
		return domrec.DefaultTopK
	case k > domrec.MaxTopK:
		return domrec.MaxTopK
	default:
		return k
	}
}
