package batch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/domain"
	dombatch "github.com/teamaeris/opendata-api/internal/domain/batch"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

// MaxBatchSize is the maximum number of documents per index request.
const MaxBatchSize = 100

// Service embeds dataset descriptions and writes them to the similarity index
// with per-item error reporting.
type Service struct {
	vectors      VectorWriter
	embed        Embedder
	maxBatchSize int
	logger       *zap.Logger
}

// New creates an indexing service.
func New(vectors VectorWriter, embed Embedder) *Service {
	return &Service{
		vectors:      vectors,
		embed:        embed,
		maxBatchSize: MaxBatchSize,
		logger:       zap.NewNop(),
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Index validates, embeds and upserts documents. Invalid documents fail
// individually; embedding or storage failures fail every valid document.
func (s *Service) Index(ctx context.Context, docs []domrec.IndexDocument) ([]dombatch.Result, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents: %w", domain.ErrInvalidArgument)
	}
	if len(docs) > s.maxBatchSize {
		return nil, fmt.Errorf("%d documents, max %d: %w", len(docs), s.maxBatchSize, domain.ErrBatchTooLarge)
	}

	results := make([]dombatch.Result, len(docs))
	valid := make([]domrec.IndexDocument, 0, len(docs))
	validIdx := make([]int, 0, len(docs))

	for i, d := range docs {
		norm, err := normalize(d)
		if err != nil {
			results[i] = dombatch.NewError(d.DocID, err)
			continue
		}
		valid = append(valid, norm)
		validIdx = append(validIdx, i)
	}
	if len(valid) == 0 {
		return results, nil
	}

	texts := make([]string, len(valid))
	for i, d := range valid {
		texts[i] = d.EmbeddingText()
	}

	emb, err := domain.BatchEmbed(ctx, s.embed, texts)
	if err == nil && len(emb.Embeddings) != len(valid) {
		err = fmt.Errorf("got %d vectors for %d documents: %w", len(emb.Embeddings), len(valid), domain.ErrEmbeddingProviderError)
	}
	if err != nil {
		s.logger.Error("Index embedding failed", zap.Int("documents", len(valid)), zap.Error(err))
		failAll(results, valid, validIdx, fmt.Errorf("embed: %w", err))
		return results, nil
	}

	embs := make([]domrec.Embedding, len(valid))
	for i, d := range valid {
		embs[i] = domrec.Embedding{DocID: d.DocID, DocType: d.DocType, Vector: emb.Embeddings[i]}
	}
	if err := s.vectors.Upsert(ctx, embs); err != nil {
		s.logger.Error("Index upsert failed", zap.Int("documents", len(valid)), zap.Error(err))
		failAll(results, valid, validIdx, fmt.Errorf("upsert: %w", err))
		return results, nil
	}

	for i, d := range valid {
		results[validIdx[i]] = dombatch.NewOK(d.DocID)
	}
	s.logger.Info("Documents indexed",
		zap.Int("indexed", len(valid)),
		zap.Int("rejected", len(docs)-len(valid)),
		zap.Int("total_tokens", emb.TotalTokens),
	)
	return results, nil
}

func failAll(results []dombatch.Result, valid []domrec.IndexDocument, idx []int, err error) {
	for i, d := range valid {
		results[idx[i]] = dombatch.NewError(d.DocID, err)
	}
}

func normalize(d domrec.IndexDocument) (domrec.IndexDocument, error) {
	d.DocID = strings.TrimSpace(d.DocID)
	if d.DocID == "" {
		return d, fmt.Errorf("doc id is required: %w", domain.ErrInvalidArgument)
	}
	if _, err := strconv.ParseInt(d.DocID, 10, 64); err != nil {
		return d, fmt.Errorf("doc id %q is not numeric: %w", d.DocID, domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(d.Title) == "" {
		return d, fmt.Errorf("title is required: %w", domain.ErrInvalidArgument)
	}
	switch strings.ToUpper(d.DocType) {
	case "":
		d.DocType = string(catalog.API)
	case string(catalog.API), string(catalog.File):
		d.DocType = strings.ToUpper(d.DocType)
	default:
		return d, fmt.Errorf("unknown doc type %q: %w", d.DocType, domain.ErrInvalidArgument)
	}
	return d, nil
}
