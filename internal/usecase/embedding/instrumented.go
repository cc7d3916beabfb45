package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teamaeris/opendata-api/internal/domain"
)

// DefaultMaxAPIBatchSize caps the number of texts sent in one provider call.
const DefaultMaxAPIBatchSize = 128

// InstrumentedEmbedder wraps an Embedder with request logging, an optional
// per-call timeout and chunked batch embedding.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	provider  string
	model     string
	chunkSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with logging.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:     inner,
		provider:  provider,
		model:     model,
		chunkSize: DefaultMaxAPIBatchSize,
		logger:    zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (p *InstrumentedEmbedder) WithLogger(l *zap.Logger) *InstrumentedEmbedder {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithChunkSize overrides DefaultMaxAPIBatchSize.
func (p *InstrumentedEmbedder) WithChunkSize(n int) *InstrumentedEmbedder {
	if n > 0 {
		p.chunkSize = n
	}
	return p
}

// WithTimeout bounds every provider call. Zero disables the bound.
func (p *InstrumentedEmbedder) WithTimeout(d time.Duration) *InstrumentedEmbedder {
	p.timeout = d
	return p
}

func (p *InstrumentedEmbedder) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	start := time.Now()
	result, err := p.inner.Embed(callCtx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// BatchEmbed splits texts into chunks and delegates each chunk to the inner embedder.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}

	for offset := 0; offset < len(texts); offset += p.chunkSize {
		end := min(offset+p.chunkSize, len(texts))
		chunk := texts[offset:end]

		res, err := p.embedChunk(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		if len(res.Embeddings) != len(chunk) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: got %d vectors for %d texts: %w",
				len(res.Embeddings), len(chunk), domain.ErrEmbeddingProviderError)
		}

		out.Embeddings = append(out.Embeddings, res.Embeddings...)
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", out.TotalTokens),
	)
	return out, nil
}

func (p *InstrumentedEmbedder) embedChunk(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	callCtx, cancel := p.callContext(ctx)
	defer cancel()

	if be, ok := p.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(callCtx, texts)
	}
	return domain.BatchFallback(callCtx, p.inner, texts)
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
