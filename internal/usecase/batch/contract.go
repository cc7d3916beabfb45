package batch

import (
	"context"

	"github.com/teamaeris/opendata-api/internal/domain"
	domrec "github.com/teamaeris/opendata-api/internal/domain/recommendation"
)

// VectorWriter stores document vectors in the similarity index.
type VectorWriter interface {
	Upsert(ctx context.Context, embs []domrec.Embedding) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
