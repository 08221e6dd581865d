package search

import (
	"context"

	"github.com/ikarus-cloud/furnish/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorIndex returns nearest-neighbor candidates for a query vector.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Candidate, error)
}

// ProductReader resolves candidate ids against the catalog.
type ProductReader interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
}
