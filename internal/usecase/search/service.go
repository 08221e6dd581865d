// Package search runs the retrieval pipeline: embed the query, ask the vector
// index for candidates, join them against the catalog, and assemble the
// response cards.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/domain/query"
)

// Service handles product search.
type Service struct {
	embed      Embedder
	index      VectorIndex
	products   ProductReader
	dimensions int
	logger     *zap.Logger
}

// New creates a search service. dimensions is the configured index
// dimensionality; embeddings of any other length are rejected before they
// reach the index.
func New(embed Embedder, index VectorIndex, products ProductReader, dimensions int, logger *zap.Logger) *Service {
	return &Service{
		embed:      embed,
		index:      index,
		products:   products,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Search executes the full pipeline for a validated request. The returned
// cards preserve the index's descending-score order and never exceed TopK.
func (s *Service) Search(ctx context.Context, req *query.Request) ([]domain.ProductCard, error) {
	emb, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	if s.dimensions > 0 && len(emb.Embedding) != s.dimensions {
		// Configuration defect: the embedding model and the index disagree.
		s.logger.Error("Embedding dimension mismatch",
			zap.Int("got", len(emb.Embedding)),
			zap.Int("want", s.dimensions),
		)
		return nil, fmt.Errorf("embedding has %d dimensions, index expects %d: %w",
			len(emb.Embedding), s.dimensions, domain.ErrVectorDimMismatch)
	}

	candidates, err := s.index.Query(ctx, emb.Embedding, req.CandidateK())
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.ProductCard{}, nil
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	found, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve candidates: %w", err)
	}

	return s.assemble(req, candidates, found), nil
}

// assemble joins candidates with catalog rows in candidate order. Candidates
// without a catalog row are dropped silently (logged, never surfaced); the
// keyword filter then prunes off-topic matches before truncation to TopK.
func (s *Service) assemble(
	req *query.Request,
	candidates []domain.Candidate,
	found map[string]domain.Product,
) []domain.ProductCard {
	keyword := req.Keyword()
	cards := make([]domain.ProductCard, 0, req.TopK())

	for _, c := range candidates {
		product, ok := found[c.ID]
		if !ok {
			// Index and catalog drifted apart; ingest will reconcile.
			s.logger.Warn("Candidate missing from catalog",
				zap.String("id", c.ID),
				zap.Float64("score", c.Score),
			)
			continue
		}

		card := cardFromProduct(product, c)
		if keyword != "" && !strings.Contains(strings.ToLower(card.Title), keyword) {
			continue
		}

		cards = append(cards, card)
		if len(cards) >= req.TopK() {
			break
		}
	}
	return cards
}

// cardFromProduct shapes one result, falling back to index metadata for
// fields the catalog row lacks.
func cardFromProduct(p domain.Product, c domain.Candidate) domain.ProductCard {
	card := domain.ProductCard{
		ID:          p.ID,
		Title:       p.Title,
		MainImage:   p.MainImage,
		Brand:       p.Brand,
		Price:       p.Price,
		Score:       c.Score,
		Description: p.Description,
	}
	if card.Title == "" {
		card.Title = c.Metadata["title"]
	}
	if card.Title == "" {
		card.Title = "Untitled"
	}
	if card.MainImage == "" {
		card.MainImage = c.Metadata["main_image"]
	}
	if card.Brand == "" {
		card.Brand = c.Metadata["brand"]
	}
	if card.Price == nil {
		if v, err := strconv.ParseFloat(c.Metadata["price"], 64); err == nil {
			card.Price = &v
		}
	}
	if card.Description == "" {
		card.Description = c.Metadata["description"]
	}
	return card
}
