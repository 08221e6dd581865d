// Package item serves the product detail view: id cleanup, catalog lookup,
// fresh creative blurb, and listing text normalization.
package item

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/domain/listing"
	"github.com/ikarus-cloud/furnish/internal/domain/query"
)

// fallbackBlurb is served whenever blurb generation fails. A detail page is
// never held hostage by the LLM.
const fallbackBlurb = "A stylish, functional piece — built for everyday comfort."

// Service handles single item lookups.
type Service struct {
	products ProductReader
	blurbs   BlurbWriter
	logger   *zap.Logger
}

// New creates an item service. blurbs may be nil, in which case every detail
// carries the fallback blurb.
func New(products ProductReader, blurbs BlurbWriter, logger *zap.Logger) *Service {
	return &Service{products: products, blurbs: blurbs, logger: logger}
}

// Get resolves a raw item id to its detail view. Returns domain.ErrNotFound
// when neither the normalized nor the alternate id form matches a catalog row.
func (s *Service) Get(ctx context.Context, rawID string) (domain.ProductDetail, error) {
	cleanID := query.NormalizeID(rawID)
	if cleanID == "" {
		return domain.ProductDetail{}, fmt.Errorf("%w: empty id", domain.ErrInvalidInput)
	}

	product, err := s.products.GetByID(ctx, cleanID)
	if errors.Is(err, domain.ErrNotFound) {
		// Frontends occasionally double-encode ids; try the alternate cleanup.
		if alt := query.AlternateID(rawID, cleanID); alt != "" {
			product, err = s.products.GetByID(ctx, alt)
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("Product not found",
				zap.String("raw_id", rawID),
				zap.String("normalized_id", cleanID),
			)
			return domain.ProductDetail{}, domain.ErrNotFound
		}
		return domain.ProductDetail{}, fmt.Errorf("get product: %w", err)
	}

	creative := s.generateBlurb(ctx, product)
	norm := listing.Normalize(product.Title, product.Description, creative)

	detail := domain.ProductDetail{
		ID:                  product.ID,
		Title:               norm.Title,
		Brand:               product.Brand,
		Price:               product.Price,
		MainCategory:        product.MainCategory,
		Categories:          product.Categories,
		Material:            product.Material,
		Color:               product.Color,
		MainImage:           product.MainImage,
		Images:              product.Images,
		Description:         norm.Description,
		CreativeDescription: norm.Creative,
	}
	if detail.Title == "" || detail.Title == "Untitled" {
		if product.Title != "" {
			detail.Title = product.Title
		}
	}
	if detail.CreativeDescription == "" {
		detail.CreativeDescription = fallbackBlurb
	}
	return detail, nil
}

// generateBlurb asks the LLM for a fresh blurb, falling back to a static one
// on any failure.
func (s *Service) generateBlurb(ctx context.Context, product domain.Product) string {
	if s.blurbs == nil {
		return fallbackBlurb
	}

	title := product.Title
	if title == "" {
		title = "this item"
	}

	blurb, err := s.blurbs.Write(ctx, title)
	if err != nil {
		s.logger.Warn("Blurb generation failed, using fallback",
			zap.String("id", product.ID),
			zap.Error(err),
		)
		return fallbackBlurb
	}
	return blurb
}
