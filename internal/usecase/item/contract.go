package item

import (
	"context"

	"github.com/ikarus-cloud/furnish/internal/domain"
)

// ProductReader looks up single catalog rows.
type ProductReader interface {
	GetByID(ctx context.Context, id string) (domain.Product, error)
}

// BlurbWriter generates a creative product description.
type BlurbWriter interface {
	Write(ctx context.Context, title string) (string, error)
}
