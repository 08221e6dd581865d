// Package products is the PostgreSQL catalog repository. The API only reads
// it; the ingest CLI owns the writes.
package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ikarus-cloud/furnish/internal/domain"
)

// Repo provides product catalog access over a pgx connection pool.
type Repo struct {
	pool *pgxpool.Pool
}

// New connects to the catalog database.
func New(ctx context.Context, url string, maxConns int) (*Repo, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return &Repo{pool: pool}, nil
}

// Close releases the pool.
func (r *Repo) Close() {
	r.pool.Close()
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureSchema creates the products table when it does not exist yet.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS products (
	id            TEXT PRIMARY KEY,
	title         TEXT,
	brand         TEXT,
	price         DOUBLE PRECISION,
	main_category TEXT,
	categories    TEXT,
	material      TEXT,
	color         TEXT,
	main_image    TEXT,
	images        JSONB,
	description   TEXT
);
CREATE INDEX IF NOT EXISTS products_title_idx ON products (title);
CREATE INDEX IF NOT EXISTS products_brand_idx ON products (brand);`

	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const productColumns = `id, title, brand, price, main_category, categories,
	material, color, main_image, images, description`

// GetByID fetches a single product. Returns domain.ErrNotFound when absent.
func (r *Repo) GetByID(ctx context.Context, id string) (domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("get product %q: %w", id, err)
	}
	return p, nil
}

// GetByIDs fetches products in bulk. Ids without a catalog row are simply
// absent from the returned map; that is not an error.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	found := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return found, nil
}

// Upsert writes products in one batch (INSERT ... ON CONFLICT DO UPDATE).
// Ingest-only path.
func (r *Repo) Upsert(ctx context.Context, items []domain.Product) error {
	if len(items) == 0 {
		return nil
	}

	const stmt = `
INSERT INTO products (` + productColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title, brand = EXCLUDED.brand, price = EXCLUDED.price,
	main_category = EXCLUDED.main_category, categories = EXCLUDED.categories,
	material = EXCLUDED.material, color = EXCLUDED.color,
	main_image = EXCLUDED.main_image, images = EXCLUDED.images,
	description = EXCLUDED.description`

	batch := &pgx.Batch{}
	for _, p := range items {
		var images []byte // jsonb payload; NULL when no gallery
		if p.Images != nil {
			images, _ = json.Marshal(p.Images)
		}
		batch.Queue(stmt,
			p.ID, p.Title, p.Brand, p.Price, p.MainCategory, p.Categories,
			p.Material, p.Color, p.MainImage, images, p.Description)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert products: %w", err)
		}
	}
	return nil
}

// Iterate streams the whole catalog in id order, calling fn per product.
// Used by the ingest CLI to re-embed the catalog.
func (r *Repo) Iterate(ctx context.Context, fn func(domain.Product) error) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return fmt.Errorf("iterate products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return fmt.Errorf("scan product: %w", err)
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate products: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var title, brand, mainCategory, categories *string
	var material, color, mainImage, description *string
	var images *[]string // jsonb, NULL when the listing has no gallery
	err := row.Scan(&p.ID, &title, &brand, &p.Price, &mainCategory,
		&categories, &material, &color, &mainImage, &images, &description)
	if err != nil {
		return domain.Product{}, err
	}
	if images != nil {
		p.Images = *images
	}
	p.Title = deref(title)
	p.Brand = deref(brand)
	p.MainCategory = deref(mainCategory)
	p.Categories = deref(categories)
	p.Material = deref(material)
	p.Color = deref(color)
	p.MainImage = deref(mainImage)
	p.Description = deref(description)
	return p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
