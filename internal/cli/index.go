package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/config"
	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/repository/products"
	"github.com/ikarus-cloud/furnish/internal/transport/hfspace"
	"github.com/ikarus-cloud/furnish/internal/transport/openrouter"
	"github.com/ikarus-cloud/furnish/internal/transport/pinecone"
)

// metadataDescriptionLimit keeps index metadata small; the catalog holds the
// full description.
const metadataDescriptionLimit = 512

var indexBatchSize int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed the catalog into the vector index",
	Long: `Index walks the whole product catalog, embeds each listing, and
upserts the vectors into the configured Pinecone index. Vectors share
ids with catalog rows, so re-running refreshes the index in place.`,
	RunE: runIndexCatalog,
}

func init() {
	indexCmd.Flags().IntVar(&indexBatchSize, "batch", 100, "vectors per index upsert")
	rootCmd.AddCommand(indexCmd)
}

func runIndexCatalog(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := zap.NewNop()

	repo, err := products.New(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	embedder := newEmbedder(cfg, logger)

	index := pinecone.New(&pinecone.Config{
		APIKey:  cfg.Pinecone.APIKey,
		Index:   cfg.Pinecone.Index,
		Region:  cfg.Pinecone.Region,
		Host:    cfg.Pinecone.Host,
		Timeout: time.Duration(cfg.Pinecone.TimeoutSec) * time.Second,
		Logger:  logger,
	})

	bar := progressbar.NewOptions(-1,
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	var batch []pinecone.Vector
	var total int
	var firstID string
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := index.Upsert(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		_ = bar.Set(total)
		batch = batch[:0]
		return nil
	}

	err = repo.Iterate(ctx, func(p domain.Product) error {
		result, err := embedder.Embed(ctx, embedText(p))
		if err != nil {
			return fmt.Errorf("embed product %s: %w", p.ID, err)
		}
		if cfg.Embedding.Dimensions > 0 && len(result.Embedding) != cfg.Embedding.Dimensions {
			return fmt.Errorf("product %s: embedding has %d dimensions, expected %d",
				p.ID, len(result.Embedding), cfg.Embedding.Dimensions)
		}

		if firstID == "" {
			firstID = p.ID
		}
		batch = append(batch, pinecone.Vector{
			ID:       p.ID,
			Values:   result.Embedding,
			Metadata: vectorMetadata(p),
		})
		if len(batch) >= indexBatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}
	_ = bar.Finish()

	// Read one vector back so a silent write failure shows up here, not on
	// the first search.
	if firstID != "" {
		fetched, err := index.Fetch(ctx, []string{firstID})
		if err != nil {
			return fmt.Errorf("verify upsert: %w", err)
		}
		if _, ok := fetched[firstID]; !ok {
			return fmt.Errorf("verify upsert: vector %s not found after indexing", firstID)
		}
	}

	fmt.Printf("Indexed %d products into %s\n", total, cfg.Pinecone.Index)
	return nil
}

// newEmbedder builds the base provider. The ingest path skips the cache and
// the request log decorators the API server wraps around it.
func newEmbedder(cfg config.Config, logger *zap.Logger) domain.Embedder {
	if cfg.Embedding.Provider == config.ProviderHFSpace {
		return hfspace.NewEmbedder(&hfspace.Config{
			Space:   cfg.Embedding.Space,
			Token:   cfg.Embedding.HFToken,
			Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:  logger,
		})
	}
	return openrouter.NewEmbedder(&openrouter.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})
}

// embedText composes the text a listing is embedded under: title first, then
// the attributes shoppers search by, then the description.
func embedText(p domain.Product) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{p.Title, p.Brand, p.MainCategory, p.Material, p.Color, p.Description} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ". ")
}

// vectorMetadata carries the card fields into the index so search can fall
// back on them when a candidate's catalog row is incomplete.
func vectorMetadata(p domain.Product) map[string]any {
	md := make(map[string]any, 6)
	if p.Title != "" {
		md["title"] = p.Title
	}
	if p.Brand != "" {
		md["brand"] = p.Brand
	}
	if p.Price != nil {
		md["price"] = *p.Price
	}
	if p.MainImage != "" {
		md["main_image"] = p.MainImage
	}
	if d := p.Description; d != "" {
		if len(d) > metadataDescriptionLimit {
			d = d[:metadataDescriptionLimit]
		}
		md["description"] = d
	}
	return md
}
