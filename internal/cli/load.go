package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ikarus-cloud/furnish/internal/domain"
	"github.com/ikarus-cloud/furnish/internal/domain/query"
	"github.com/ikarus-cloud/furnish/internal/repository/products"
)

var loadBatchSize int

var loadCmd = &cobra.Command{
	Use:   "load <csv>",
	Short: "Load a catalog CSV into the product database",
	Long: `Load reads a product catalog CSV and upserts every row into the
database. Rows are matched by id, so re-running on an updated CSV
refreshes existing products in place.

The id column is picked from uniq_id, id, sku, or product_id, in that
order. Rows without an id get a generated one.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&loadBatchSize, "batch", 500, "rows per database batch")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	repo, err := products.New(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	cols := columnIndex(header)
	idCol := pickIDColumn(cols)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Loading"),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)

	var batch []domain.Product
	var total, generated int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv row %d: %w", total+2, err)
		}

		p := productFromRecord(record, cols, idCol)
		if p.ID == "" {
			p.ID = uuid.NewString()
			generated++
		}

		batch = append(batch, p)
		if len(batch) >= loadBatchSize {
			if err := repo.Upsert(ctx, batch); err != nil {
				return err
			}
			total += len(batch)
			_ = bar.Set(total)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := repo.Upsert(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		_ = bar.Set(total)
	}
	_ = bar.Finish()

	fmt.Printf("Loaded %d products", total)
	if generated > 0 {
		fmt.Printf(" (%d without an id, generated)", generated)
	}
	fmt.Println()
	return nil
}

// idColumns in preference order. Furniture dataset exports disagree on the
// id column name.
var idColumns = []string{"uniq_id", "id", "sku", "product_id"}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func pickIDColumn(cols map[string]int) string {
	for _, c := range idColumns {
		if _, ok := cols[c]; ok {
			return c
		}
	}
	return ""
}

func productFromRecord(record []string, cols map[string]int, idCol string) domain.Product {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var id string
	if idCol != "" {
		id = query.NormalizeID(field(idCol))
	}

	return domain.Product{
		ID:           id,
		Title:        field("title"),
		Brand:        field("brand"),
		Price:        parsePrice(field("price")),
		MainCategory: field("main_category"),
		Categories:   field("categories"),
		Material:     field("material"),
		Color:        field("color"),
		MainImage:    field("main_image"),
		Images:       parseImages(field("images")),
		Description:  field("description"),
	}
}

// parsePrice tolerates currency formatting ("$1,299.00").
func parsePrice(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseImages accepts a JSON list, a comma-separated string, or a single URL.
func parseImages(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		var urls []string
		if err := json.Unmarshal([]byte(s), &urls); err == nil {
			return urls
		}
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		urls := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				urls = append(urls, p)
			}
		}
		return urls
	}
	return []string{s}
}
