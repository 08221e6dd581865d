package chi

import "github.com/ikarus-cloud/furnish/internal/domain"

type searchRequest struct {
	Query       string `json:"query"`
	TopK        int    `json:"top_k"`
	CandidateK  int    `json:"candidate_k"`
	MustContain string `json:"must_contain"`
}

type searchResponse struct {
	Results []productCard `json:"results"`
}

type productCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	MainImage   string   `json:"main_image,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Score       float64  `json:"score"`
	Description string   `json:"description,omitempty"`
}

type productDetail struct {
	ID                  string   `json:"id"`
	Title               string   `json:"title"`
	Brand               string   `json:"brand,omitempty"`
	Price               *float64 `json:"price,omitempty"`
	MainCategory        string   `json:"main_category,omitempty"`
	Categories          string   `json:"categories,omitempty"`
	Material            string   `json:"material,omitempty"`
	Color               string   `json:"color,omitempty"`
	MainImage           string   `json:"main_image,omitempty"`
	Images              []string `json:"images,omitempty"`
	Description         string   `json:"description,omitempty"`
	CreativeDescription string   `json:"creative_description"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func cardToJSON(c domain.ProductCard) productCard {
	return productCard{
		ID:          c.ID,
		Title:       c.Title,
		MainImage:   c.MainImage,
		Brand:       c.Brand,
		Price:       c.Price,
		Score:       c.Score,
		Description: c.Description,
	}
}

func detailToJSON(d domain.ProductDetail) productDetail {
	return productDetail{
		ID:                  d.ID,
		Title:               d.Title,
		Brand:               d.Brand,
		Price:               d.Price,
		MainCategory:        d.MainCategory,
		Categories:          d.Categories,
		Material:            d.Material,
		Color:               d.Color,
		MainImage:           d.MainImage,
		Images:              d.Images,
		Description:         d.Description,
		CreativeDescription: d.CreativeDescription,
	}
}
