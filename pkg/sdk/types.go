package sdk

// SearchRequest holds search parameters. Zero values take server defaults.
type SearchRequest struct {
	Query       string `json:"query"`
	TopK        int    `json:"top_k,omitempty"`
	CandidateK  int    `json:"candidate_k,omitempty"`
	MustContain string `json:"must_contain,omitempty"`
}

// ProductCard is one search result.
type ProductCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	MainImage   string   `json:"main_image,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Score       float64  `json:"score"`
	Description string   `json:"description,omitempty"`
}

// ProductDetail is the full item view.
type ProductDetail struct {
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

// Health is the health or readiness report.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// OK reports whether the service considers itself healthy.
func (h Health) OK() bool { return h.Status == "ok" }

type searchResponse struct {
	Results []ProductCard `json:"results"`
}
