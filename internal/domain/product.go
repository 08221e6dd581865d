package domain

// Product is a catalog row from the relational store. Read-only for the API;
// only the ingest CLI writes it.
type Product struct {
	ID           string
	Title        string
	Brand        string
	Price        *float64
	MainCategory string
	Categories   string
	Material     string
	Color        string
	MainImage    string
	Images       []string
	Description  string
}

// Candidate is a single vector index match: an item identifier with its
// similarity score and whatever metadata was stored alongside the vector.
type Candidate struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// ProductCard is one search result element, shaped for the results list.
type ProductCard struct {
	ID          string
	Title       string
	MainImage   string
	Brand       string
	Price       *float64
	Score       float64
	Description string
}

// ProductDetail is the full item view, including the freshly generated
// creative blurb. Never persisted.
type ProductDetail struct {
	ID                  string
	Title               string
	Brand               string
	Price               *float64
	MainCategory        string
	Categories          string
	Material            string
	Color               string
	MainImage           string
	Images              []string
	Description         string
	CreativeDescription string
}
